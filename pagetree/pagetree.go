// seehuhn.de/go/pdfmerge - merging of PDF documents in memory
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package pagetree gives access to the page tree of a PDF document.
package pagetree

import (
	"errors"

	"seehuhn.de/go/pdfmerge/pdf"
)

// maxPages is the maximum number of page tree nodes we are willing to
// visit in one document.
const maxPages = 1 << 20

// Inherited holds the attributes a page inherits from its ancestors in
// the page tree, resolved to the values in effect for the page.
type Inherited struct {
	Resources pdf.Object
	MediaBox  pdf.Object
	CropBox   pdf.Object
	Rotate    pdf.Object
}

// Page describes one page of a document.
type Page struct {
	// Ref is the reference of the page dictionary.
	Ref pdf.Reference

	// Dict is the (resolved) page dictionary.
	Dict pdf.Dict

	// Inherited holds the inheritable page attributes in effect for this
	// page.
	Inherited Inherited
}

// FindPages returns all pages of the document, in document order.
func FindPages(r pdf.Getter) ([]Page, error) {
	root := r.GetMeta().Catalog.Pages
	if root == 0 {
		return nil, nil
	}

	var pages []Page
	seen := map[pdf.Reference]bool{}

	var walk func(ref pdf.Reference, inh Inherited) error
	walk = func(ref pdf.Reference, inh Inherited) error {
		if seen[ref] {
			return &pdf.MalformedError{
				Err: errors.New("page tree contains a loop"),
				Loc: []string{"object " + ref.String()},
			}
		}
		seen[ref] = true
		if len(seen) > maxPages {
			return errors.New("page tree too large")
		}

		dict, err := pdf.GetDict(r, ref)
		if err != nil {
			return err
		}
		if dict == nil {
			return &pdf.MalformedError{
				Err: errors.New("page tree node is missing"),
				Loc: []string{"object " + ref.String()},
			}
		}

		if v := dict["Resources"]; v != nil {
			inh.Resources = v
		}
		if v := dict["MediaBox"]; v != nil {
			inh.MediaBox = v
		}
		if v := dict["CropBox"]; v != nil {
			inh.CropBox = v
		}
		if v := dict["Rotate"]; v != nil {
			inh.Rotate = v
		}

		tp, _ := pdf.GetName(r, dict["Type"])
		if tp == "Pages" || (tp == "" && dict["Kids"] != nil) {
			kids, err := pdf.GetArray(r, dict["Kids"])
			if err != nil {
				return err
			}
			for _, kid := range kids {
				kidRef, ok := kid.(pdf.Reference)
				if !ok {
					return &pdf.MalformedError{
						Err: errors.New("page tree kid is not a reference"),
						Loc: []string{"object " + ref.String()},
					}
				}
				err = walk(kidRef, inh)
				if err != nil {
					return err
				}
			}
			return nil
		}

		pages = append(pages, Page{Ref: ref, Dict: dict, Inherited: inh})
		return nil
	}

	err := walk(root, Inherited{})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// Count returns the number of pages in the document.
func Count(r pdf.Getter) (int, error) {
	root := r.GetMeta().Catalog.Pages
	if root == 0 {
		return 0, nil
	}
	dict, err := pdf.GetDict(r, root)
	if err != nil {
		return 0, err
	}
	if count, err := pdf.GetInt(r, dict["Count"]); err == nil && count > 0 {
		return int(count), nil
	}
	pages, err := FindPages(r)
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// AppendPage attaches the page with the given reference to the end of
// the document's page sequence.  If the document has no page tree yet, a
// new root node is created.
func AppendPage(w pdf.Putter, pageRef pdf.Reference) error {
	meta := w.GetMeta()
	if meta.Catalog.Pages == 0 {
		rootRef := w.Alloc()
		root := pdf.Dict{
			"Type":  pdf.Name("Pages"),
			"Kids":  pdf.Array{},
			"Count": pdf.Integer(0),
		}
		err := w.Put(rootRef, root)
		if err != nil {
			return err
		}
		meta.Catalog.Pages = rootRef
	}

	rootDict, err := pdf.GetDict(w, meta.Catalog.Pages)
	if err != nil {
		return err
	}
	if rootDict == nil {
		return &pdf.MalformedError{
			Err: errors.New("page tree root is missing"),
		}
	}

	kids, err := pdf.GetArray(w, rootDict["Kids"])
	if err != nil {
		return err
	}
	kids = append(kids, pageRef)
	if ref, ok := rootDict["Kids"].(pdf.Reference); ok {
		err = w.Put(ref, kids)
		if err != nil {
			return err
		}
	} else {
		rootDict["Kids"] = kids
	}

	count, _ := pdf.GetInt(w, rootDict["Count"])
	rootDict["Count"] = count + 1

	pageDict, err := pdf.GetDict(w, pageRef)
	if err != nil {
		return err
	}
	if pageDict != nil {
		pageDict["Parent"] = meta.Catalog.Pages
	}
	return nil
}
