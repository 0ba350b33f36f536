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

// Package outline manipulates PDF document outlines (bookmarks).
//
// Outline items form a doubly-linked list of siblings via their Prev and
// Next entries; each item may own a child list via First and Last.
// PDF 2.0 sections: 12.3.3
package outline

import (
	"errors"

	"seehuhn.de/go/pdfmerge/pdf"
)

// maxItems bounds the number of outline items considered at one level.
const maxItems = 65536

// Items returns the references of the top-level items of the outline
// rooted at root, in display order.
func Items(r pdf.Getter, root pdf.Reference) ([]pdf.Reference, error) {
	rootDict, err := pdf.GetDict(r, root)
	if err != nil {
		return nil, err
	}

	seen := map[pdf.Reference]bool{}
	seen[root] = true

	var res []pdf.Reference
	ref, _ := rootDict["First"].(pdf.Reference)
	for ref != 0 {
		if seen[ref] {
			return nil, &pdf.MalformedError{
				Err: errors.New("outline tree contains a loop"),
				Loc: []string{"object " + ref.String()},
			}
		}
		seen[ref] = true
		if len(seen) > maxItems {
			return nil, errors.New("outline too large")
		}

		res = append(res, ref)

		dict, err := pdf.GetDict(r, ref)
		if err != nil {
			return nil, err
		}
		ref, _ = dict["Next"].(pdf.Reference)
	}
	return res, nil
}

// AddLast splices the item with the given reference into the outline
// rooted at root, as the new last top-level item.  Any sibling links the
// item carries are discarded and rebuilt for its new position, and the
// item's Parent entry is rewritten to point at root.
func AddLast(w pdf.Putter, root, item pdf.Reference) error {
	rootDict, err := pdf.GetDict(w, root)
	if err != nil {
		return err
	}
	if rootDict == nil {
		return &pdf.MalformedError{
			Err: errors.New("outline root is missing"),
			Loc: []string{"object " + root.String()},
		}
	}
	itemDict, err := pdf.GetDict(w, item)
	if err != nil {
		return err
	}
	if itemDict == nil {
		return &pdf.MalformedError{
			Err: errors.New("outline item is missing"),
			Loc: []string{"object " + item.String()},
		}
	}

	delete(itemDict, "Prev")
	delete(itemDict, "Next")
	itemDict["Parent"] = root

	if lastRef, ok := rootDict["Last"].(pdf.Reference); ok {
		lastDict, err := pdf.GetDict(w, lastRef)
		if err != nil {
			return err
		}
		if lastDict != nil {
			lastDict["Next"] = item
			itemDict["Prev"] = lastRef
		}
	} else {
		rootDict["First"] = item
	}
	rootDict["Last"] = item

	// An open count on the root grows by the item's visible count.
	count, _ := pdf.GetInt(w, rootDict["Count"])
	if count >= 0 {
		visible := pdf.Integer(1)
		if itemCount, _ := pdf.GetInt(w, itemDict["Count"]); itemCount > 0 {
			visible += itemCount
		}
		rootDict["Count"] = count + visible
	}

	return nil
}
