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

// Package testdoc constructs small in-memory PDF documents for use in
// unit tests.
package testdoc

import (
	"strconv"

	"seehuhn.de/go/pdfmerge/pagetree"
	"seehuhn.de/go/pdfmerge/pdf"
)

// letterBox is the media box used for all test pages.
var letterBox = pdf.Array{
	pdf.Integer(0), pdf.Integer(0), pdf.Integer(612), pdf.Integer(792),
}

// New creates a document with the given number of (empty) pages.
// The pages carry a Label entry naming the document, so that tests can
// verify page order after a merge.
func New(name string, numPages int) *pdf.Document {
	doc := pdf.NewDocument(pdf.V1_7)
	for i := 0; i < numPages; i++ {
		AddPage(doc, name, i+1)
	}
	return doc
}

// AddPage appends an empty page to doc.  The page dictionary has a
// PieceInfo-style marker "Label" with the value "<name>-p<num>".
func AddPage(doc *pdf.Document, name string, num int) pdf.Reference {
	ref := doc.Alloc()
	page := pdf.Dict{
		"Type":     pdf.Name("Page"),
		"MediaBox": letterBox,
		"Label":    pdf.TextString(PageLabel(name, num)),
	}
	err := doc.Put(ref, page)
	if err != nil {
		panic(err)
	}
	err = pagetree.AppendPage(doc, ref)
	if err != nil {
		panic(err)
	}
	return ref
}

// PageLabel returns the marker stored by [AddPage] in the page
// dictionary.
func PageLabel(name string, num int) string {
	return name + "-p" + strconv.Itoa(num)
}

// PageMarkers returns the markers of all pages of doc, in document
// order.
func PageMarkers(doc *pdf.Document) ([]string, error) {
	pages, err := pagetree.FindPages(doc)
	if err != nil {
		return nil, err
	}
	var labels []string
	for _, p := range pages {
		s, err := pdf.GetString(doc, p.Dict["Label"])
		if err != nil {
			return nil, err
		}
		labels = append(labels, s.AsTextString())
	}
	return labels, nil
}

// AddTextField adds a text field with the given partial name to the
// document's interactive form, creating the form if needed.  The field
// is also added as an annotation of the given page.
func AddTextField(doc *pdf.Document, pageRef pdf.Reference, name string) pdf.Reference {
	cat := doc.GetMeta().Catalog

	var acro pdf.Dict
	if cat.AcroForm == nil {
		acro = pdf.Dict{
			"Fields": pdf.Array{},
		}
		cat.AcroForm = acro
	} else {
		var err error
		acro, err = pdf.GetDict(doc, cat.AcroForm)
		if err != nil {
			panic(err)
		}
	}

	ref := doc.Alloc()
	field := pdf.Dict{
		"FT":      pdf.Name("Tx"),
		"T":       pdf.TextString(name),
		"Rect":    pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(100), pdf.Integer(20)},
		"Type":    pdf.Name("Annot"),
		"Subtype": pdf.Name("Widget"),
	}
	if pageRef != 0 {
		field["P"] = pageRef
	}
	err := doc.Put(ref, field)
	if err != nil {
		panic(err)
	}

	fields, err := pdf.GetArray(doc, acro["Fields"])
	if err != nil {
		panic(err)
	}
	acro["Fields"] = append(fields, ref)

	if pageRef != 0 {
		page, err := pdf.GetDict(doc, pageRef)
		if err != nil {
			panic(err)
		}
		annots, err := pdf.GetArray(doc, page["Annots"])
		if err != nil {
			panic(err)
		}
		page["Annots"] = append(annots, ref)
	}
	return ref
}

// AddOutline gives the document an outline tree with one top-level item
// per title.
func AddOutline(doc *pdf.Document, titles ...string) {
	rootRef := doc.Alloc()
	root := pdf.Dict{
		"Type":  pdf.Name("Outlines"),
		"Count": pdf.Integer(len(titles)),
	}

	var prev pdf.Reference
	for _, title := range titles {
		ref := doc.Alloc()
		item := pdf.Dict{
			"Title":  pdf.TextString(title),
			"Parent": rootRef,
		}
		if prev != 0 {
			item["Prev"] = prev
			prevDict, err := pdf.GetDict(doc, prev)
			if err != nil {
				panic(err)
			}
			prevDict["Next"] = ref
		} else {
			root["First"] = ref
		}
		err := doc.Put(ref, item)
		if err != nil {
			panic(err)
		}
		prev = ref
	}
	if prev != 0 {
		root["Last"] = prev
	}

	err := doc.Put(rootRef, root)
	if err != nil {
		panic(err)
	}
	doc.GetMeta().Catalog.Outlines = rootRef
}

// AddPageLabels gives the document a flat page label tree with a single
// range starting at page 0, using the given label prefix.
func AddPageLabels(doc *pdf.Document, prefix string) {
	doc.GetMeta().Catalog.PageLabels = pdf.Dict{
		"Nums": pdf.Array{
			pdf.Integer(0),
			pdf.Dict{
				"S": pdf.Name("D"),
				"P": pdf.TextString(prefix),
			},
		},
	}
}

// AddOutputIntent adds an output intent with the given
// OutputConditionIdentifier to the document.
func AddOutputIntent(doc *pdf.Document, id string) {
	cat := doc.GetMeta().Catalog
	intents, err := pdf.GetArray(doc, cat.OutputIntents)
	if err != nil {
		panic(err)
	}
	intent := pdf.Dict{
		"Type":                      pdf.Name("OutputIntent"),
		"S":                         pdf.Name("GTS_PDFA1"),
		"OutputConditionIdentifier": pdf.String(id),
	}
	cat.OutputIntents = append(intents, intent)
}

// AddStructTree gives the document a minimal structure tree: one
// structure element per page, referenced from the parent tree under
// consecutive keys starting at 0.  The pages must already exist and get
// StructParents entries.
func AddStructTree(doc *pdf.Document) {
	pages, err := pagetree.FindPages(doc)
	if err != nil {
		panic(err)
	}

	rootRef := doc.Alloc()
	var kids pdf.Array
	var nums pdf.Array
	for i, p := range pages {
		elemRef := doc.Alloc()
		elem := pdf.Dict{
			"S":  pdf.Name("P"),
			"P":  rootRef,
			"Pg": p.Ref,
		}
		err := doc.Put(elemRef, elem)
		if err != nil {
			panic(err)
		}
		kids = append(kids, elemRef)
		nums = append(nums, pdf.Integer(i), pdf.Array{elemRef})
		p.Dict["StructParents"] = pdf.Integer(i)
	}

	root := pdf.Dict{
		"Type":              pdf.Name("StructTreeRoot"),
		"K":                 kids,
		"ParentTree":        pdf.Dict{"Nums": nums},
		"ParentTreeNextKey": pdf.Integer(len(pages)),
	}
	err = doc.Put(rootRef, root)
	if err != nil {
		panic(err)
	}

	cat := doc.GetMeta().Catalog
	cat.StructTreeRoot = rootRef
	cat.MarkInfo = pdf.Dict{"Marked": pdf.Bool(true)}
}
