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

// Package form gives access to the field tree of an interactive form
// (AcroForm).
//
// Fields form a forest rooted at the form dictionary's Fields array.  A
// Kids entry which carries a /T entry of its own is a child field; other
// Kids entries are widget annotations.  The full name of a field is the
// dot-joined chain of partial names from its root field down to the
// field itself.  PDF 2.0 sections: 12.7
package form

import (
	"errors"

	"seehuhn.de/go/pdfmerge/pdf"
)

// maxFields bounds the number of fields considered in one form.
const maxFields = 65536

// Field describes one field of an interactive form.
type Field struct {
	// Ref is the reference of the field dictionary, or zero if the field
	// is stored inline in its parent's Kids array.
	Ref pdf.Reference

	// Dict is the (resolved) field dictionary.
	Dict pdf.Dict

	// Partial is the field's partial name (the /T entry).
	Partial string

	// FullName is the fully qualified field name, i.e. the partial names
	// from the root field to this field joined with ".".
	FullName string
}

// AllFields returns every field of the form, in tree order (each root
// field followed by its descendants).
func AllFields(r pdf.Getter, acroForm pdf.Dict) ([]Field, error) {
	if acroForm == nil {
		return nil, nil
	}
	fields, err := pdf.GetArray(r, acroForm["Fields"])
	if err != nil {
		return nil, err
	}

	var res []Field
	seen := map[pdf.Reference]bool{}

	var walk func(obj pdf.Object, parentName string) error
	walk = func(obj pdf.Object, parentName string) error {
		ref, _ := obj.(pdf.Reference)
		if ref != 0 {
			if seen[ref] {
				return &pdf.MalformedError{
					Err: errors.New("field tree contains a loop"),
					Loc: []string{"object " + ref.String()},
				}
			}
			seen[ref] = true
		}
		if len(res) > maxFields {
			return errors.New("form has too many fields")
		}

		dict, err := pdf.GetDict(r, obj)
		if err != nil {
			return err
		}
		if dict == nil {
			return nil
		}

		partial, err := pdf.GetString(r, dict["T"])
		if err != nil {
			return err
		}
		fullName := partial.AsTextString()
		if parentName != "" {
			fullName = parentName + "." + fullName
		}
		res = append(res, Field{
			Ref:      ref,
			Dict:     dict,
			Partial:  partial.AsTextString(),
			FullName: fullName,
		})

		kids, err := pdf.GetArray(r, dict["Kids"])
		if err != nil {
			return err
		}
		for _, kid := range kids {
			kidDict, err := pdf.GetDict(r, kid)
			if err != nil {
				return err
			}
			if kidDict == nil || kidDict["T"] == nil {
				// a widget annotation, not a child field
				continue
			}
			err = walk(kid, fullName)
			if err != nil {
				return err
			}
		}
		return nil
	}

	for _, f := range fields {
		err := walk(f, "")
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// SetPartialName overwrites the partial name of the given field
// dictionary.  All other field attributes are left unchanged.
func SetPartialName(field pdf.Dict, name string) {
	field["T"] = pdf.TextString(name)
}

// IsDynamicXFA reports whether the form is a dynamic XFA form.  Dynamic
// XFA forms render their pages from the XFA packet rather than from
// static page content, so they cannot be merged statically.
//
// This library never decodes stream payloads, so the XFA packet itself
// is not inspected: a form counts as dynamic when it carries an /XFA
// entry and either the document requests re-rendering on open or the
// form has no usable static fields.
func IsDynamicXFA(r pdf.Getter, acroForm pdf.Dict) bool {
	if acroForm == nil || acroForm["XFA"] == nil {
		return false
	}
	if r.GetMeta().Catalog.NeedsRendering {
		return true
	}
	fields, _ := pdf.GetArray(r, acroForm["Fields"])
	return len(fields) == 0
}
