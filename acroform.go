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

package pdfmerge

import (
	"errors"
	"strconv"
	"strings"

	"seehuhn.de/go/pdfmerge/form"
	"seehuhn.de/go/pdfmerge/pdf"
)

// renamePrefix is the prefix used when a source form field has to be
// renamed because its fully qualified name is already taken in the
// destination.
const renamePrefix = "dummyFieldName"

// mergeForm merges the source's interactive form into the destination.
//
// If the destination has no form, the source's form is copied wholesale.
// Otherwise the source's root fields are appended to the destination's
// Fields array, renaming fields whose fully qualified name collides with
// a field already present.  All errors are reported as [*FormError].
func (m *Merger) mergeForm(c *pdf.Copier, dst *pdf.Document, src *pdf.Document, srcAcro pdf.Dict) error {
	if srcAcro == nil {
		return nil
	}

	dstCat := dst.GetMeta().Catalog
	srcCat := src.GetMeta().Catalog

	if dstCat.AcroForm == nil {
		copied, err := c.Copy(srcCat.AcroForm)
		if err != nil {
			return &FormError{Err: err}
		}
		dstCat.AcroForm = copied
		return nil
	}

	dstAcro, err := pdf.GetDict(dst, dstCat.AcroForm)
	if err != nil {
		return &FormError{Err: err}
	}
	if dstAcro == nil {
		return &FormError{Err: errors.New("destination form dictionary is missing")}
	}

	dstFields, err := form.AllFields(dst, dstAcro)
	if err != nil {
		return &FormError{Err: err}
	}

	names := make(map[string]bool, len(dstFields))
	for _, f := range dstFields {
		names[f.FullName] = true
		if num, ok := renameSuffix(f.Partial); ok && num >= m.nextFieldNum {
			m.nextFieldNum = num + 1
		}
	}

	fieldsArr, err := pdf.GetArray(dst, dstAcro["Fields"])
	if err != nil {
		return &FormError{Err: err}
	}

	srcFields, err := form.AllFields(src, srcAcro)
	if err != nil {
		return &FormError{Err: err}
	}
	for _, f := range srcFields {
		// only root fields go into the Fields array
		if strings.Contains(f.FullName, ".") {
			continue
		}

		var copied pdf.Object
		if f.Ref != 0 {
			copied, err = c.CopyReference(f.Ref)
		} else {
			copied, err = c.Copy(f.Dict)
		}
		if err != nil {
			return &FormError{Err: err}
		}

		newName := f.FullName
		if names[f.FullName] {
			dict, err := pdf.GetDict(dst, copied)
			if err != nil {
				return &FormError{Err: err}
			}
			if dict == nil {
				return &FormError{Err: errors.New("copied form field is missing")}
			}
			newName = renamePrefix + strconv.Itoa(m.nextFieldNum)
			form.SetPartialName(dict, newName)
			m.nextFieldNum++
		}
		// fields inserted earlier in this merge take part in collision
		// detection, too
		names[newName] = true

		fieldsArr = append(fieldsArr, copied)
	}

	if ref, ok := dstAcro["Fields"].(pdf.Reference); ok {
		err = dst.Put(ref, fieldsArr)
		if err != nil {
			return &FormError{Err: err}
		}
	} else {
		dstAcro["Fields"] = fieldsArr
	}
	return nil
}

// renameSuffix checks whether name has the form renamePrefix followed by
// a decimal number, and returns the number if so.
func renameSuffix(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, renamePrefix)
	if !ok || rest == "" {
		return 0, false
	}
	num, err := strconv.Atoi(rest)
	if err != nil || num < 0 {
		return 0, false
	}
	return num, true
}
