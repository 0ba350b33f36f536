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
	"seehuhn.de/go/pdfmerge/numtree"
	"seehuhn.de/go/pdfmerge/pagetree"
	"seehuhn.de/go/pdfmerge/pdf"
)

// mergePageLabels appends the source's page labels to the destination's,
// shifting the page indices of the source entries by the number of pages
// already in the destination.
//
// This must run before the source's pages are imported, so that the
// destination page count still refers to the pages present before this
// append.
func mergePageLabels(c *pdf.Copier, dst *pdf.Document, src *pdf.Document) error {
	srcCat := src.GetMeta().Catalog
	if srcCat.PageLabels == nil {
		return nil
	}
	srcEntries, err := numtree.ReadAll(src, srcCat.PageLabels)
	if err != nil {
		return err
	}
	if len(srcEntries) == 0 {
		return nil
	}

	offset, err := pagetree.Count(dst)
	if err != nil {
		return err
	}

	dstCat := dst.GetMeta().Catalog
	dstEntries, err := numtree.ReadAll(dst, dstCat.PageLabels)
	if err != nil {
		return err
	}

	for _, e := range srcEntries {
		val, err := c.Copy(e.Value)
		if err != nil {
			return err
		}
		dstEntries = append(dstEntries, numtree.Entry{
			Key:   e.Key + pdf.Integer(offset),
			Value: val,
		})
	}

	tree := numtree.Flatten(dstEntries)
	if ref, ok := dstCat.PageLabels.(pdf.Reference); ok {
		return dst.Put(ref, tree)
	}
	dstCat.PageLabels = tree
	return nil
}
