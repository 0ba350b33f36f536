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

	"seehuhn.de/go/pdfmerge/pagetree"
	"seehuhn.de/go/pdfmerge/pdf"
)

// importPages copies all pages of the source into the destination and
// appends them to the destination's page sequence.  Attributes which a
// page inherited from its old page tree are written into the page
// dictionary itself, since the page's position in the new tree provides
// different ancestors.
func importPages(c *pdf.Copier, dst *pdf.Document, src *pdf.Document, sm *structMerger) error {
	pages, err := pagetree.FindPages(src)
	if err != nil {
		return err
	}

	for _, p := range pages {
		newRef, err := c.CopyReference(p.Ref)
		if err != nil {
			return err
		}
		newDict, err := pdf.GetDict(dst, newRef)
		if err != nil {
			return err
		}
		if newDict == nil {
			return errors.New("imported page is missing")
		}

		err = fixInherited(c, newDict, p.Inherited)
		if err != nil {
			return err
		}

		if sm != nil {
			err = sm.adoptPage(newDict)
			if err != nil {
				return err
			}
		}

		err = pagetree.AppendPage(dst, newRef)
		if err != nil {
			return err
		}
	}
	return nil
}

// fixInherited makes the inherited page attributes explicit in the page
// dictionary.
func fixInherited(c *pdf.Copier, pageDict pdf.Dict, inh pagetree.Inherited) error {
	set := func(key pdf.Name, val pdf.Object) error {
		if val == nil || pageDict[key] != nil {
			return nil
		}
		copied, err := c.Copy(val)
		if err != nil {
			return err
		}
		pageDict[key] = copied
		return nil
	}

	if err := set("MediaBox", inh.MediaBox); err != nil {
		return err
	}
	if err := set("CropBox", inh.CropBox); err != nil {
		return err
	}
	if err := set("Rotate", inh.Rotate); err != nil {
		return err
	}
	return set("Resources", inh.Resources)
}
