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
	"seehuhn.de/go/pdfmerge/pdf"
)

// A structMerger carries the state needed to merge the logical structure
// trees of two documents.  It is created before the source's pages are
// imported, adjusts the structure parent keys of each imported page, and
// appends the source's parent tree entries once all pages are in place.
type structMerger struct {
	c   *pdf.Copier
	dst *pdf.Document
	src *pdf.Document

	dstRoot       pdf.Dict
	dstParentTree pdf.Dict
	dstNums       pdf.Array
	srcNums       pdf.Array
	srcRoot       pdf.Dict

	// nextKey is the parent tree key at which the source's entries are
	// appended.  Each imported page's StructParents value is shifted by
	// the initial value of nextKey.
	offset  pdf.Integer
	nextKey pdf.Integer
}

// prepareStructMerge decides whether the structure trees of the two
// documents can be merged.  It returns nil (and no error) when the
// destination has no structure tree, or when the trees cannot be merged;
// in the latter case the destination's structure tree is removed so that
// the result never contains dangling structure information.
func prepareStructMerge(c *pdf.Copier, dst *pdf.Document, src *pdf.Document) (*structMerger, error) {
	dstCat := dst.GetMeta().Catalog
	if dstCat.StructTreeRoot == nil {
		return nil, nil
	}

	sm := tryStructMerge(c, dst, src)
	if sm == nil {
		err := stripStructTree(dst)
		if err != nil {
			return nil, err
		}
	}
	return sm, nil
}

// tryStructMerge checks that both documents have structure trees with
// flat parent trees, and returns a structMerger if so.
func tryStructMerge(c *pdf.Copier, dst *pdf.Document, src *pdf.Document) *structMerger {
	dstCat := dst.GetMeta().Catalog
	srcCat := src.GetMeta().Catalog

	dstRoot, err := pdf.GetDict(dst, dstCat.StructTreeRoot)
	if err != nil || dstRoot == nil {
		return nil
	}
	dstParentTree, err := pdf.GetDict(dst, dstRoot["ParentTree"])
	if err != nil || dstParentTree == nil {
		return nil
	}
	dstNums, err := pdf.GetArray(dst, dstParentTree["Nums"])
	if err != nil || dstNums == nil {
		return nil
	}

	nextKey, err := pdf.GetInt(dst, dstRoot["ParentTreeNextKey"])
	if err != nil || nextKey <= 0 {
		nextKey = pdf.Integer(len(dstNums) / 2)
	}
	if nextKey <= 0 {
		return nil
	}

	if srcCat.StructTreeRoot == nil {
		return nil
	}
	srcRoot, err := pdf.GetDict(src, srcCat.StructTreeRoot)
	if err != nil || srcRoot == nil {
		return nil
	}
	srcParentTree, err := pdf.GetDict(src, srcRoot["ParentTree"])
	if err != nil || srcParentTree == nil {
		return nil
	}
	srcNums, err := pdf.GetArray(src, srcParentTree["Nums"])
	if err != nil || srcNums == nil {
		return nil
	}

	return &structMerger{
		c:             c,
		dst:           dst,
		src:           src,
		dstRoot:       dstRoot,
		dstParentTree: dstParentTree,
		dstNums:       dstNums,
		srcNums:       srcNums,
		srcRoot:       srcRoot,
		offset:        nextKey,
		nextKey:       nextKey,
	}
}

// stripStructTree removes the destination's structure tree and marks the
// document as untagged.
func stripStructTree(dst *pdf.Document) error {
	dstCat := dst.GetMeta().Catalog

	markInfo, err := pdf.GetDict(dst, dstCat.MarkInfo)
	if err != nil {
		return err
	}
	if markInfo != nil {
		if marked, _ := pdf.GetBool(dst, markInfo["Marked"]); bool(marked) {
			markInfo["Marked"] = pdf.Bool(false)
		}
	}

	dstCat.StructTreeRoot = nil
	return nil
}

// adoptPage shifts the structure parent keys of a freshly imported page
// and of its annotations, so that they refer to the entries appended by
// [structMerger.finish].
func (sm *structMerger) adoptPage(pageDict pdf.Dict) error {
	if v, err := pdf.GetInt(sm.dst, pageDict["StructParents"]); err == nil && pageDict["StructParents"] != nil {
		pageDict["StructParents"] = v + sm.offset
	}

	annots, err := pdf.GetArray(sm.dst, pageDict["Annots"])
	if err != nil {
		return err
	}
	for _, annot := range annots {
		dict, err := pdf.GetDict(sm.dst, annot)
		if err != nil {
			return err
		}
		if dict == nil || dict["StructParent"] == nil {
			continue
		}
		if v, err := pdf.GetInt(sm.dst, dict["StructParent"]); err == nil {
			dict["StructParent"] = v + sm.offset
		}
	}
	return nil
}

// finish appends the source's parent tree entries to the destination's
// parent tree and joins the two structure element hierarchies under a
// new common root element.
//
// This must run after the source's pages have been imported, so that the
// page and annotation references in the copied parent tree entries
// resolve to the imported pages.
func (sm *structMerger) finish() error {
	for i := 0; i+1 < len(sm.srcNums); i += 2 {
		val, err := sm.c.Copy(sm.srcNums[i+1])
		if err != nil {
			return err
		}
		sm.dstNums = append(sm.dstNums, sm.nextKey, val)
		sm.nextKey++
	}

	if ref, ok := sm.dstParentTree["Nums"].(pdf.Reference); ok {
		err := sm.dst.Put(ref, sm.dstNums)
		if err != nil {
			return err
		}
	} else {
		sm.dstParentTree["Nums"] = sm.dstNums
	}
	sm.dstRoot["ParentTreeNextKey"] = sm.nextKey

	return sm.joinTrees()
}

// joinTrees replaces the destination's top-level structure elements with
// a single new element of type Document, whose children are the previous
// top-level elements of the destination followed by copies of the
// source's top-level elements.
func (sm *structMerger) joinTrees() error {
	newRef := sm.dst.Alloc()

	var newK pdf.Array

	dstChildren, err := structChildren(sm.dst, sm.dstRoot["K"])
	if err != nil {
		return err
	}
	for _, child := range dstChildren {
		dict, err := pdf.GetDict(sm.dst, child)
		if err != nil {
			return err
		}
		if dict != nil && dict["P"] != nil {
			dict["P"] = newRef
		}
		newK = append(newK, child)
	}

	srcChildren, err := structChildren(sm.src, sm.srcRoot["K"])
	if err != nil {
		return err
	}
	for _, child := range srcChildren {
		copied, err := sm.c.Copy(child)
		if err != nil {
			return err
		}
		dict, err := pdf.GetDict(sm.dst, copied)
		if err != nil {
			return err
		}
		if dict != nil && dict["P"] != nil {
			dict["P"] = newRef
		}
		newK = append(newK, copied)
	}

	elem := pdf.Dict{
		"S": pdf.Name("Document"),
		"P": sm.dst.GetMeta().Catalog.StructTreeRoot,
		"K": newK,
	}
	err = sm.dst.Put(newRef, elem)
	if err != nil {
		return err
	}

	sm.dstRoot["K"] = newRef
	return nil
}

// structChildren normalizes the K entry of a structure tree root, which
// may hold a single element or an array of elements.
func structChildren(r pdf.Getter, k pdf.Object) ([]pdf.Object, error) {
	if k == nil {
		return nil, nil
	}
	obj, err := pdf.Resolve(r, k)
	if err != nil {
		return nil, err
	}
	if arr, ok := obj.(pdf.Array); ok {
		return arr, nil
	}
	// single element; keep the original (possibly indirect) object
	return []pdf.Object{k}, nil
}
