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

package pdf

import (
	"bytes"
	"io"
)

// maxCloneDepth bounds the recursion depth of a Copier.  The identity
// map already terminates all cycles reachable through references; the
// depth bound additionally guards against pathological graphs built
// from deeply nested direct arrays and dictionaries.
const maxCloneDepth = 10_000

// A Copier copies objects from one document to another.  The Copier
// keeps track of the indirect objects that have already been copied and
// ensures that each object is copied only once, so that structural
// sharing and reference cycles in the source are reproduced in the
// destination.
//
// Indirect objects are allocated in the target document as needed, and
// references are translated accordingly.
type Copier struct {
	trans map[Reference]Reference
	r     Getter
	w     Putter
	depth int
}

// NewCopier creates a new Copier which copies objects from r to w.
func NewCopier(w Putter, r Getter) *Copier {
	c := &Copier{
		trans: make(map[Reference]Reference),
		w:     w,
		r:     r,
	}
	return c
}

// Copy copies an object from the source document to the target document,
// recursively.
//
// The returned object is guaranteed to be the same type as the input
// object.
func (c *Copier) Copy(obj Object) (Object, error) {
	if c.depth >= maxCloneDepth {
		return nil, &DepthError{Limit: maxCloneDepth}
	}
	c.depth++
	defer func() { c.depth-- }()

	switch x := obj.(type) {
	case Dict:
		return c.CopyDict(x)
	case Array:
		return c.CopyArray(x)
	case *Stream:
		dict, err := c.CopyDict(x.Dict)
		if err != nil {
			return nil, err
		}
		data, err := copyStreamData(x.R)
		if err != nil {
			return nil, err
		}
		res := &Stream{
			Dict: dict,
			R:    data,
		}
		return res, nil
	case Reference:
		return c.CopyReference(x)
	default:
		return obj, nil
	}
}

// CopyDict copies a dictionary from the source document to the target
// document.
func (c *Copier) CopyDict(obj Dict) (Dict, error) {
	res := Dict{}
	for key, val := range obj {
		repl, err := c.Copy(val)
		if err != nil {
			return nil, err
		}
		res[key] = repl
	}

	return res, nil
}

// CopyArray copies an array from the source document to the target
// document.
func (c *Copier) CopyArray(obj Array) (Array, error) {
	var res Array
	for _, val := range obj {
		var repl Object
		if val != nil {
			var err error
			repl, err = c.Copy(val)
			if err != nil {
				return nil, err
			}
		}
		res = append(res, repl)
	}
	return res, nil
}

// CopyReference copies a reference from the source document to the
// target document.
//
// The destination reference is allocated and recorded before the
// referenced value is copied, so that a value which (directly or
// indirectly) refers back to obj resolves to the reference currently
// being built instead of recursing forever.
func (c *Copier) CopyReference(obj Reference) (Reference, error) {
	newRef, ok := c.trans[obj]
	if ok {
		return newRef, nil
	}
	newRef = c.w.Alloc()
	c.trans[obj] = newRef

	val, err := Resolve(c.r, obj)
	if err != nil {
		return 0, err
	}
	trans, err := c.Copy(val)
	if err != nil {
		return 0, err
	}
	err = c.w.Put(newRef, trans)
	if err != nil {
		return 0, err
	}

	return newRef, nil
}

// Redirect maps an indirect object in the source document to an already
// existing object in the target document.  Subsequent copies of origRef
// resolve to newRef instead of producing a fresh copy.
func (c *Copier) Redirect(origRef, newRef Reference) {
	c.trans[origRef] = newRef
}

// MergeDict merges the entries of the source dictionary src into the
// destination dictionary dst.
//
// Keys missing from dst are copied over.  If a key is present on both
// sides and both values resolve to dictionaries, the dictionaries are
// merged recursively.  Otherwise the destination value is left in place
// and the source value is dropped.
func (c *Copier) MergeDict(src, dst Dict) error {
	if c.depth >= maxCloneDepth {
		return &DepthError{Limit: maxCloneDepth}
	}
	c.depth++
	defer func() { c.depth-- }()

	for key, val := range src {
		dstVal, present := dst[key]
		if !present || dstVal == nil {
			repl, err := c.Copy(val)
			if err != nil {
				return err
			}
			dst[key] = repl
			continue
		}

		srcObj, err := Resolve(c.r, val)
		if err != nil {
			return err
		}
		dstObj, err := Resolve(c.w, dstVal)
		if err != nil {
			return err
		}
		srcDict, srcIsDict := srcObj.(Dict)
		dstDict, dstIsDict := dstObj.(Dict)
		if srcIsDict && dstIsDict {
			err = c.MergeDict(srcDict, dstDict)
			if err != nil {
				return err
			}
		}
		// otherwise the destination value wins
	}
	return nil
}

func copyStreamData(r io.Reader) (io.Reader, error) {
	if r == nil {
		return nil, nil
	}
	if s, ok := r.(io.Seeker); ok {
		_, err := s.Seek(0, io.SeekStart)
		if err != nil {
			return nil, err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
