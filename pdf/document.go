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
	"io"
	"sort"

	"golang.org/x/exp/maps"
)

// Getter provides read access to the objects of a PDF document.
type Getter interface {
	GetMeta() *MetaInfo
	Get(Reference) (Object, error)
}

// Putter provides write access to the objects of a PDF document.
type Putter interface {
	Getter
	Alloc() Reference
	Put(ref Reference, obj Object) error
}

// Document is an in-memory representation of a PDF document: a table of
// indirect objects together with the document meta information.  It is
// the unit both read by and produced by a merge.
//
// A Document is not safe for concurrent use.
type Document struct {
	meta    MetaInfo
	objects map[Reference]Object
	lastRef uint32
	closed  bool
}

// NewDocument creates a new, empty document using the given PDF version.
func NewDocument(v Version) *Document {
	return &Document{
		meta: MetaInfo{
			Version: v,
			Catalog: &Catalog{},
		},
		objects: map[Reference]Object{},
	}
}

// GetMeta returns the meta information of the document.
func (d *Document) GetMeta() *MetaInfo {
	return &d.meta
}

// Alloc allocates a new object number for an indirect object.
func (d *Document) Alloc() Reference {
	for {
		d.lastRef++
		ref := NewReference(d.lastRef, 0)
		if _, ok := d.objects[ref]; !ok {
			return ref
		}
	}
}

// Get returns the object corresponding to an indirect reference.
// If the reference does not correspond to an object, nil is returned.
func (d *Document) Get(ref Reference) (Object, error) {
	if d.closed {
		return nil, ErrClosed
	}
	obj := d.objects[ref]
	if s, ok := obj.(*Stream); ok {
		if ss, ok := s.R.(io.Seeker); ok {
			_, err := ss.Seek(0, io.SeekStart)
			if err != nil {
				return nil, err
			}
		}
	}
	return obj, nil
}

// Put stores an object under the given reference.  Storing nil removes
// the object.
func (d *Document) Put(ref Reference, obj Object) error {
	if d.closed {
		return ErrClosed
	}
	if obj == nil {
		delete(d.objects, ref)
	} else {
		d.objects[ref] = obj
	}
	return nil
}

// Refs returns the references of all objects in the document, sorted by
// object number.
func (d *Document) Refs() []Reference {
	refs := maps.Keys(d.objects)
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].Number() < refs[j].Number()
	})
	return refs
}

// Close invalidates the document.  After Close has been called, the
// document can no longer be used as the source or destination of a
// merge.
func (d *Document) Close() error {
	d.closed = true
	return nil
}

// IsClosed reports whether Close has been called on the document.
func (d *Document) IsClosed() bool {
	return d.closed
}
