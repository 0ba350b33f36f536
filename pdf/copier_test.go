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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCopySharing(t *testing.T) {
	src := NewDocument(V1_7)
	dst := NewDocument(V1_7)

	shared := src.Alloc()
	err := src.Put(shared, TextString("shared value"))
	if err != nil {
		t.Fatal(err)
	}
	obj := Dict{
		"A": shared,
		"B": Array{shared, shared},
	}

	c := NewCopier(dst, src)
	copied, err := c.CopyDict(obj)
	if err != nil {
		t.Fatal(err)
	}

	refA, ok := copied["A"].(Reference)
	if !ok {
		t.Fatalf("copy of A is %T, not a reference", copied["A"])
	}
	arr, ok := copied["B"].(Array)
	if !ok || len(arr) != 2 {
		t.Fatalf("copy of B is not a two-element array: %v", copied["B"])
	}
	if arr[0] != refA || arr[1] != refA {
		t.Errorf("shared reference was duplicated: %v vs %v", refA, arr)
	}

	val, err := GetString(dst, refA)
	if err != nil {
		t.Fatal(err)
	}
	if val.AsTextString() != "shared value" {
		t.Errorf("wrong value behind copied reference: %q", val)
	}
}

func TestCopyCycle(t *testing.T) {
	src := NewDocument(V1_7)
	dst := NewDocument(V1_7)

	// two objects referring to each other
	refA := src.Alloc()
	refB := src.Alloc()
	err := src.Put(refA, Dict{"Next": refB})
	if err != nil {
		t.Fatal(err)
	}
	err = src.Put(refB, Dict{"Next": refA})
	if err != nil {
		t.Fatal(err)
	}

	c := NewCopier(dst, src)
	newA, err := c.CopyReference(refA)
	if err != nil {
		t.Fatal(err)
	}

	dictA, err := GetDict(dst, newA)
	if err != nil {
		t.Fatal(err)
	}
	newB, ok := dictA["Next"].(Reference)
	if !ok {
		t.Fatalf("copy of A.Next is %T, not a reference", dictA["Next"])
	}
	dictB, err := GetDict(dst, newB)
	if err != nil {
		t.Fatal(err)
	}
	if dictB["Next"] != newA {
		t.Errorf("cycle was not closed: B.Next = %v, want %v",
			dictB["Next"], newA)
	}
}

func TestCopyIdempotent(t *testing.T) {
	src := NewDocument(V1_7)
	dst := NewDocument(V1_7)

	ref := src.Alloc()
	err := src.Put(ref, Integer(42))
	if err != nil {
		t.Fatal(err)
	}

	c := NewCopier(dst, src)
	first, err := c.CopyReference(ref)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.CopyReference(ref)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("repeated copy gave a new object: %v vs %v", first, second)
	}
	if n := len(dst.Refs()); n != 1 {
		t.Errorf("destination has %d objects, want 1", n)
	}
}

func TestCopyDepthLimit(t *testing.T) {
	src := NewDocument(V1_7)
	dst := NewDocument(V1_7)

	// a direct object nest deeper than the copier allows
	var obj Object = Integer(0)
	for i := 0; i < maxCloneDepth+1; i++ {
		obj = Array{obj}
	}

	c := NewCopier(dst, src)
	_, err := c.Copy(obj)
	var depthErr *DepthError
	if !errors.As(err, &depthErr) {
		t.Fatalf("got error %v, want *DepthError", err)
	}
	if depthErr.Limit != maxCloneDepth {
		t.Errorf("wrong limit %d in error", depthErr.Limit)
	}
}

func TestRedirect(t *testing.T) {
	src := NewDocument(V1_7)
	dst := NewDocument(V1_7)

	srcRef := src.Alloc()
	err := src.Put(srcRef, Name("old"))
	if err != nil {
		t.Fatal(err)
	}
	dstRef := dst.Alloc()
	err = dst.Put(dstRef, Name("existing"))
	if err != nil {
		t.Fatal(err)
	}

	c := NewCopier(dst, src)
	c.Redirect(srcRef, dstRef)

	got, err := c.CopyReference(srcRef)
	if err != nil {
		t.Fatal(err)
	}
	if got != dstRef {
		t.Errorf("redirect ignored: got %v, want %v", got, dstRef)
	}
	name, err := GetName(dst, got)
	if err != nil {
		t.Fatal(err)
	}
	if name != "existing" {
		t.Errorf("redirected reference resolves to %q", name)
	}
}

func TestMergeDict(t *testing.T) {
	src := NewDocument(V1_7)
	dst := NewDocument(V1_7)

	srcDict := Dict{
		"OnlySrc": Integer(1),
		"Both":    Integer(2),
		"Nested": Dict{
			"A": Integer(3),
			"B": Integer(4),
		},
	}
	dstDict := Dict{
		"Both": Integer(20),
		"Nested": Dict{
			"B": Integer(40),
		},
	}

	c := NewCopier(dst, src)
	err := c.MergeDict(srcDict, dstDict)
	if err != nil {
		t.Fatal(err)
	}

	want := Dict{
		"OnlySrc": Integer(1),
		"Both":    Integer(20),
		"Nested": Dict{
			"A": Integer(3),
			"B": Integer(40),
		},
	}
	if diff := cmp.Diff(want, dstDict); diff != "" {
		t.Errorf("merged dict mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDictIndirect(t *testing.T) {
	src := NewDocument(V1_7)
	dst := NewDocument(V1_7)

	srcInner := src.Alloc()
	err := src.Put(srcInner, Dict{"X": Integer(1)})
	if err != nil {
		t.Fatal(err)
	}
	dstInner := dst.Alloc()
	err = dst.Put(dstInner, Dict{"Y": Integer(2)})
	if err != nil {
		t.Fatal(err)
	}

	srcDict := Dict{"Sub": srcInner}
	dstDict := Dict{"Sub": dstInner}

	c := NewCopier(dst, src)
	err = c.MergeDict(srcDict, dstDict)
	if err != nil {
		t.Fatal(err)
	}

	// the merge must happen behind the indirect reference
	if dstDict["Sub"] != dstInner {
		t.Fatalf("destination reference was replaced")
	}
	merged, err := GetDict(dst, dstInner)
	if err != nil {
		t.Fatal(err)
	}
	want := Dict{"X": Integer(1), "Y": Integer(2)}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("merged dict mismatch (-want +got):\n%s", diff)
	}
}
