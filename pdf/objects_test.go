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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		in  Object
		out string
	}{
		{nil, "null"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Integer(-3), "-3"},
		{Real(1.5), "1.5"},
		{Real(2), "2."},
		{String("hello"), "(hello)"},
		{String("ab(cd)ef"), `(ab\(cd\)ef)`},
		{Name("Type"), "/Type"},
		{Name("odd name"), "/odd#20name"},
		{Array{Integer(1), nil, Name("x")}, "[1 null /x]"},
		{NewReference(7, 0), "7 0 R"},
		{NewReference(12, 3), "12 3 R"},
	}
	for _, test := range cases {
		got := Format(test.in)
		if got != test.out {
			t.Errorf("Format(%v) = %q, want %q", test.in, got, test.out)
		}
	}
}

func TestDictFormat(t *testing.T) {
	d := Dict{
		"B":    Integer(2),
		"A":    Integer(1),
		"Skip": nil,
	}
	got := Format(d)
	want := "<<\n/A 1\n/B 2\n>>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReferencePacking(t *testing.T) {
	ref := NewReference(12345, 17)
	if ref.Number() != 12345 {
		t.Errorf("wrong object number %d", ref.Number())
	}
	if ref.Generation() != 17 {
		t.Errorf("wrong generation number %d", ref.Generation())
	}
}

func TestTextString(t *testing.T) {
	cases := []string{
		"",
		"hello world",
		"Größenwahn",
		"日本語",
	}
	for _, in := range cases {
		s := TextString(in)
		out := s.AsTextString()
		if out != in {
			t.Errorf("round trip of %q gave %q", in, out)
		}
	}
}

func TestTextStringASCII(t *testing.T) {
	// plain ASCII must not be blown up into UTF-16
	s := TextString("abc")
	if diff := cmp.Diff(String("abc"), s); diff != "" {
		t.Errorf("unexpected encoding (-want +got):\n%s", diff)
	}
}
