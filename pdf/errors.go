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
	"strconv"
	"strings"
)

// ErrClosed is returned when a document is used after its Close method
// has been called.
var ErrClosed = errors.New("document is closed")

// MalformedError indicates that a document's object graph is not
// structurally sound.
type MalformedError struct {
	Err error
	Loc []string
}

func (err *MalformedError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	tail := ""
	if len(err.Loc) > 0 {
		tail = " (" + strings.Join(err.Loc, ", ") + ")"
	}
	return "malformed document" + middle + tail
}

func (err *MalformedError) Unwrap() error {
	return err.Err
}

// DepthError indicates that the recursion limit was exceeded while
// copying an object graph.  This guards against graphs where malformed
// object data defeats the normal cycle protection.
type DepthError struct {
	Limit int
}

func (err *DepthError) Error() string {
	return "object graph deeper than " + strconv.Itoa(err.Limit) + " levels"
}
