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
	"time"

	"golang.org/x/text/language"
)

// MetaInfo represents the meta information of a PDF document.
type MetaInfo struct {
	// Version is the PDF version used in this document.
	Version Version

	// The ID of the file the document was read from.  This is either a
	// slice of two byte slices (the original ID of the file, and the ID
	// of the current version), or nil if no ID is known.
	ID [][]byte

	// Catalog is the document catalog.
	Catalog *Catalog

	// Info is the document information dictionary.  This is nil if the
	// document does not contain a document information dictionary.
	Info *Info

	// Trailer contains additional trailer dictionary entries.
	// This excludes entries related to the cross-reference table.
	Trailer Dict
}

// Version represents a version of PDF standard.
type Version int

// PDF versions supported by this library.
const (
	_ Version = iota
	V1_0
	V1_1
	V1_2
	V1_3
	V1_4
	V1_5
	V1_6
	V1_7
	V2_0
)

// ParseVersion parses a PDF version string.
func ParseVersion(verString string) (Version, error) {
	switch verString {
	case "1.0":
		return V1_0, nil
	case "1.1":
		return V1_1, nil
	case "1.2":
		return V1_2, nil
	case "1.3":
		return V1_3, nil
	case "1.4":
		return V1_4, nil
	case "1.5":
		return V1_5, nil
	case "1.6":
		return V1_6, nil
	case "1.7":
		return V1_7, nil
	case "2.0":
		return V2_0, nil
	}
	return 0, errVersion
}

// ToString returns the string representation of ver, e.g. "1.7".
// If ver does not correspond to a supported PDF version, an error is
// returned.
func (ver Version) ToString() (string, error) {
	if ver >= V1_0 && ver <= V1_7 {
		return "1." + string([]byte{byte(ver - V1_0 + '0')}), nil
	}
	if ver == V2_0 {
		return "2.0", nil
	}
	return "", errVersion
}

func (ver Version) String() string {
	versionString, err := ver.ToString()
	if err != nil {
		versionString = "pdf.Version(" + strconv.Itoa(int(ver)) + ")"
	}
	return versionString
}

var errVersion = errors.New("unsupported PDF version")

// Catalog represents a PDF Document Catalog.  The only required field in
// this structure is Pages, which specifies the root of the page tree.
//
// The Document Catalog is documented in section 7.7.2 of PDF 32000-1:2008.
type Catalog struct {
	// Pages is the root of the document's page tree.
	// This is zero for a document which has no pages yet.
	Pages Reference

	// PageLabels (optional, PDF 1.3) defines the page labeling for the
	// document as a number tree where keys are page indices and values are
	// page label dictionaries.
	PageLabels Object

	// Names (optional, PDF 1.2) is the document's name dictionary.
	Names Object

	// Dests (optional, PDF 1.1) contains a dictionary of names and
	// corresponding destinations.
	Dests Object

	// ViewerPreferences (optional, PDF 1.2) specifies how the document
	// should be displayed on screen.
	ViewerPreferences Object

	// PageLayout (optional) specifies the page layout to use when the
	// document is opened.
	PageLayout Name

	// PageMode (optional) specifies how the document should be displayed
	// when opened.
	PageMode Name

	// Outlines (optional) is the root of the document's outline hierarchy.
	Outlines Reference

	// Threads (optional, PDF 1.1) contains an array of thread dictionaries
	// representing the document's article threads.
	Threads Object

	// OpenAction (optional, PDF 1.1) specifies a destination to display or
	// action to perform when the document is opened.
	OpenAction Object

	// AA (optional, PDF 1.2) defines additional actions to take in
	// response to various trigger events affecting the document.
	AA Object

	// URI (optional, PDF 1.1) contains document-level information for URI
	// actions.
	URI Object

	// AcroForm (optional, PDF 1.2) is the document's interactive form
	// dictionary.
	AcroForm Object

	// Metadata (optional, PDF 1.4) contains metadata for the document.
	Metadata Reference

	// StructTreeRoot (optional, PDF 1.3) is the document's structure tree
	// root dictionary.
	StructTreeRoot Object

	// MarkInfo (optional, PDF 1.4) contains information about the
	// document's usage of tagged PDF conventions.
	MarkInfo Object

	// Lang (optional, PDF 1.4) specifies the natural language for all text
	// in the document.
	Lang language.Tag

	// OutputIntents (optional, PDF 1.4) specifies the color
	// characteristics of output devices on which the document might be
	// rendered.
	OutputIntents Object

	// OCProperties (optional, PDF 1.5) contains the document's optional
	// content properties.
	OCProperties Object

	// NeedsRendering (optional, deprecated in PDF 2.0) specifies whether
	// the document should be regenerated when first opened.  Used for XFA
	// forms.
	NeedsRendering bool
}

// Info represents a PDF Document Information Dictionary.
// All fields in this structure are optional.
//
// The Document Information Dictionary is documented in section
// 14.3.3 of PDF 32000-1:2008.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Keywords string

	// Creator gives the name of the application that created the original
	// document, if the document was converted to PDF from another format.
	Creator string

	// Producer gives the name of the application that converted the
	// document, if the document was converted to PDF from another format.
	Producer string

	// CreationDate gives the date and time the document was created.
	CreationDate time.Time

	// ModDate gives the date and time the document was most recently
	// modified.
	ModDate time.Time

	// Trapped indicates whether the document has been modified to include
	// trapping information.  Possible values are "True", "False" and
	// "Unknown" (the default).
	Trapped Name

	// Custom contains all non-standard fields of the Info dictionary.
	Custom map[string]string
}
