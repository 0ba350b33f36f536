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

// Package metadata reads and writes XMP metadata streams.
//
// PDF 2.0 sections: 14.3
package metadata

import (
	"bytes"
	"errors"

	"seehuhn.de/go/pdfmerge/pdf"
	"seehuhn.de/go/xmp"
)

// Extract decodes the metadata stream referenced by ref into an XMP
// packet.  A nil ref yields a nil packet.
//
// Only unfiltered metadata streams can be decoded; this library never
// applies stream filters.
func Extract(r pdf.Getter, ref pdf.Object) (*xmp.Packet, error) {
	if ref == nil {
		return nil, nil
	}
	stream, err := pdf.GetStream(r, ref)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, nil
	}
	if stream.Dict["Filter"] != nil {
		return nil, errors.New("filtered metadata stream")
	}

	return xmp.Read(stream.R)
}

// Embed writes the XMP packet as a metadata stream into the document and
// returns the reference of the new stream.
func Embed(w pdf.Putter, packet *xmp.Packet) (pdf.Reference, error) {
	buf := &bytes.Buffer{}
	err := packet.Write(buf, nil)
	if err != nil {
		return 0, err
	}

	ref := w.Alloc()
	stream := &pdf.Stream{
		Dict: pdf.Dict{
			"Type":    pdf.Name("Metadata"),
			"Subtype": pdf.Name("XML"),
			"Length":  pdf.Integer(buf.Len()),
		},
		R: bytes.NewReader(buf.Bytes()),
	}
	err = w.Put(ref, stream)
	if err != nil {
		return 0, err
	}
	return ref, nil
}
