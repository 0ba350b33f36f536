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

// Package pdfmerge combines several PDF documents into one.
//
// Documents are merged one source at a time into a shared destination,
// in caller-given order.  Pages are appended in order, and the
// document-wide structures spanning them — the interactive form's field
// namespace, the outline tree, page labels, named destinations, output
// intents and the logical structure tree — are reconciled so that the
// result reads like a document authored as one whole.
//
// The engine operates on already-parsed object graphs
// ([seehuhn.de/go/pdfmerge/pdf.Document]); reading and writing PDF
// files is left to the caller.
package pdfmerge
