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

	"seehuhn.de/go/xmp"

	"seehuhn.de/go/pdfmerge/form"
	"seehuhn.de/go/pdfmerge/metadata"
	"seehuhn.de/go/pdfmerge/outline"
	"seehuhn.de/go/pdfmerge/pdf"
)

// ErrDynamicForm is returned when a source document contains a dynamic
// XFA form.  Such forms describe their content as an XFA template rather
// than as ordinary form fields, and merging them would silently discard
// the form.
var ErrDynamicForm = errors.New("document contains a dynamic XFA form")

// A FormError reports a problem while merging the interactive forms of
// two documents.  When [Options.IgnoreFormErrors] is set, form errors
// are skipped and the merge continues without the affected form.
type FormError struct {
	Err error
}

func (e *FormError) Error() string {
	return "form merge: " + e.Err.Error()
}

func (e *FormError) Unwrap() error {
	return e.Err
}

// Options controls the behaviour of a [Merger].
type Options struct {
	// IgnoreFormErrors makes [Merger.Append] treat failures while merging
	// interactive forms as non-fatal.  The affected form data is dropped,
	// all other content is still merged.
	IgnoreFormErrors bool
}

// A Merger appends documents to a destination, one source at a time.
//
// The field renaming counter is shared across all appends of one merge
// session, so that fields renamed while importing different sources
// never collide with each other.
type Merger struct {
	ignoreFormErrors bool

	// nextFieldNum is the next suffix to use when renaming a form field
	// whose name collides with a field already in the destination.
	nextFieldNum int

	info     *pdf.Info
	metadata *xmp.Packet
}

// NewMerger creates a new Merger.  opt may be nil.
func NewMerger(opt *Options) *Merger {
	m := &Merger{
		nextFieldNum: 1,
	}
	if opt != nil {
		m.ignoreFormErrors = opt.IgnoreFormErrors
	}
	return m
}

// SetInfo sets a document information dictionary which replaces the
// merged Info of the destination after [Merger.MergeAll] has appended
// all sources.
func (m *Merger) SetInfo(info *pdf.Info) {
	m.info = info
}

// SetMetadata sets an XMP metadata packet which replaces the document
// metadata of the destination after [Merger.MergeAll] has appended all
// sources.
func (m *Merger) SetMetadata(p *xmp.Packet) {
	m.metadata = p
}

// MergeAll appends all source documents to dst, in the given order, and
// then applies the Info and metadata overrides registered with
// [Merger.SetInfo] and [Merger.SetMetadata].
func (m *Merger) MergeAll(dst *pdf.Document, srcs ...*pdf.Document) error {
	for _, src := range srcs {
		err := m.Append(dst, src)
		if err != nil {
			return err
		}
	}

	meta := dst.GetMeta()
	if m.info != nil {
		infoCopy := *m.info
		meta.Info = &infoCopy
	}
	if m.metadata != nil {
		ref, err := metadata.Embed(dst, m.metadata)
		if err != nil {
			return err
		}
		meta.Catalog.Metadata = ref
	}
	return nil
}

// Append merges the pages and document-level structures of src into dst.
//
// The following parts of the source are carried over: the pages (in
// order), the interactive form, article threads, the name dictionary,
// named destinations, the outline tree, page labels, document metadata,
// output intents, and the logical structure tree.  For single-valued
// catalog entries like OpenAction and PageMode the destination's value
// wins; the source value is only used when the destination has none.
//
// Neither document is modified beyond the destination; src is only read.
func (m *Merger) Append(dst *pdf.Document, src *pdf.Document) error {
	if dst.IsClosed() || src.IsClosed() {
		return pdf.ErrClosed
	}

	dstMeta := dst.GetMeta()
	srcMeta := src.GetMeta()
	dstCat := dstMeta.Catalog
	srcCat := srcMeta.Catalog

	srcAcro, err := pdf.GetDict(src, srcCat.AcroForm)
	if err != nil {
		return err
	}
	if form.IsDynamicXFA(src, srcAcro) {
		return ErrDynamicForm
	}

	mergeInfo(dstMeta, srcMeta)

	if srcMeta.Version > dstMeta.Version {
		dstMeta.Version = srcMeta.Version
	}

	c := pdf.NewCopier(dst, src)

	if dstCat.OpenAction == nil && srcCat.OpenAction != nil {
		action, err := c.Copy(srcCat.OpenAction)
		if err != nil {
			return err
		}
		dstCat.OpenAction = action
	}

	err = m.mergeForm(c, dst, src, srcAcro)
	if err != nil {
		var fe *FormError
		if !(errors.As(err, &fe) && m.ignoreFormErrors) {
			return err
		}
	}

	err = mergeThreads(c, dst, src)
	if err != nil {
		return err
	}

	err = mergeNamespace(c, dst, src, &dstCat.Names, srcCat.Names)
	if err != nil {
		return err
	}
	err = mergeNamespace(c, dst, src, &dstCat.Dests, srcCat.Dests)
	if err != nil {
		return err
	}

	err = mergeOutline(c, dst, src)
	if err != nil {
		return err
	}

	if dstCat.PageMode == "" {
		dstCat.PageMode = srcCat.PageMode
	}

	err = mergePageLabels(c, dst, src)
	if err != nil {
		return err
	}

	if dstCat.Metadata == 0 && srcCat.Metadata != 0 {
		ref, err := c.CopyReference(srcCat.Metadata)
		if err != nil {
			return err
		}
		dstCat.Metadata = ref
	}

	err = mergeOutputIntents(c, dst, src)
	if err != nil {
		return err
	}

	sm, err := prepareStructMerge(c, dst, src)
	if err != nil {
		return err
	}

	err = importPages(c, dst, src, sm)
	if err != nil {
		return err
	}

	if sm != nil {
		err = sm.finish()
		if err != nil {
			return err
		}
	}

	return nil
}

// mergeInfo fills gaps in the destination's Info dictionary with values
// from the source.  Values already present in the destination are kept.
func mergeInfo(dstMeta, srcMeta *pdf.MetaInfo) {
	if srcMeta.Info == nil {
		return
	}
	if dstMeta.Info == nil {
		infoCopy := *srcMeta.Info
		if infoCopy.Custom != nil {
			custom := make(map[string]string, len(infoCopy.Custom))
			for k, v := range infoCopy.Custom {
				custom[k] = v
			}
			infoCopy.Custom = custom
		}
		dstMeta.Info = &infoCopy
		return
	}

	di := dstMeta.Info
	si := srcMeta.Info
	if di.Title == "" {
		di.Title = si.Title
	}
	if di.Author == "" {
		di.Author = si.Author
	}
	if di.Subject == "" {
		di.Subject = si.Subject
	}
	if di.Keywords == "" {
		di.Keywords = si.Keywords
	}
	if di.Creator == "" {
		di.Creator = si.Creator
	}
	if di.Producer == "" {
		di.Producer = si.Producer
	}
	if di.CreationDate.IsZero() {
		di.CreationDate = si.CreationDate
	}
	if di.ModDate.IsZero() {
		di.ModDate = si.ModDate
	}
	if di.Trapped == "" {
		di.Trapped = si.Trapped
	}
	for k, v := range si.Custom {
		if _, present := di.Custom[k]; present {
			continue
		}
		if di.Custom == nil {
			di.Custom = map[string]string{}
		}
		di.Custom[k] = v
	}
}

// mergeThreads appends the source's article threads to the destination's
// Threads array.
func mergeThreads(c *pdf.Copier, dst *pdf.Document, src *pdf.Document) error {
	srcCat := src.GetMeta().Catalog
	if srcCat.Threads == nil {
		return nil
	}
	srcThreads, err := pdf.GetArray(src, srcCat.Threads)
	if err != nil {
		return err
	}
	if len(srcThreads) == 0 {
		return nil
	}

	dstCat := dst.GetMeta().Catalog
	dstThreads, err := pdf.GetArray(dst, dstCat.Threads)
	if err != nil {
		return err
	}
	for _, thread := range srcThreads {
		copied, err := c.Copy(thread)
		if err != nil {
			return err
		}
		dstThreads = append(dstThreads, copied)
	}

	if ref, ok := dstCat.Threads.(pdf.Reference); ok {
		return dst.Put(ref, dstThreads)
	}
	dstCat.Threads = dstThreads
	return nil
}

// mergeNamespace merges a dictionary-valued catalog entry (Names, Dests)
// from the source into the destination.  If the destination has no such
// entry, the source's is copied wholesale; otherwise the two
// dictionaries are merged recursively, with the destination's values
// winning on conflict.
func mergeNamespace(c *pdf.Copier, dst *pdf.Document, src *pdf.Document, dstEntry *pdf.Object, srcEntry pdf.Object) error {
	if srcEntry == nil {
		return nil
	}
	if *dstEntry == nil {
		copied, err := c.Copy(srcEntry)
		if err != nil {
			return err
		}
		*dstEntry = copied
		return nil
	}

	srcDict, err := pdf.GetDict(src, srcEntry)
	if err != nil {
		return err
	}
	dstDict, err := pdf.GetDict(dst, *dstEntry)
	if err != nil {
		return err
	}
	if srcDict == nil || dstDict == nil {
		return nil
	}
	return c.MergeDict(srcDict, dstDict)
}

// mergeOutline appends the source's document outline to the
// destination's.  The top-level outline items of the source become
// additional top-level items of the destination.
func mergeOutline(c *pdf.Copier, dst *pdf.Document, src *pdf.Document) error {
	srcCat := src.GetMeta().Catalog
	if srcCat.Outlines == 0 {
		return nil
	}

	dstCat := dst.GetMeta().Catalog
	if dstCat.Outlines == 0 {
		root, err := c.CopyReference(srcCat.Outlines)
		if err != nil {
			return err
		}
		dstCat.Outlines = root
		return nil
	}

	items, err := outline.Items(src, srcCat.Outlines)
	if err != nil {
		return err
	}
	for _, item := range items {
		copied, err := c.CopyReference(item)
		if err != nil {
			return err
		}
		err = outline.AddLast(dst, dstCat.Outlines, copied)
		if err != nil {
			return err
		}
	}
	return nil
}

// mergeOutputIntents imports the source's output intents, skipping
// intents whose OutputConditionIdentifier is already present in the
// destination.  Intents without an identifier, or with the identifier
// "Custom", are always imported.
func mergeOutputIntents(c *pdf.Copier, dst *pdf.Document, src *pdf.Document) error {
	srcCat := src.GetMeta().Catalog
	srcIntents, err := pdf.GetArray(src, srcCat.OutputIntents)
	if err != nil {
		return err
	}
	if len(srcIntents) == 0 {
		return nil
	}

	dstCat := dst.GetMeta().Catalog
	dstIntents, err := pdf.GetArray(dst, dstCat.OutputIntents)
	if err != nil {
		return err
	}

	have := map[string]bool{}
	for _, intent := range dstIntents {
		dict, err := pdf.GetDict(dst, intent)
		if err != nil {
			return err
		}
		id, _ := pdf.GetString(dst, dict["OutputConditionIdentifier"])
		if len(id) > 0 {
			have[string(id)] = true
		}
	}

	changed := false
	for _, intent := range srcIntents {
		dict, err := pdf.GetDict(src, intent)
		if err != nil {
			return err
		}
		id, _ := pdf.GetString(src, dict["OutputConditionIdentifier"])
		key := string(id)
		if key != "" && key != "Custom" && have[key] {
			continue
		}
		copied, err := c.Copy(intent)
		if err != nil {
			return err
		}
		dstIntents = append(dstIntents, copied)
		if key != "" {
			have[key] = true
		}
		changed = true
	}
	if !changed {
		return nil
	}

	if ref, ok := dstCat.OutputIntents.(pdf.Reference); ok {
		return dst.Put(ref, dstIntents)
	}
	dstCat.OutputIntents = dstIntents
	return nil
}
