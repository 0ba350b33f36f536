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
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pdfmerge/form"
	"seehuhn.de/go/pdfmerge/internal/testdoc"
	"seehuhn.de/go/pdfmerge/numtree"
	"seehuhn.de/go/pdfmerge/outline"
	"seehuhn.de/go/pdfmerge/pagetree"
	"seehuhn.de/go/pdfmerge/pdf"
)

func TestAppendPages(t *testing.T) {
	dst := testdoc.New("A", 2)
	src := testdoc.New("B", 1)

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	got, err := testdoc.PageMarkers(dst)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A-p1", "A-p2", "B-p1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("page order mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendClosed(t *testing.T) {
	dst := testdoc.New("A", 1)
	src := testdoc.New("B", 1)
	err := src.Close()
	if err != nil {
		t.Fatal(err)
	}

	m := NewMerger(nil)
	err = m.Append(dst, src)
	if !errors.Is(err, pdf.ErrClosed) {
		t.Errorf("got %v, want ErrClosed", err)
	}
}

func TestSourceUnchanged(t *testing.T) {
	dst := testdoc.New("A", 1)
	src := testdoc.New("B", 2)
	numObjects := len(src.Refs())

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	if n := len(src.Refs()); n != numObjects {
		t.Errorf("source object count changed from %d to %d", numObjects, n)
	}
	got, err := testdoc.PageMarkers(src)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"B-p1", "B-p2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("source pages changed (-want +got):\n%s", diff)
	}
}

func fieldNames(t *testing.T, doc *pdf.Document) []string {
	t.Helper()
	acro, err := pdf.GetDict(doc, doc.GetMeta().Catalog.AcroForm)
	if err != nil {
		t.Fatal(err)
	}
	fields, err := form.AllFields(doc, acro)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range fields {
		names = append(names, f.FullName)
	}
	return names
}

func TestFieldRename(t *testing.T) {
	dst := testdoc.New("A", 1)
	dstPage := firstPage(t, dst)
	testdoc.AddTextField(dst, dstPage, "name")

	src := testdoc.New("B", 1)
	srcPage := firstPage(t, src)
	testdoc.AddTextField(src, srcPage, "name")

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	got := fieldNames(t, dst)
	sort.Strings(got)
	want := []string{"dummyFieldName1", "name"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("field names mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldRenameCounter(t *testing.T) {
	dst := testdoc.New("A", 1)
	dstPage := firstPage(t, dst)
	testdoc.AddTextField(dst, dstPage, "name")
	testdoc.AddTextField(dst, dstPage, "dummyFieldName3")

	m := NewMerger(nil)
	for i := 0; i < 2; i++ {
		src := testdoc.New("B", 1)
		srcPage := firstPage(t, src)
		testdoc.AddTextField(src, srcPage, "name")
		err := m.Append(dst, src)
		if err != nil {
			t.Fatal(err)
		}
	}

	got := fieldNames(t, dst)
	sort.Strings(got)
	// the counter starts above the highest suffix already present and
	// never runs backwards, even across sources
	want := []string{
		"dummyFieldName3", "dummyFieldName4", "dummyFieldName5", "name",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("field names mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldRenameWithinSource(t *testing.T) {
	dst := testdoc.New("A", 1)
	testdoc.AddTextField(dst, firstPage(t, dst), "other")

	// two identically named root fields in one source
	src := testdoc.New("B", 1)
	srcPage := firstPage(t, src)
	testdoc.AddTextField(src, srcPage, "dup")
	testdoc.AddTextField(src, srcPage, "dup")

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	got := fieldNames(t, dst)
	seen := map[string]bool{}
	for _, name := range got {
		if seen[name] {
			t.Errorf("duplicate full name %q", name)
		}
		seen[name] = true
	}
	sort.Strings(got)
	want := []string{"dummyFieldName1", "dup", "other"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("field names mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldsNoCollision(t *testing.T) {
	dst := testdoc.New("A", 1)
	testdoc.AddTextField(dst, firstPage(t, dst), "first")

	src := testdoc.New("B", 1)
	testdoc.AddTextField(src, firstPage(t, src), "second")

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	got := fieldNames(t, dst)
	sort.Strings(got)
	want := []string{"first", "second"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("field names mismatch (-want +got):\n%s", diff)
	}
}

func TestFormWholesale(t *testing.T) {
	dst := testdoc.New("A", 1)

	src := testdoc.New("B", 1)
	testdoc.AddTextField(src, firstPage(t, src), "name")

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	got := fieldNames(t, dst)
	want := []string{"name"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("field names mismatch (-want +got):\n%s", diff)
	}
}

func TestDynamicXFA(t *testing.T) {
	dst := testdoc.New("A", 1)
	src := testdoc.New("B", 1)
	src.GetMeta().Catalog.AcroForm = pdf.Dict{
		"XFA": pdf.Array{},
	}

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if !errors.Is(err, ErrDynamicForm) {
		t.Fatalf("got %v, want ErrDynamicForm", err)
	}

	// the destination must be untouched
	got, err := testdoc.PageMarkers(dst)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A-p1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("destination changed (-want +got):\n%s", diff)
	}
}

func TestIgnoreFormErrors(t *testing.T) {
	dst := testdoc.New("A", 1)
	// an AcroForm entry pointing at a missing object
	dst.GetMeta().Catalog.AcroForm = dst.Alloc()

	src := testdoc.New("B", 1)
	testdoc.AddTextField(src, firstPage(t, src), "name")

	m := NewMerger(nil)
	err := m.Append(dst, src)
	var formErr *FormError
	if !errors.As(err, &formErr) {
		t.Fatalf("got %v, want *FormError", err)
	}

	dst = testdoc.New("A", 1)
	dst.GetMeta().Catalog.AcroForm = dst.Alloc()
	m = NewMerger(&Options{IgnoreFormErrors: true})
	err = m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := testdoc.PageMarkers(dst)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A-p1", "B-p1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pages not merged (-want +got):\n%s", diff)
	}
}

func TestInfoMerge(t *testing.T) {
	dst := testdoc.New("A", 1)
	dst.GetMeta().Info = &pdf.Info{
		Title: "kept title",
	}
	src := testdoc.New("B", 1)
	src.GetMeta().Info = &pdf.Info{
		Title:  "ignored title",
		Author: "adopted author",
		Custom: map[string]string{"Origin": "B"},
	}

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	want := &pdf.Info{
		Title:  "kept title",
		Author: "adopted author",
		Custom: map[string]string{"Origin": "B"},
	}
	if diff := cmp.Diff(want, dst.GetMeta().Info); diff != "" {
		t.Errorf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestVersionUpgrade(t *testing.T) {
	dst := testdoc.New("A", 1)
	dst.GetMeta().Version = pdf.V1_4
	src := testdoc.New("B", 1)
	src.GetMeta().Version = pdf.V1_7

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}
	if v := dst.GetMeta().Version; v != pdf.V1_7 {
		t.Errorf("got version %s, want 1.7", v)
	}

	// the version never goes down
	src2 := testdoc.New("C", 1)
	src2.GetMeta().Version = pdf.V1_2
	err = m.Append(dst, src2)
	if err != nil {
		t.Fatal(err)
	}
	if v := dst.GetMeta().Version; v != pdf.V1_7 {
		t.Errorf("got version %s, want 1.7", v)
	}
}

func TestOpenAction(t *testing.T) {
	dst := testdoc.New("A", 1)
	dst.GetMeta().Catalog.OpenAction = pdf.Name("destAction")
	src := testdoc.New("B", 1)
	src.GetMeta().Catalog.OpenAction = pdf.Name("srcAction")

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}
	if dst.GetMeta().Catalog.OpenAction != pdf.Name("destAction") {
		t.Error("destination OpenAction was overwritten")
	}

	dst2 := testdoc.New("A", 1)
	err = NewMerger(nil).Append(dst2, src)
	if err != nil {
		t.Fatal(err)
	}
	if dst2.GetMeta().Catalog.OpenAction != pdf.Name("srcAction") {
		t.Error("source OpenAction was not adopted")
	}
}

func TestPageMode(t *testing.T) {
	dst := testdoc.New("A", 1)
	src := testdoc.New("B", 1)
	src.GetMeta().Catalog.PageMode = "UseOutlines"

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}
	if dst.GetMeta().Catalog.PageMode != "UseOutlines" {
		t.Error("source PageMode was not adopted")
	}

	src2 := testdoc.New("C", 1)
	src2.GetMeta().Catalog.PageMode = "UseThumbs"
	err = m.Append(dst, src2)
	if err != nil {
		t.Fatal(err)
	}
	if dst.GetMeta().Catalog.PageMode != "UseOutlines" {
		t.Error("destination PageMode was overwritten")
	}
}

func TestPageLabels(t *testing.T) {
	dst := testdoc.New("A", 2)
	testdoc.AddPageLabels(dst, "D-")
	src := testdoc.New("B", 1)
	testdoc.AddPageLabels(src, "S-")

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	entries, err := numtree.ReadAll(dst, dst.GetMeta().Catalog.PageLabels)
	if err != nil {
		t.Fatal(err)
	}
	var keys []pdf.Integer
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	// the source's range starts where the destination's pages end
	want := []pdf.Integer{0, 2}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("label keys mismatch (-want +got):\n%s", diff)
	}
}

func TestOutlineMerge(t *testing.T) {
	dst := testdoc.New("A", 1)
	testdoc.AddOutline(dst, "chapter 1")
	src := testdoc.New("B", 1)
	testdoc.AddOutline(src, "chapter 2", "chapter 3")

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	items, err := outline.Items(dst, dst.GetMeta().Catalog.Outlines)
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, item := range items {
		dict, err := pdf.GetDict(dst, item)
		if err != nil {
			t.Fatal(err)
		}
		s, err := pdf.GetString(dst, dict["Title"])
		if err != nil {
			t.Fatal(err)
		}
		titles = append(titles, s.AsTextString())
	}
	want := []string{"chapter 1", "chapter 2", "chapter 3"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}
}

func TestOutlineWholesale(t *testing.T) {
	dst := testdoc.New("A", 1)
	src := testdoc.New("B", 1)
	testdoc.AddOutline(src, "only chapter")

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	items, err := outline.Items(dst, dst.GetMeta().Catalog.Outlines)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d outline items, want 1", len(items))
	}
}

func TestOutputIntents(t *testing.T) {
	dst := testdoc.New("A", 1)
	testdoc.AddOutputIntent(dst, "X")
	src := testdoc.New("B", 1)
	testdoc.AddOutputIntent(src, "X")
	testdoc.AddOutputIntent(src, "Y")

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	got := intentIDs(t, dst)
	want := []string{"X", "Y"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("intents mismatch (-want +got):\n%s", diff)
	}
}

func TestOutputIntentsCustom(t *testing.T) {
	dst := testdoc.New("A", 1)
	testdoc.AddOutputIntent(dst, "Custom")
	src := testdoc.New("B", 1)
	testdoc.AddOutputIntent(src, "Custom")

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	// "Custom" identifiers never deduplicate
	got := intentIDs(t, dst)
	want := []string{"Custom", "Custom"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("intents mismatch (-want +got):\n%s", diff)
	}
}

func intentIDs(t *testing.T, doc *pdf.Document) []string {
	t.Helper()
	intents, err := pdf.GetArray(doc, doc.GetMeta().Catalog.OutputIntents)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, intent := range intents {
		dict, err := pdf.GetDict(doc, intent)
		if err != nil {
			t.Fatal(err)
		}
		id, err := pdf.GetString(doc, dict["OutputConditionIdentifier"])
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, string(id))
	}
	return ids
}

func TestThreads(t *testing.T) {
	dst := testdoc.New("A", 1)
	dst.GetMeta().Catalog.Threads = pdf.Array{
		pdf.Dict{"I": pdf.Dict{"Title": pdf.TextString("dst thread")}},
	}
	src := testdoc.New("B", 1)
	src.GetMeta().Catalog.Threads = pdf.Array{
		pdf.Dict{"I": pdf.Dict{"Title": pdf.TextString("src thread")}},
	}

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	threads, err := pdf.GetArray(dst, dst.GetMeta().Catalog.Threads)
	if err != nil {
		t.Fatal(err)
	}
	if len(threads) != 2 {
		t.Errorf("got %d threads, want 2", len(threads))
	}
}

func TestNamesMerge(t *testing.T) {
	dst := testdoc.New("A", 1)
	dst.GetMeta().Catalog.Names = pdf.Dict{
		"Dests": pdf.Dict{
			"Names": pdf.Array{pdf.TextString("a"), pdf.Name("destA")},
		},
	}
	src := testdoc.New("B", 1)
	src.GetMeta().Catalog.Names = pdf.Dict{
		"Dests": pdf.Dict{
			"Names": pdf.Array{pdf.TextString("b"), pdf.Name("destB")},
		},
		"JavaScript": pdf.Dict{},
	}

	m := NewMerger(nil)
	err := m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	names, err := pdf.GetDict(dst, dst.GetMeta().Catalog.Names)
	if err != nil {
		t.Fatal(err)
	}
	// the missing JavaScript branch is adopted, the conflicting Dests
	// branch keeps the destination's value
	if names["JavaScript"] == nil {
		t.Error("JavaScript name tree was not adopted")
	}
	dests, err := pdf.GetDict(dst, names["Dests"])
	if err != nil {
		t.Fatal(err)
	}
	arr, err := pdf.GetArray(dst, dests["Names"])
	if err != nil {
		t.Fatal(err)
	}
	want := pdf.Array{pdf.TextString("a"), pdf.Name("destA")}
	if diff := cmp.Diff(want, arr); diff != "" {
		t.Errorf("Dests mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadataAdopted(t *testing.T) {
	dst := testdoc.New("A", 1)
	src := testdoc.New("B", 1)

	ref := src.Alloc()
	err := src.Put(ref, &pdf.Stream{
		Dict: pdf.Dict{
			"Type":    pdf.Name("Metadata"),
			"Subtype": pdf.Name("XML"),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	src.GetMeta().Catalog.Metadata = ref

	m := NewMerger(nil)
	err = m.Append(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	if dst.GetMeta().Catalog.Metadata == 0 {
		t.Fatal("metadata stream was not adopted")
	}
	stream, err := pdf.GetStream(dst, dst.GetMeta().Catalog.Metadata)
	if err != nil {
		t.Fatal(err)
	}
	if stream == nil || stream.Dict["Type"] != pdf.Name("Metadata") {
		t.Error("adopted metadata stream is broken")
	}
}

func TestMergeAll(t *testing.T) {
	dst := testdoc.New("A", 1)
	src1 := testdoc.New("B", 1)
	src2 := testdoc.New("C", 2)

	m := NewMerger(nil)
	err := m.MergeAll(dst, src1, src2)
	if err != nil {
		t.Fatal(err)
	}

	got, err := testdoc.PageMarkers(dst)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A-p1", "B-p1", "C-p1", "C-p2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("page order mismatch (-want +got):\n%s", diff)
	}
}

// TestMergeScenario merges two full documents into an empty destination
// and checks pages, form fields and output intents together.
func TestMergeScenario(t *testing.T) {
	dst := testdoc.New("dst", 0)

	srcA := testdoc.New("A", 2)
	testdoc.AddTextField(srcA, firstPage(t, srcA), "name")
	testdoc.AddOutputIntent(srcA, "X")

	srcB := testdoc.New("B", 1)
	testdoc.AddTextField(srcB, firstPage(t, srcB), "name")
	testdoc.AddOutputIntent(srcB, "X")
	testdoc.AddOutputIntent(srcB, "Y")

	m := NewMerger(nil)
	err := m.MergeAll(dst, srcA, srcB)
	if err != nil {
		t.Fatal(err)
	}

	pages, err := testdoc.PageMarkers(dst)
	if err != nil {
		t.Fatal(err)
	}
	wantPages := []string{"A-p1", "A-p2", "B-p1"}
	if diff := cmp.Diff(wantPages, pages); diff != "" {
		t.Errorf("page order mismatch (-want +got):\n%s", diff)
	}

	fields := fieldNames(t, dst)
	sort.Strings(fields)
	wantFields := []string{"dummyFieldName1", "name"}
	if diff := cmp.Diff(wantFields, fields); diff != "" {
		t.Errorf("field names mismatch (-want +got):\n%s", diff)
	}

	intents := intentIDs(t, dst)
	wantIntents := []string{"X", "Y"}
	if diff := cmp.Diff(wantIntents, intents); diff != "" {
		t.Errorf("intents mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeAllSetInfo(t *testing.T) {
	dst := testdoc.New("A", 1)
	dst.GetMeta().Info = &pdf.Info{Title: "old"}
	src := testdoc.New("B", 1)

	m := NewMerger(nil)
	m.SetInfo(&pdf.Info{Title: "forced"})
	err := m.MergeAll(dst, src)
	if err != nil {
		t.Fatal(err)
	}
	if dst.GetMeta().Info.Title != "forced" {
		t.Errorf("got title %q, want forced", dst.GetMeta().Info.Title)
	}
}

func firstPage(t *testing.T, doc *pdf.Document) pdf.Reference {
	t.Helper()
	pages, err := pagetree.FindPages(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) == 0 {
		t.Fatal("document has no pages")
	}
	return pages[0].Ref
}
