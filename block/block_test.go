package block

import "testing"

func newTestDoc(t *testing.T) *Document {
	t.Helper()
	doc := New(map[string]any{MetaTitle: "test"})
	doc.AddPage(&Page{ID: "p1", Number: 1, WidthPx: 612, HeightPx: 792})
	return doc
}

func TestAssembleWiresReadingOrderAndChildren(t *testing.T) {
	doc := newTestDoc(t)
	gen := NewIDGenerator("p1")

	line1 := New(gen.Next(KindLine), KindLine)
	line1.SetPayload(&TextPayload{Content: "Hello"})
	line2 := New(gen.Next(KindLine), KindLine)
	line2.SetPayload(&TextPayload{Content: "World"})

	text := New(gen.Next(KindText), KindText)
	text.SetPayload(&TextPayload{Content: "Hello World"})
	text.SetStructureRefs([]string{line1.ID(), line2.ID()})

	err := doc.Assemble([]RawBlock{
		{Block: line1, PageID: "p1", ParentID: text.ID()},
		{Block: line2, PageID: "p1", ParentID: text.ID()},
		{Block: text, PageID: "p1"},
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	page, ok := doc.Page("p1")
	if !ok {
		t.Fatal("expected page p1")
	}
	if got := page.TopLevelIDs(); len(got) != 1 || got[0] != text.ID() {
		t.Fatalf("top level ids = %v, want [%s]", got, text.ID())
	}

	got, err := doc.Get(text.ID())
	if err != nil {
		t.Fatal(err)
	}
	if children := got.Children(); len(children) != 2 {
		t.Fatalf("children = %v, want 2 entries", children)
	}
}

func TestUniqueIDsAndResolvableReferences(t *testing.T) {
	doc := newTestDoc(t)
	gen := NewIDGenerator("p1")

	a := New(gen.Next(KindText), KindText)
	b := New(gen.Next(KindText), KindText)
	if a.ID() == b.ID() {
		t.Fatalf("expected unique ids, got %s twice", a.ID())
	}

	if err := doc.Assemble([]RawBlock{
		{Block: a, PageID: "p1"},
		{Block: b, PageID: "p1"},
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := doc.Get("nonexistent"); err == nil {
		t.Fatal("expected UnknownBlockId error")
	} else if !IsUnknownBlockID(err) {
		t.Fatalf("expected UnknownBlockId sentinel, got %v", err)
	}
}

func TestAssembleRejectsDanglingReference(t *testing.T) {
	doc := newTestDoc(t)
	gen := NewIDGenerator("p1")

	text := New(gen.Next(KindText), KindText)
	text.SetStructureRefs([]string{"p1_Line_99"})

	err := doc.Assemble([]RawBlock{{Block: text, PageID: "p1"}})
	if err == nil {
		t.Fatal("expected error for dangling structure ref")
	}
}

func TestContainmentAcyclicity(t *testing.T) {
	doc := newTestDoc(t)
	gen := NewIDGenerator("p1")

	a := New(gen.Next(KindSectionHeader), KindSectionHeader)
	b := New(gen.Next(KindSectionHeader), KindSectionHeader)
	a.SetChildren([]string{b.ID()})
	b.SetChildren([]string{a.ID()})

	doc.RegisterBlock(a)
	doc.RegisterBlock(b)

	if err := doc.ValidateInvariants(); err == nil {
		t.Fatal("expected cycle detection error")
	}
}

func TestIterVisitsEachMatchingBlockOnce(t *testing.T) {
	doc := newTestDoc(t)
	gen := NewIDGenerator("p1")

	t1 := New(gen.Next(KindText), KindText)
	t2 := New(gen.Next(KindText), KindText)
	h1 := New(gen.Next(KindSectionHeader), KindSectionHeader)

	if err := doc.Assemble([]RawBlock{
		{Block: h1, PageID: "p1"},
		{Block: t1, PageID: "p1"},
		{Block: t2, PageID: "p1"},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := doc.Iter(NewKindSet(KindText), true).All()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d text blocks, want 2", len(got))
	}
}

func TestIterDetectsConcurrentMutation(t *testing.T) {
	doc := newTestDoc(t)
	gen := NewIDGenerator("p1")
	a := New(gen.Next(KindText), KindText)
	doc.RegisterBlock(a)

	it := doc.Iter(nil, false)
	doc.RegisterBlock(New(gen.Next(KindText), KindText)) // mutate mid-iteration

	for {
		if _, ok := it.Next(); !ok {
			break
		}
	}
	if it.Err() == nil {
		t.Fatal("expected ConcurrentMutation error")
	}
}

func TestRemovedBlockSkippedByIter(t *testing.T) {
	doc := newTestDoc(t)
	gen := NewIDGenerator("p1")
	a := New(gen.Next(KindText), KindText)
	b := New(gen.Next(KindText), KindText)

	if err := doc.Assemble([]RawBlock{{Block: a, PageID: "p1"}, {Block: b, PageID: "p1"}}); err != nil {
		t.Fatal(err)
	}
	a.Remove()

	got, err := doc.Iter(NewKindSet(KindText), true).All()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID() != b.ID() {
		t.Fatalf("expected only %s, got %v", b.ID(), got)
	}

	// The tombstoned ID must still resolve via Get (invariant 7: "ID
	// remains reserved").
	if _, err := doc.Get(a.ID()); err != nil {
		t.Fatalf("removed block should still resolve: %v", err)
	}
}

func TestPolygonContainsWithinTolerance(t *testing.T) {
	parent := Polygon{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
	child := Polygon{{-4, 0}, {100, 0}, {100, 100}, {-4, 100}}
	if !parent.Contains(child, 0.05) {
		t.Fatal("expected child within 5% tolerance to be contained")
	}

	farChild := Polygon{{-50, 0}, {100, 0}, {100, 100}, {-50, 100}}
	if parent.Contains(farChild, 0.05) {
		t.Fatal("expected child far outside tolerance to be rejected")
	}
}

func TestNextPrevSiblingAndAncestors(t *testing.T) {
	doc := newTestDoc(t)
	gen := NewIDGenerator("p1")

	parent := New(gen.Next(KindSectionHeader), KindSectionHeader)
	c1 := New(gen.Next(KindText), KindText)
	c2 := New(gen.Next(KindText), KindText)
	c3 := New(gen.Next(KindText), KindText)

	if err := doc.Assemble([]RawBlock{
		{Block: parent, PageID: "p1"},
		{Block: c1, PageID: "p1", ParentID: parent.ID()},
		{Block: c2, PageID: "p1", ParentID: parent.ID()},
		{Block: c3, PageID: "p1", ParentID: parent.ID()},
	}); err != nil {
		t.Fatal(err)
	}

	if next, ok := doc.NextSibling(c1.ID()); !ok || next != c2.ID() {
		t.Fatalf("next sibling of c1 = %q, %v; want %s", next, ok, c2.ID())
	}
	if prev, ok := doc.PrevSibling(c3.ID()); !ok || prev != c2.ID() {
		t.Fatalf("prev sibling of c3 = %q, %v; want %s", prev, ok, c2.ID())
	}
	if _, ok := doc.NextSibling(c3.ID()); ok {
		t.Fatal("c3 should have no next sibling")
	}

	ancestors := doc.Ancestors(c2.ID())
	if len(ancestors) != 1 || ancestors[0] != parent.ID() {
		t.Fatalf("ancestors = %v, want [%s]", ancestors, parent.ID())
	}
}
