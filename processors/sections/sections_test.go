package sections

import (
	"context"
	"testing"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docconfig"
	"github.com/docunify/docunify/docerr"
)

func addHeader(doc *block.Document, id, pageID, content string) *block.Block {
	b := block.New(id, block.KindSectionHeader)
	b.SetPageID(pageID)
	b.SetPayload(&block.SectionHeaderPayload{Content: content})
	doc.RegisterBlock(b)
	return b
}

func TestNumberingDrivenLevels(t *testing.T) {
	doc := block.New(nil)
	page := &block.Page{ID: "p1", Number: 1}
	doc.AddPage(page)

	h1 := addHeader(doc, "p1_SectionHeader_0", "p1", "1. Introduction")
	h2 := addHeader(doc, "p1_SectionHeader_1", "p1", "1.1. Background")
	body := block.New("p1_Text_0", block.KindText)
	body.SetPageID("p1")
	body.SetPayload(&block.TextPayload{Content: "some body text"})
	doc.RegisterBlock(body)
	page.SetTopLevelIDs([]string{h1.ID(), h2.ID(), body.ID()})

	proc := New(docconfig.PolicyDemote)
	if err := proc.Run(context.Background(), doc, docerr.NewReporter()); err != nil {
		t.Fatal(err)
	}

	sh1 := h1.Payload().(*block.SectionHeaderPayload)
	sh2 := h2.Payload().(*block.SectionHeaderPayload)
	if sh1.Level != 1 {
		t.Fatalf("expected level 1, got %d", sh1.Level)
	}
	if sh2.Level != 2 {
		t.Fatalf("expected level 2, got %d", sh2.Level)
	}
	if len(sh2.Breadcrumb) != 2 || sh2.Breadcrumb[0].Title != "1. Introduction" {
		t.Fatalf("unexpected breadcrumb: %+v", sh2.Breadcrumb)
	}

	bodyMeta, ok := body.Meta("breadcrumb")
	if !ok {
		t.Fatal("expected breadcrumb propagated to body block")
	}
	crumbs := bodyMeta.([]block.Breadcrumb)
	if len(crumbs) != 2 || crumbs[1].Title != "1.1. Background" {
		t.Fatalf("unexpected propagated breadcrumb: %+v", crumbs)
	}

	tree := doc.Sections()
	if len(tree.Roots) != 1 || tree.Roots[0].Title != "1. Introduction" {
		t.Fatalf("unexpected section tree: %+v", tree.Roots)
	}
}

func TestMonotonicityDemotesSkippedLevel(t *testing.T) {
	doc := block.New(nil)
	page := &block.Page{ID: "p1", Number: 1}
	doc.AddPage(page)

	h1 := addHeader(doc, "p1_SectionHeader_0", "p1", "1. Introduction")
	h2 := addHeader(doc, "p1_SectionHeader_1", "p1", "1.1.1. Deep detail")
	page.SetTopLevelIDs([]string{h1.ID(), h2.ID()})

	proc := New(docconfig.PolicyDemote)
	if err := proc.Run(context.Background(), doc, docerr.NewReporter()); err != nil {
		t.Fatal(err)
	}

	sh2 := h2.Payload().(*block.SectionHeaderPayload)
	if sh2.Level != 2 {
		t.Fatalf("expected demotion to level 2, got %d", sh2.Level)
	}
}

func TestMonotonicityInsertsSynthetic(t *testing.T) {
	doc := block.New(nil)
	page := &block.Page{ID: "p1", Number: 1}
	doc.AddPage(page)

	h1 := addHeader(doc, "p1_SectionHeader_0", "p1", "1. Introduction")
	h2 := addHeader(doc, "p1_SectionHeader_1", "p1", "1.1.1. Deep detail")
	page.SetTopLevelIDs([]string{h1.ID(), h2.ID()})

	proc := New(docconfig.PolicyInsertSynthetic)
	if err := proc.Run(context.Background(), doc, docerr.NewReporter()); err != nil {
		t.Fatal(err)
	}

	sh2 := h2.Payload().(*block.SectionHeaderPayload)
	if sh2.Level != 3 {
		t.Fatalf("expected original level 3 preserved, got %d", sh2.Level)
	}
	if len(sh2.Breadcrumb) != 3 {
		t.Fatalf("expected synthetic level inserted into breadcrumb, got %+v", sh2.Breadcrumb)
	}
	if sh2.Breadcrumb[1].Title != "Untitled Section" {
		t.Fatalf("expected synthetic breadcrumb entry, got %+v", sh2.Breadcrumb[1])
	}
}
