package textflow

import (
	"context"
	"testing"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docerr"
)

func addLine(doc *block.Document, id, pageID string, x0, x1, y float64, text string) *block.Block {
	b := block.New(id, block.KindLine)
	b.SetPageID(pageID)
	b.SetPolygon(block.Polygon{{X: x0, Y: y}, {X: x1, Y: y}, {X: x1, Y: y + 12}, {X: x0, Y: y + 12}})
	b.SetPayload(&block.TextPayload{Content: text})
	doc.RegisterBlock(b)
	return b
}

func TestPromoteLinesJoinsHyphenatedBreak(t *testing.T) {
	doc := block.New(nil)
	page := &block.Page{ID: "p1", Number: 1, WidthPx: 600, HeightPx: 800}
	doc.AddPage(page)

	l1 := addLine(doc, "p1_Line_1", "p1", 10, 200, 100, "this is a hyphen-")
	l2 := addLine(doc, "p1_Line_2", "p1", 10, 200, 120, "ated word.")
	page.SetTopLevelIDs([]string{l1.ID(), l2.ID()})

	proc := New()
	if err := proc.Run(context.Background(), doc, docerr.NewReporter()); err != nil {
		t.Fatal(err)
	}

	promoted, err := doc.Get(l1.ID())
	if err != nil {
		t.Fatal(err)
	}
	if promoted.Kind() != block.KindText {
		t.Fatalf("expected promoted Text kind, got %s", promoted.Kind())
	}
	if got := promoted.Text(); got != "this is a hyphenated word." {
		t.Fatalf("unexpected joined text: %q", got)
	}
}

func TestRunningHeaderStrippedFromBodyFlow(t *testing.T) {
	doc := block.New(nil)

	var pageIDs []string
	for i := 0; i < 4; i++ {
		pageID := "page" + string(rune('1'+i))
		pageIDs = append(pageIDs, pageID)
		page := &block.Page{ID: pageID, Number: i + 1, WidthPx: 600, HeightPx: 800}
		doc.AddPage(page)

		header := addLine(doc, pageID+"_Line_h", pageID, 10, 200, 5, "Confidential Draft")
		body := addLine(doc, pageID+"_Line_b", pageID, 10, 200, 400, "unique body text "+pageID)
		page.SetTopLevelIDs([]string{header.ID(), body.ID()})
	}

	proc := New()
	if err := proc.Run(context.Background(), doc, docerr.NewReporter()); err != nil {
		t.Fatal(err)
	}

	for _, pageID := range pageIDs {
		page, ok := doc.Page(pageID)
		if !ok {
			t.Fatalf("missing page %s", pageID)
		}
		ids := page.TopLevelIDs()
		if len(ids) != 1 {
			t.Fatalf("expected header stripped, got %v", ids)
		}
		header, err := doc.Get(pageID + "_Line_h")
		if err != nil {
			t.Fatal(err)
		}
		if header.Kind() != block.KindPageHeader {
			t.Fatalf("expected PageHeader reclassification, got %s", header.Kind())
		}
	}
}

func TestReorderPageColumns(t *testing.T) {
	doc := block.New(nil)
	page := &block.Page{ID: "p1", Number: 1, WidthPx: 600, HeightPx: 800}
	doc.AddPage(page)

	// Two columns: left column (x~50) has two stacked blocks, right
	// column (x~500) has one. Reading order should be left column top
	// to bottom, then right column.
	left1 := addLine(doc, "p1_Line_1", "p1", 20, 80, 100, "left top")
	left2 := addLine(doc, "p1_Line_2", "p1", 20, 80, 300, "left bottom")
	right1 := addLine(doc, "p1_Line_3", "p1", 450, 550, 150, "right")
	page.SetTopLevelIDs([]string{right1.ID(), left1.ID(), left2.ID()})

	proc := New()
	if err := proc.Run(context.Background(), doc, docerr.NewReporter()); err != nil {
		t.Fatal(err)
	}

	ids := page.TopLevelIDs()
	if len(ids) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(ids))
	}
	if ids[0] != left1.ID() || ids[1] != left2.ID() || ids[2] != right1.ID() {
		t.Fatalf("unexpected reading order: %v", ids)
	}
}
