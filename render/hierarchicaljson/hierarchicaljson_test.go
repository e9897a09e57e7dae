package hierarchicaljson

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/docunify/docunify/block"
)

func TestRenderNestsChildrenUnderParent(t *testing.T) {
	doc := block.New(nil)
	page := &block.Page{ID: "p1", Number: 1}
	doc.AddPage(page)

	item := block.New("p1_ListItem_0", block.KindListItem)
	item.SetPageID("p1")
	item.SetPayload(&block.ListItemPayload{Ordinal: "1.", Content: "first"})
	doc.RegisterBlock(item)

	group := block.New("p1_ListGroup_0", block.KindListGroup)
	group.SetPageID("p1")
	group.SetChildren([]string{item.ID()})
	doc.RegisterBlock(group)

	page.SetTopLevelIDs([]string{group.ID()})

	out, err := New().Render(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}

	var parsed documentDoc
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatal(err)
	}
	if len(parsed.Document.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(parsed.Document.Pages))
	}
	blocks := parsed.Document.Pages[0].Blocks
	if len(blocks) != 1 || blocks[0].Type != "ListGroup" {
		t.Fatalf("expected single ListGroup block, got %+v", blocks)
	}
	if len(blocks[0].Children) != 1 || blocks[0].Children[0].Text != "first" {
		t.Fatalf("expected nested list item child, got %+v", blocks[0].Children)
	}
}
