package markdownrender

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/docunify/docunify/block"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

func buildSampleDoc() *block.Document {
	doc := block.New(nil)
	page := &block.Page{ID: "p1", Number: 1}
	doc.AddPage(page)

	header := block.New("p1_SectionHeader_0", block.KindSectionHeader)
	header.SetPageID("p1")
	header.SetPayload(&block.SectionHeaderPayload{Content: "Introduction", Level: 1})
	doc.RegisterBlock(header)

	body := block.New("p1_Text_0", block.KindText)
	body.SetPageID("p1")
	body.SetPayload(&block.TextPayload{Content: "Some prose."})
	doc.RegisterBlock(body)

	lang := "go"
	code := block.New("p1_Code_0", block.KindCode)
	code.SetPageID("p1")
	code.SetPayload(&block.CodePayload{Content: "fmt.Println(\"hi\")", Language: &lang})
	doc.RegisterBlock(code)

	tbl := block.New("p1_Table_0", block.KindTable)
	tbl.SetPageID("p1")
	tbl.SetPayload(&block.TablePayload{
		Rows: 2, Cols: 2,
		Cells: []block.TableCellPayload{
			{RowIndex: 0, ColIndex: 0, RowSpan: 1, ColSpan: 1, Content: "Name"},
			{RowIndex: 0, ColIndex: 1, RowSpan: 1, ColSpan: 1, Content: "Score"},
			{RowIndex: 1, ColIndex: 0, RowSpan: 1, ColSpan: 1, Content: "Ann"},
			{RowIndex: 1, ColIndex: 1, RowSpan: 1, ColSpan: 1, Content: "9"},
		},
	})
	doc.RegisterBlock(tbl)

	page.SetTopLevelIDs([]string{header.ID(), body.ID(), code.ID(), tbl.ID()})
	return doc
}

func TestRenderProducesExpectedMarkdownShapes(t *testing.T) {
	doc := buildSampleDoc()
	out, err := New().Render(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	md := string(out)

	if !strings.Contains(md, "# Introduction") {
		t.Fatalf("expected h1 heading, got:\n%s", md)
	}
	if !strings.Contains(md, "```go") {
		t.Fatalf("expected fenced go code block, got:\n%s", md)
	}
	if !strings.Contains(md, "| Name | Score |") {
		t.Fatalf("expected GFM table header row, got:\n%s", md)
	}
}

func TestRenderedMarkdownRoundTripsThroughGoldmark(t *testing.T) {
	doc := buildSampleDoc()
	out, err := New().Render(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var html bytes.Buffer
	if err := md.Convert(out, &html); err != nil {
		t.Fatalf("goldmark failed to parse rendered markdown: %v", err)
	}
	rendered := html.String()
	if !strings.Contains(rendered, "<h1") {
		t.Fatalf("expected parsed heading, got:\n%s", rendered)
	}
	if !strings.Contains(rendered, "<table>") {
		t.Fatalf("expected parsed GFM table, got:\n%s", rendered)
	}
}
