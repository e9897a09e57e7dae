// Package markdownrender implements the Markdown renderer (spec §4.9):
// block-to-markdown mapping, fenced code blocks carrying `language`, GFM
// tables, `#`..`######` section headers, breadcrumbs as HTML comments.
package markdownrender

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/docunify/docunify/block"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Renderer projects a Document to GitHub-flavored Markdown.
type Renderer struct{}

// New builds a Renderer.
func New() *Renderer { return &Renderer{} }

// Format implements render.Renderer.
func (r *Renderer) Format() string { return "markdown" }

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, doc *block.Document) ([]byte, error) {
	var buf bytes.Buffer
	for _, page := range doc.Pages() {
		for _, id := range page.TopLevelIDs() {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			b, err := doc.Get(id)
			if err != nil {
				continue
			}
			renderBlock(&buf, doc, b)
		}
	}
	return buf.Bytes(), nil
}

func renderBlock(buf *bytes.Buffer, doc *block.Document, b *block.Block) {
	switch b.Kind() {
	case block.KindSectionHeader:
		payload := b.Payload().(*block.SectionHeaderPayload)
		level := payload.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		fmt.Fprintf(buf, "%s %s\n\n", strings.Repeat("#", level), payload.Content)
		if len(payload.Breadcrumb) > 0 {
			var parts []string
			for _, bc := range payload.Breadcrumb {
				parts = append(parts, bc.Title)
			}
			fmt.Fprintf(buf, "<!-- breadcrumb: %s -->\n\n", strings.Join(parts, " > "))
		}

	case block.KindCode:
		payload := b.Payload().(*block.CodePayload)
		lang := ""
		if payload.Language != nil {
			lang = *payload.Language
		}
		fmt.Fprintf(buf, "```%s\n%s\n```\n\n", lang, strings.TrimRight(payload.Content, "\n"))

	case block.KindEquation:
		payload := b.Payload().(*block.EquationPayload)
		fmt.Fprintf(buf, "$$\n%s\n$$\n\n", payload.Content)

	case block.KindListItem:
		payload := b.Payload().(*block.ListItemPayload)
		fmt.Fprintf(buf, "%s %s\n", payload.Ordinal, payload.Content)

	case block.KindReference:
		payload := b.Payload().(*block.ReferencePayload)
		fmt.Fprintf(buf, "[%s] %s\n", payload.Key, payload.Content)

	case block.KindFigure, block.KindPicture:
		payload := b.Payload().(*block.FigurePayload)
		fmt.Fprintf(buf, "![%s](%s)\n\n", payload.Caption, payload.ImageRef)

	case block.KindTable:
		renderTable(buf, b.Payload().(*block.TablePayload))

	case block.KindEquationGroup, block.KindListGroup, block.KindReferenceList:
		for _, childID := range b.Children() {
			child, err := doc.Get(childID)
			if err != nil {
				continue
			}
			renderBlock(buf, doc, child)
		}
		buf.WriteByte('\n')

	case block.KindText, block.KindLine, block.KindPageHeader, block.KindPageFooter,
		block.KindCaption, block.KindFootnote:
		if text := b.Text(); text != "" {
			fmt.Fprintf(buf, "%s\n\n", text)
		}

	default:
		if text := b.Text(); text != "" {
			fmt.Fprintf(buf, "%s\n\n", text)
		}
	}
}

// renderTable projects a TablePayload's cell grid through go-pretty's
// table.Writer GFM output.
func renderTable(buf *bytes.Buffer, payload *block.TablePayload) {
	if payload.Degraded || len(payload.Cells) == 0 {
		if payload.RawText != "" {
			fmt.Fprintf(buf, "%s\n\n", payload.RawText)
		}
		return
	}

	grid := make([][]string, payload.Rows)
	for i := range grid {
		grid[i] = make([]string, payload.Cols)
	}
	for _, cell := range payload.Cells {
		if cell.RowIndex < 0 || cell.RowIndex >= payload.Rows || cell.ColIndex < 0 || cell.ColIndex >= payload.Cols {
			continue
		}
		grid[cell.RowIndex][cell.ColIndex] = cell.Content
	}

	t := table.NewWriter()
	if len(grid) > 0 {
		header := make(table.Row, len(grid[0]))
		for i, v := range grid[0] {
			header[i] = v
		}
		t.AppendHeader(header)
		for _, row := range grid[1:] {
			r := make(table.Row, len(row))
			for i, v := range row {
				r[i] = v
			}
			t.AppendRow(r)
		}
	}
	buf.WriteString(t.RenderMarkdown())
	buf.WriteString("\n\n")
}
