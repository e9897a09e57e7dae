// Package htmlprovider extracts a Document from HTML input, using
// golang.org/x/net/html to parse the element tree and walking it into
// typed blocks with preserved nesting (spec §4.2 "preserving native
// structural cues ... element nesting in XML/HTML").
package htmlprovider

import (
	"context"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docerr"
	"github.com/docunify/docunify/provider"
)

// Provider implements provider.Provider for text/html input.
type Provider struct{}

// New creates an HTML provider.
func New() *Provider { return &Provider{} }

// Format returns provider.FormatHTML.
func (p *Provider) Format() provider.Format { return provider.FormatHTML }

// Detect sniffs for an HTML doctype or root tag within the first bytes,
// falling back to the ".html"/".htm" extension hint (spec §6).
func (p *Provider) Detect(r io.Reader, extensionHint string) bool {
	buf := make([]byte, 512)
	n, _ := io.ReadFull(r, buf)
	snippet := strings.ToLower(string(buf[:n]))
	if strings.Contains(snippet, "<!doctype html") || strings.Contains(snippet, "<html") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(extensionHint), ".html") ||
		strings.HasSuffix(strings.ToLower(extensionHint), ".htm")
}

// Extract parses r as HTML and assembles a single-page Document whose
// block tree mirrors the element nesting.
func (p *Provider) Extract(ctx context.Context, r io.Reader, cfg provider.Config) (*block.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, docerr.Wrap(docerr.CorruptedInput, err, "parsing HTML").WithFile(cfg.SourceName)
	}

	doc := block.New(map[string]any{
		block.MetaSourceType: string(provider.FormatHTML),
	})
	doc.AddPage(&block.Page{ID: "p1", Number: 1})

	w := &walker{gen: block.NewIDGenerator("p1")}
	body := findBody(root)
	if body == nil {
		return nil, docerr.New(docerr.CorruptedInput, "HTML document has no <body>").WithFile(cfg.SourceName)
	}

	for c := body.FirstChild; c != nil; c = c.NextSibling {
		select {
		case <-ctx.Done():
			return nil, docerr.Wrap(docerr.Cancelled, ctx.Err(), "html extraction cancelled")
		default:
		}
		w.convert(c, "")
	}

	if err := doc.Assemble(w.raw); err != nil {
		return nil, docerr.Wrap(docerr.CorruptedInput, err, "assembling HTML blocks").WithFile(cfg.SourceName)
	}
	return doc, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

type walker struct {
	gen *block.IDGenerator
	raw []block.RawBlock
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// convert recursively converts n into a Block (registering it and its
// descendants into w.raw with parentID as its container), returning the
// created block or nil for nodes that contribute no block (whitespace
// text, comments).
func (w *walker) convert(n *html.Node, parentID string) *block.Block {
	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return nil
		}
		b := block.New(w.gen.Next(block.KindText), block.KindText)
		b.SetPayload(&block.TextPayload{Content: text})
		b.SetTextExtractionMethod(block.ExtractionNative)
		w.raw = append(w.raw, block.RawBlock{Block: b, PageID: "p1", ParentID: parentID})
		return b

	case html.ElementNode:
		return w.convertElement(n, parentID)

	default:
		return nil
	}
}

func (w *walker) convertElement(n *html.Node, parentID string) *block.Block {
	if level, ok := headingLevels[n.DataAtom]; ok {
		b := block.New(w.gen.Next(block.KindSectionHeader), block.KindSectionHeader)
		b.SetPayload(&block.SectionHeaderPayload{Content: textContent(n), Level: level})
		b.SetTextExtractionMethod(block.ExtractionNative)
		w.raw = append(w.raw, block.RawBlock{Block: b, PageID: "p1", ParentID: parentID})
		return b
	}

	switch n.DataAtom {
	case atom.P:
		b := block.New(w.gen.Next(block.KindText), block.KindText)
		b.SetPayload(&block.TextPayload{Content: textContent(n)})
		b.SetTextExtractionMethod(block.ExtractionNative)
		w.raw = append(w.raw, block.RawBlock{Block: b, PageID: "p1", ParentID: parentID})
		return b

	case atom.Pre, atom.Code:
		b := block.New(w.gen.Next(block.KindCode), block.KindCode)
		b.SetPayload(&block.CodePayload{Content: textContent(n)})
		b.SetTextExtractionMethod(block.ExtractionNative)
		w.raw = append(w.raw, block.RawBlock{Block: b, PageID: "p1", ParentID: parentID})
		return b

	case atom.Ul, atom.Ol:
		group := block.New(w.gen.Next(block.KindListGroup), block.KindListGroup)
		w.raw = append(w.raw, block.RawBlock{Block: group, PageID: "p1", ParentID: parentID})
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Li {
				item := block.New(w.gen.Next(block.KindListItem), block.KindListItem)
				item.SetPayload(&block.ListItemPayload{Content: textContent(c)})
				item.SetTextExtractionMethod(block.ExtractionNative)
				w.raw = append(w.raw, block.RawBlock{Block: item, PageID: "p1", ParentID: group.ID()})
			}
		}
		return group

	case atom.Table:
		return w.convertTable(n, parentID)

	case atom.Figure:
		b := block.New(w.gen.Next(block.KindFigure), block.KindFigure)
		b.SetPayload(&block.FigurePayload{Caption: textContent(n)})
		w.raw = append(w.raw, block.RawBlock{Block: b, PageID: "p1", ParentID: parentID})
		return b

	default:
		// Unknown container: recurse into children under the same parent
		// so inline wrappers (div, span, section, article) don't lose
		// their content.
		var last *block.Block
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if b := w.convert(c, parentID); b != nil {
				last = b
			}
		}
		return last
	}
}

func (w *walker) convertTable(n *html.Node, parentID string) *block.Block {
	table := block.New(w.gen.Next(block.KindTable), block.KindTable)
	w.raw = append(w.raw, block.RawBlock{Block: table, PageID: "p1", ParentID: parentID})

	var cells []block.TableCellPayload
	var cellIDs []string
	row := 0
	maxCol := 0

	forEachRow(n, func(tr *html.Node) {
		col := 0
		for td := tr.FirstChild; td != nil; td = td.NextSibling {
			if td.Type != html.ElementNode || (td.DataAtom != atom.Td && td.DataAtom != atom.Th) {
				continue
			}
			rowSpan := attrInt(td, "rowspan", 1)
			colSpan := attrInt(td, "colspan", 1)

			cell := block.New(w.gen.Next(block.KindTableCell), block.KindTableCell)
			payload := &block.TableCellPayload{
				RowIndex: row, ColIndex: col, RowSpan: rowSpan, ColSpan: colSpan,
				Content: textContent(td),
			}
			cell.SetPayload(payload)
			cell.SetTextExtractionMethod(block.ExtractionNative)
			w.raw = append(w.raw, block.RawBlock{Block: cell, PageID: "p1", ParentID: table.ID()})

			cells = append(cells, *payload)
			cellIDs = append(cellIDs, cell.ID())
			col += colSpan
		}
		if col > maxCol {
			maxCol = col
		}
		row++
	})

	table.SetStructureRefs(cellIDs)
	table.SetPayload(&block.TablePayload{
		Rows:             row,
		Cols:             maxCol,
		Cells:            cells,
		ExtractionMethod: block.ExtractionHeuristicB,
		QualityScore:     1.0, // native HTML tables carry exact structure, no recovery needed
	})
	return table
}

func forEachRow(table *html.Node, fn func(tr *html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Tr {
				fn(c)
			} else if c.Type == html.ElementNode && (c.DataAtom == atom.Thead || c.DataAtom == atom.Tbody || c.DataAtom == atom.Tfoot) {
				walk(c)
			}
		}
	}
	walk(table)
}

func attrInt(n *html.Node, name string, def int) int {
	for _, a := range n.Attr {
		if a.Key == name {
			if v, err := strconv.Atoi(a.Val); err == nil && v > 0 {
				return v
			}
		}
	}
	return def
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(collapseSpace(sb.String()))
}

func collapseSpace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
