// Package hierarchicaljson implements the Hierarchical JSON renderer
// (spec §4.9, §6): document -> pages -> blocks, each block's children
// nested under it. A block carries its id, type, text and metadata; its
// kind-specific payload fields (table cells, header level, code
// language) are not emitted.
package hierarchicaljson

import (
	"context"
	"encoding/json"

	"github.com/docunify/docunify/block"
)

// Renderer projects a Document to the hierarchical JSON schema.
type Renderer struct{}

// New builds a Renderer.
func New() *Renderer { return &Renderer{} }

// Format implements render.Renderer.
func (r *Renderer) Format() string { return "hierarchical_json" }

type documentDoc struct {
	Document docEnvelope `json:"document"`
}

type docEnvelope struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Pages    []pageDoc      `json:"pages"`
}

type pageDoc struct {
	PageNum int        `json:"page_num"`
	Blocks  []blockDoc `json:"blocks"`
}

type blockDoc struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	Children []blockDoc     `json:"children,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, doc *block.Document) ([]byte, error) {
	out := documentDoc{Document: docEnvelope{ID: "document", Metadata: doc.Metadata()}}

	for _, page := range doc.Pages() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		pd := pageDoc{PageNum: page.Number}
		for _, id := range page.TopLevelIDs() {
			b, err := doc.Get(id)
			if err != nil {
				continue
			}
			pd.Blocks = append(pd.Blocks, renderBlock(doc, b))
		}
		out.Document.Pages = append(out.Document.Pages, pd)
	}

	return json.MarshalIndent(out, "", "  ")
}

func renderBlock(doc *block.Document, b *block.Block) blockDoc {
	bd := blockDoc{
		ID:   b.ID(),
		Type: b.Kind().String(),
		Text: b.Text(),
	}
	if meta := b.Metadata(); len(meta) > 0 {
		bd.Metadata = meta
	}
	for _, childID := range b.Children() {
		child, err := doc.Get(childID)
		if err != nil {
			continue
		}
		bd.Children = append(bd.Children, renderBlock(doc, child))
	}
	return bd
}
