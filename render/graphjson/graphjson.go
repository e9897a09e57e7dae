// Package graphjson implements the Graph JSON renderer (spec §4.9, §6): a
// flat vertex/edge projection of the Document suited to graph-database
// ingestion, with stable keys derived from block IDs.
package graphjson

import (
	"context"
	"encoding/json"

	"github.com/docunify/docunify/block"
)

// Renderer projects a Document to the graph JSON schema.
type Renderer struct{}

// New builds a Renderer.
func New() *Renderer { return &Renderer{} }

// Format implements render.Renderer.
func (r *Renderer) Format() string { return "graph_json" }

const schemaVersion = "1.0"

type graphDoc struct {
	Vertices vertices       `json:"vertices"`
	Edges    edges          `json:"edges"`
	Metadata graphMetadata  `json:"metadata"`
}

type vertices struct {
	Documents []documentVertex `json:"documents"`
	Sections  []sectionVertex  `json:"sections"`
	Blocks    []blockVertex    `json:"blocks"`
	Entities  []entityVertex   `json:"entities"`
}

type edges struct {
	Contains  []edge `json:"contains"`
	References []edge `json:"references"`
	RelatesTo []edge `json:"relates_to"`
}

type edge struct {
	From string `json:"_from"`
	To   string `json:"_to"`
	Type string `json:"_type"`
}

type documentVertex struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type sectionVertex struct {
	ID       string `json:"id"`
	HeaderID string `json:"header_id"`
	Level    int    `json:"level"`
	Title    string `json:"title"`
}

type blockVertex struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// entityVertex is reserved for a future named-entity-extraction stage;
// no processor in this module populates it (spec §4.8/§4.9 define no
// entity-detection processor), so the list is always empty rather than
// fabricated.
type entityVertex struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

type graphMetadata struct {
	SourceFile     string `json:"source_file,omitempty"`
	ProcessingTime any    `json:"processing_time,omitempty"`
	SchemaVersion  string `json:"schema_version"`
}

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, doc *block.Document) ([]byte, error) {
	out := graphDoc{Metadata: graphMetadata{SchemaVersion: schemaVersion}}

	meta := doc.Metadata()
	if v, ok := meta[block.MetaSourceType]; ok {
		if s, ok := v.(string); ok {
			out.Metadata.SourceFile = s
		}
	}
	if v, ok := meta[block.MetaProcessingTime]; ok {
		out.Metadata.ProcessingTime = v
	}

	out.Vertices.Documents = append(out.Vertices.Documents, documentVertex{ID: "document", Metadata: meta})

	if tree := doc.Sections(); tree != nil {
		tree.Walk(func(n *block.SectionNode) {
			out.Vertices.Sections = append(out.Vertices.Sections, sectionVertex{
				ID: n.Hash, HeaderID: n.HeaderID, Level: n.Level, Title: n.Title,
			})
		})
		walkSectionEdges(tree.Roots, "document", &out.Edges.Contains)
	}

	blocks, err := doc.Iter(nil, true).All()
	if err != nil {
		return nil, err
	}

	parent := parentIndex(blocks)

	for _, b := range blocks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		out.Vertices.Blocks = append(out.Vertices.Blocks, blockVertex{ID: b.ID(), Type: b.Kind().String(), Text: b.Text()})

		if p, ok := parent[b.ID()]; ok {
			out.Edges.Contains = append(out.Edges.Contains, edge{From: p, To: b.ID(), Type: "contains"})
			if b.Kind() == block.KindFootnote || b.Kind() == block.KindCaption {
				out.Edges.References = append(out.Edges.References, edge{From: b.ID(), To: p, Type: "references"})
			}
		} else if b.Kind() != block.KindSectionHeader {
			out.Edges.Contains = append(out.Edges.Contains, edge{From: "document", To: b.ID(), Type: "contains"})
		}

		if raw, ok := b.Meta("breadcrumb"); ok {
			if crumbs, ok := raw.([]block.Breadcrumb); ok && len(crumbs) > 0 {
				last := crumbs[len(crumbs)-1]
				out.Edges.RelatesTo = append(out.Edges.RelatesTo, edge{From: b.ID(), To: last.Hash, Type: "relates_to"})
			}
		}
	}

	return json.MarshalIndent(out, "", "  ")
}

// parentIndex maps every child block ID (via Children or StructureRefs)
// to its structural parent's ID.
func parentIndex(blocks []*block.Block) map[string]string {
	out := make(map[string]string)
	for _, b := range blocks {
		for _, childID := range b.Children() {
			out[childID] = b.ID()
		}
		for _, refID := range b.StructureRefs() {
			if _, exists := out[refID]; !exists {
				out[refID] = b.ID()
			}
		}
	}
	return out
}

func walkSectionEdges(nodes []*block.SectionNode, parentID string, out *[]edge) {
	for _, n := range nodes {
		*out = append(*out, edge{From: parentID, To: n.Hash, Type: "contains"})
		walkSectionEdges(n.Children, n.Hash, out)
	}
}
