// Package dotrender implements a bonus Graphviz DOT renderer alongside
// the required Graph JSON renderer (spec §4.9), projecting the block
// tree's containment structure, grounded on the teacher's toDot
// (`output.go`).
package dotrender

import (
	"context"

	"github.com/docunify/docunify/block"
	"github.com/emicklei/dot"
)

// Renderer projects a Document's containment structure to a Graphviz DOT
// graph.
type Renderer struct{}

// New builds a Renderer.
func New() *Renderer { return &Renderer{} }

// Format implements render.Renderer.
func (r *Renderer) Format() string { return "dot" }

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, doc *block.Document) ([]byte, error) {
	g := dot.NewGraph(dot.Directed)
	nodes := make(map[string]dot.Node)

	root := g.Node("document").Label("document")
	nodes["document"] = root

	blocks, err := doc.Iter(nil, true).All()
	if err != nil {
		return nil, err
	}

	nodeFor := func(id, label string) dot.Node {
		if n, ok := nodes[id]; ok {
			return n
		}
		n := g.Node(id).Label(label)
		nodes[id] = n
		return n
	}

	for _, b := range blocks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		nodeFor(b.ID(), b.Kind().String())
	}

	for _, page := range doc.Pages() {
		for _, id := range page.TopLevelIDs() {
			if n, ok := nodes[id]; ok {
				g.Edge(root, n)
			}
		}
	}

	for _, b := range blocks {
		parent, ok := nodes[b.ID()]
		if !ok {
			continue
		}
		for _, childID := range b.Children() {
			if child, ok := nodes[childID]; ok {
				g.Edge(parent, child)
			}
		}
		for _, refID := range b.StructureRefs() {
			if ref, ok := nodes[refID]; ok {
				g.Edge(parent, ref)
			}
		}
	}

	return []byte(g.String()), nil
}
