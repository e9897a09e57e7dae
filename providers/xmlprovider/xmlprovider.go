// Package xmlprovider extracts a Document from generic XML input. It
// treats element nesting as the structural cue (spec §4.2 "element
// nesting in XML/HTML"): leaf elements with text content become Text
// blocks, elements named like headings become SectionHeader blocks, and
// everything else is a transparent container whose children are recursed
// into directly.
package xmlprovider

import (
	"context"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docerr"
	"github.com/docunify/docunify/provider"
)

// headingTags maps common heading-ish element names to a level, for
// schemas that encode their own section markers (DocBook's <title> at
// varying depth, custom "h1".."h6"-alikes). An element named "heading"
// followed by a depth digit (e.g. "heading2") takes that digit as its
// level. Generic XML has no universal heading convention, so
// SectionHeaderPayload.Numbering is left empty and section inference
// proper is deferred to the Section Hierarchy Builder.
var headingTags = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
	"title": 1, "heading": 1,
}

// Provider implements provider.Provider for application/xml input.
type Provider struct{}

// New creates an XML provider.
func New() *Provider { return &Provider{} }

// Format returns provider.FormatXML.
func (p *Provider) Format() provider.Format { return provider.FormatXML }

// Detect sniffs for an XML declaration, falling back to the ".xml"
// extension hint; a root tag without a declaration is only accepted
// together with that hint.
func (p *Provider) Detect(r io.Reader, extensionHint string) bool {
	buf := make([]byte, 256)
	n, _ := io.ReadFull(r, buf)
	s := strings.TrimSpace(string(buf[:n]))
	if strings.HasPrefix(s, "<?xml") {
		return true
	}
	if strings.HasPrefix(s, "<") && !strings.HasPrefix(strings.ToLower(s), "<!doctype html") && !strings.HasPrefix(strings.ToLower(s), "<html") {
		return strings.HasSuffix(strings.ToLower(extensionHint), ".xml")
	}
	return strings.HasSuffix(strings.ToLower(extensionHint), ".xml")
}

// Extract decodes r as XML and assembles a single-page Document whose
// block tree mirrors element nesting.
func (p *Provider) Extract(ctx context.Context, r io.Reader, cfg provider.Config) (*block.Document, error) {
	dec := xml.NewDecoder(r)

	var root *xmlNode
	var stack []*xmlNode

	for {
		select {
		case <-ctx.Done():
			return nil, docerr.Wrap(docerr.Cancelled, ctx.Err(), "xml extraction cancelled")
		default:
		}

		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, docerr.Wrap(docerr.CorruptedInput, err, "decoding XML").WithFile(cfg.SourceName)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local}
			for _, a := range t.Attr {
				if n.attrs == nil {
					n.attrs = make(map[string]string)
				}
				n.attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else {
				root = n
			}
			stack = append(stack, n)

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if root == nil {
		return nil, docerr.New(docerr.CorruptedInput, "XML document has no root element").WithFile(cfg.SourceName)
	}

	doc := block.New(map[string]any{
		block.MetaSourceType: string(provider.FormatXML),
	})
	doc.AddPage(&block.Page{ID: "p1", Number: 1})

	w := &walker{gen: block.NewIDGenerator("p1")}
	w.convert(root, "")

	if err := doc.Assemble(w.raw); err != nil {
		return nil, docerr.Wrap(docerr.CorruptedInput, err, "assembling XML blocks").WithFile(cfg.SourceName)
	}
	return doc, nil
}

// xmlNode is a minimal in-memory element tree built from the streaming
// decoder's token sequence, mirroring the shape encoding/xml's own
// Unmarshal builds internally but retaining element order and mixed
// text/children content the pipeline needs (see DESIGN.md for why a
// third-party XML package adds nothing over this).
type xmlNode struct {
	name     string
	attrs    map[string]string
	text     string
	children []*xmlNode
}

type walker struct {
	gen *block.IDGenerator
	raw []block.RawBlock
}

func (w *walker) convert(n *xmlNode, parentID string) *block.Block {
	trimmed := strings.TrimSpace(collapseSpace(n.text))

	name := strings.ToLower(n.name)
	level, ok := headingTags[name]
	if !ok && strings.HasPrefix(name, "heading") {
		if depth, err := strconv.Atoi(strings.TrimPrefix(name, "heading")); err == nil && depth >= 1 && depth <= 6 {
			level, ok = depth, true
		}
	}
	if ok {
		b := block.New(w.gen.Next(block.KindSectionHeader), block.KindSectionHeader)
		b.SetPayload(&block.SectionHeaderPayload{Content: trimmed, Level: level})
		b.SetTextExtractionMethod(block.ExtractionNative)
		w.raw = append(w.raw, block.RawBlock{Block: b, PageID: "p1", ParentID: parentID})
		return b
	}

	if len(n.children) == 0 {
		if trimmed == "" {
			return nil
		}
		b := block.New(w.gen.Next(block.KindText), block.KindText)
		b.SetPayload(&block.TextPayload{Content: trimmed})
		b.SetTextExtractionMethod(block.ExtractionNative)
		w.raw = append(w.raw, block.RawBlock{Block: b, PageID: "p1", ParentID: parentID})
		return b
	}

	// Element has children: treat it as a transparent container and
	// recurse, unless its own direct text content is also meaningful (a
	// mixed-content node), in which case emit that text as a sibling
	// Text block before descending.
	var last *block.Block
	if trimmed != "" {
		b := block.New(w.gen.Next(block.KindText), block.KindText)
		b.SetPayload(&block.TextPayload{Content: trimmed})
		b.SetTextExtractionMethod(block.ExtractionNative)
		w.raw = append(w.raw, block.RawBlock{Block: b, PageID: "p1", ParentID: parentID})
		last = b
	}
	for _, c := range n.children {
		if b := w.convert(c, parentID); b != nil {
			last = b
		}
	}
	return last
}

func collapseSpace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
