// Package content implements the narrow Equation/List/Reference
// processors (spec §4.8): each detects its element kind by provider
// signal or text pattern, groups adjacent elements into a container
// block, and normalizes the element's inner text.
package content

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docerr"
)

var groupCounter int

// EquationProcessor detects display equations delimited by `\[ ... \]`
// and groups adjacent Equation blocks into an EquationGroup.
type EquationProcessor struct{}

// NewEquationProcessor builds an EquationProcessor.
func NewEquationProcessor() *EquationProcessor { return &EquationProcessor{} }

// Name implements pipeline.Processor.
func (p *EquationProcessor) Name() string { return "equations" }

// Kinds implements pipeline.Processor.
func (p *EquationProcessor) Kinds() block.KindSet { return nil }

var equationDelim = regexp.MustCompile(`^\s*\\\[(.*)\\\]\s*$`)

// Run implements pipeline.Processor.
func (p *EquationProcessor) Run(ctx context.Context, doc *block.Document, _ *docerr.Reporter) error {
	if err := reclassifyByPattern(ctx, doc, block.KindText, block.KindEquation, func(b *block.Block) (block.Payload, bool) {
		m := equationDelim.FindStringSubmatch(b.Text())
		if m == nil {
			return nil, false
		}
		return &block.EquationPayload{Content: normalizeText(m[1])}, true
	}); err != nil {
		return err
	}
	return groupAdjacent(ctx, doc, block.KindEquation, block.KindEquationGroup)
}

// ListProcessor detects numbered/bulleted list items and groups adjacent
// ListItem blocks into a ListGroup.
type ListProcessor struct{}

// NewListProcessor builds a ListProcessor.
func NewListProcessor() *ListProcessor { return &ListProcessor{} }

// Name implements pipeline.Processor.
func (p *ListProcessor) Name() string { return "lists" }

// Kinds implements pipeline.Processor.
func (p *ListProcessor) Kinds() block.KindSet { return nil }

var listGlyph = regexp.MustCompile(`^\s*([0-9]+\.|[-*•]|[a-zA-Z]\))\s+(.*)$`)

// Run implements pipeline.Processor.
func (p *ListProcessor) Run(ctx context.Context, doc *block.Document, _ *docerr.Reporter) error {
	if err := reclassifyByPattern(ctx, doc, block.KindText, block.KindListItem, func(b *block.Block) (block.Payload, bool) {
		m := listGlyph.FindStringSubmatch(b.Text())
		if m == nil {
			return nil, false
		}
		return &block.ListItemPayload{Ordinal: m[1], Content: normalizeText(m[2])}, true
	}); err != nil {
		return err
	}
	return groupAdjacent(ctx, doc, block.KindListItem, block.KindListGroup)
}

// ReferenceProcessor detects bracketed bibliography tokens like `[12]`
// and groups adjacent Reference blocks into a ReferenceList.
type ReferenceProcessor struct{}

// NewReferenceProcessor builds a ReferenceProcessor.
func NewReferenceProcessor() *ReferenceProcessor { return &ReferenceProcessor{} }

// Name implements pipeline.Processor.
func (p *ReferenceProcessor) Name() string { return "references" }

// Kinds implements pipeline.Processor.
func (p *ReferenceProcessor) Kinds() block.KindSet { return nil }

var referenceToken = regexp.MustCompile(`^\s*\[([0-9]+)\]\s*(.*)$`)

// Run implements pipeline.Processor.
func (p *ReferenceProcessor) Run(ctx context.Context, doc *block.Document, _ *docerr.Reporter) error {
	if err := reclassifyByPattern(ctx, doc, block.KindText, block.KindReference, func(b *block.Block) (block.Payload, bool) {
		m := referenceToken.FindStringSubmatch(b.Text())
		if m == nil {
			return nil, false
		}
		return &block.ReferencePayload{Key: m[1], Content: normalizeText(m[2])}, true
	}); err != nil {
		return err
	}
	return groupAdjacent(ctx, doc, block.KindReference, block.KindReferenceList)
}

var repeatedSpace = regexp.MustCompile(`[ \t]{2,}`)

func normalizeText(s string) string {
	s = repeatedSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// reclassifyByPattern scans every Text (or other source-kind) block in
// document order; when detect matches, the block is re-registered under
// the target kind with the returned payload, preserving its ID, geometry
// and page placement (spec §4.8 "detect ... by pattern").
func reclassifyByPattern(ctx context.Context, doc *block.Document, source, target block.Kind, detect func(*block.Block) (block.Payload, bool)) error {
	candidates, err := doc.Iter(block.NewKindSet(source), true).All()
	if err != nil {
		return docerr.Wrap(docerr.ConcurrentMutation, err, "content: pattern scan")
	}

	for _, b := range candidates {
		select {
		case <-ctx.Done():
			return docerr.Wrap(docerr.Cancelled, ctx.Err(), "content cancelled")
		default:
		}

		payload, ok := detect(b)
		if !ok {
			continue
		}

		replacement := block.New(b.ID(), target)
		replacement.SetPolygon(b.Polygon())
		replacement.SetPageID(b.PageID())
		replacement.SetChildren(b.Children())
		replacement.SetStructureRefs(b.StructureRefs())
		replacement.SetTextExtractionMethod(b.TextExtractionMethod())
		replacement.SetPayload(payload)
		doc.RegisterBlock(replacement)
	}
	return nil
}

// groupAdjacent collapses maximal runs of consecutive top-level blocks
// of elementKind, on the same page, into a single groupKind container
// whose children are the run's original block IDs (spec §4.8 "group
// into container blocks").
func groupAdjacent(ctx context.Context, doc *block.Document, elementKind, groupKind block.Kind) error {
	for _, page := range doc.Pages() {
		select {
		case <-ctx.Done():
			return docerr.Wrap(docerr.Cancelled, ctx.Err(), "content cancelled")
		default:
		}

		ids := page.TopLevelIDs()
		var out []string
		i := 0
		for i < len(ids) {
			b, err := doc.Get(ids[i])
			if err != nil || b.Kind() != elementKind {
				if err == nil {
					out = append(out, ids[i])
				}
				i++
				continue
			}

			run := []string{ids[i]}
			j := i + 1
			for j < len(ids) {
				next, err := doc.Get(ids[j])
				if err != nil || next.Kind() != elementKind {
					break
				}
				run = append(run, ids[j])
				j++
			}

			if len(run) == 1 {
				out = append(out, run[0])
			} else {
				groupCounter++
				groupID := fmt.Sprintf("%s_%s_group_%d", page.ID, groupKind.String(), groupCounter)
				group := block.New(groupID, groupKind)
				group.SetPageID(page.ID)
				group.SetChildren(run)
				doc.RegisterBlock(group)
				out = append(out, groupID)
			}
			i = j
		}
		page.SetTopLevelIDs(out)
	}
	return nil
}
