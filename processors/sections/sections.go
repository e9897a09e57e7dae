// Package sections implements the Section Hierarchy Builder (spec
// §4.5): infers heading levels from numbering and font-size clustering,
// enforces level monotonicity, and attaches a breadcrumb path to every
// SectionHeader and to the content it contains.
package sections

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/gosimple/slug"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docconfig"
	"github.com/docunify/docunify/docerr"
)

// Processor builds the document's section tree and breadcrumb paths.
type Processor struct {
	// MonotonicityPolicy controls how a level jump of more than one step
	// descending is resolved (spec §4.5).
	MonotonicityPolicy docconfig.MonotonicityPolicy
	// MaxLevel caps inferred heading depth (spec §4.5 "cap at 6").
	MaxLevel int
}

// New builds a Processor using policy for out-of-order level jumps.
func New(policy docconfig.MonotonicityPolicy) *Processor {
	if policy == "" {
		policy = docconfig.PolicyDemote
	}
	return &Processor{MonotonicityPolicy: policy, MaxLevel: 6}
}

// Name implements pipeline.Processor.
func (p *Processor) Name() string { return "sections" }

// Kinds implements pipeline.Processor. Empty set: breadcrumb propagation
// needs every block in reading order, not just headers.
func (p *Processor) Kinds() block.KindSet { return nil }

// Run implements pipeline.Processor.
func (p *Processor) Run(ctx context.Context, doc *block.Document, reporter *docerr.Reporter) error {
	headers, err := doc.Iter(block.NewKindSet(block.KindSectionHeader), true).All()
	if err != nil {
		return docerr.Wrap(docerr.ConcurrentMutation, err, "sections: header iteration")
	}
	if len(headers) == 0 {
		doc.AttachSections(&block.SectionTree{})
		return nil
	}

	levels := p.assignRawLevels(headers)

	maxLevel := p.MaxLevel
	if maxLevel <= 0 {
		maxLevel = 6
	}

	tree := &block.SectionTree{}
	stack := []*block.SectionNode{} // stack[i] holds the current node at level i+1

	for i, h := range headers {
		select {
		case <-ctx.Done():
			return docerr.Wrap(docerr.Cancelled, ctx.Err(), "sections cancelled")
		default:
		}

		level := clamp(levels[i], 1, maxLevel)
		prevLevel := len(stack)

		if level > prevLevel+1 {
			switch p.MonotonicityPolicy {
			case docconfig.PolicyInsertSynthetic:
				for missing := prevLevel + 1; missing < level; missing++ {
					synthetic := p.synthesizeHeader(doc, h, missing)
					attachNode(&stack, tree, synthetic.ID(), missing, "Untitled Section")
				}
			default: // demote
				level = prevLevel + 1
			}
		}

		title := sectionTitle(h)
		attachNode(&stack, tree, h.ID(), level, title)
		setHeaderLevel(h, level, breadcrumbOf(stack))
	}

	doc.AttachSections(tree)
	propagateBreadcrumbs(doc)
	return nil
}

// assignRawLevels computes a pre-monotonicity level for each header:
// numbering wins when present (spec §4.5 step 2); otherwise headers are
// grouped by font-size cluster, largest cluster first (spec §4.5 step
// 3).
func (p *Processor) assignRawLevels(headers []*block.Block) []int {
	levels := make([]int, len(headers))
	var unnumbered []int // indices into headers lacking numbering

	for i, h := range headers {
		title := sectionTitle(h)
		if _, depth, ok := parseNumbering(title); ok {
			levels[i] = depth
			continue
		}
		unnumbered = append(unnumbered, i)
	}

	if len(unnumbered) == 0 {
		return levels
	}

	sizeOf := func(i int) float64 {
		if sh, ok := headers[i].Payload().(*block.SectionHeaderPayload); ok {
			return sh.FontSize
		}
		return 0
	}

	uniqueSizes := make(map[float64]bool)
	for _, i := range unnumbered {
		uniqueSizes[sizeOf(i)] = true
	}
	sorted := make([]float64, 0, len(uniqueSizes))
	for s := range uniqueSizes {
		sorted = append(sorted, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	clusterOf := make(map[float64]int)
	clusterIdx := 0
	for idx, s := range sorted {
		if idx == 0 {
			clusterOf[s] = 0
			continue
		}
		prev := sorted[idx-1]
		// A new cluster starts when consecutive font sizes diverge by
		// more than 15% of the larger one.
		if prev == 0 || (prev-s)/prev > 0.15 {
			clusterIdx++
		}
		clusterOf[s] = clusterIdx
	}

	for _, i := range unnumbered {
		levels[i] = clusterOf[sizeOf(i)] + 1
	}
	return levels
}

var numberingRe = regexp.MustCompile(`^([0-9]+|[A-Za-z])(\.[0-9]+|\.[A-Za-z])*\.?\s+`)
var appendixRe = regexp.MustCompile(`^Appendix\s+[A-Za-z0-9]+\b`)

// parseNumbering extracts a leading numbering prefix and its inferred
// depth (spec §4.5 step 1: "numbering prefix ... inferred depth from
// numbering"), e.g. "1.2." -> depth 2, "A." -> depth 1, "Appendix A" ->
// depth 1.
func parseNumbering(title string) (prefix string, depth int, ok bool) {
	title = strings.TrimSpace(title)

	if m := appendixRe.FindString(title); m != "" {
		return m, 1, true
	}

	m := numberingRe.FindString(title)
	if m == "" {
		return "", 0, false
	}
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m), "."))
	segments := strings.Split(trimmed, ".")
	return strings.TrimSpace(m), len(segments), true
}

func sectionTitle(h *block.Block) string {
	if sh, ok := h.Payload().(*block.SectionHeaderPayload); ok {
		return sh.Content
	}
	return h.Text()
}

func setHeaderLevel(h *block.Block, level int, breadcrumb []block.Breadcrumb) {
	sh, ok := h.Payload().(*block.SectionHeaderPayload)
	if !ok {
		sh = &block.SectionHeaderPayload{Content: h.Text()}
	}
	sh.Level = level
	sh.Breadcrumb = breadcrumb
	h.SetPayload(sh)
}

// attachNode truncates stack to the branch ancestor of level, creates a
// node for (id, level, title), wires it under the resulting stack top (or
// as a root), pushes it, and returns it.
func attachNode(stack *[]*block.SectionNode, tree *block.SectionTree, id string, level int, title string) *block.SectionNode {
	if level-1 < len(*stack) {
		*stack = (*stack)[:level-1]
	}

	node := &block.SectionNode{
		HeaderID: id,
		Level:    level,
		Title:    title,
		Hash:     slug.Make(title),
	}

	if len(*stack) == 0 {
		tree.Roots = append(tree.Roots, node)
	} else {
		parent := (*stack)[len(*stack)-1]
		parent.Children = append(parent.Children, node)
	}
	*stack = append(*stack, node)
	return node
}

func breadcrumbOf(stack []*block.SectionNode) []block.Breadcrumb {
	out := make([]block.Breadcrumb, len(stack))
	for i, n := range stack {
		out[i] = block.Breadcrumb{Level: n.Level, Title: n.Title, Hash: n.Hash}
	}
	return out
}

var syntheticCounter int

// synthesizeHeader inserts a placeholder SectionHeader block to bridge a
// monotonicity gap (spec §4.5 step 4, insert_synthetic policy). It is
// registered in the Document so it is addressable like any other block,
// alongside the header whose jump triggered it.
func (p *Processor) synthesizeHeader(doc *block.Document, near *block.Block, level int) *block.Block {
	syntheticCounter++
	id := fmt.Sprintf("%s_SectionHeader_synthetic_%d", near.PageID(), syntheticCounter)

	n := block.New(id, block.KindSectionHeader)
	n.SetPageID(near.PageID())
	n.SetPayload(&block.SectionHeaderPayload{Content: "Untitled Section", Level: level})
	doc.RegisterBlock(n)
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// propagateBreadcrumbs attaches each content block's containing header's
// breadcrumb to the block's own metadata under "breadcrumb" (spec §4.5 "attaches breadcrumbs ...
// to every content block via its containing header, the nearest
// preceding header in reading order on the same or ancestor page").
func propagateBreadcrumbs(doc *block.Document) {
	all, err := doc.Iter(nil, true).All()
	if err != nil {
		return
	}

	var current []block.Breadcrumb
	for _, b := range all {
		if b.Kind() == block.KindSectionHeader {
			if sh, ok := b.Payload().(*block.SectionHeaderPayload); ok {
				current = sh.Breadcrumb
			}
			continue
		}
		if len(current) == 0 {
			continue
		}
		b.SetMeta("breadcrumb", current)
	}
}
