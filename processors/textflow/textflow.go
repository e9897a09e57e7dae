// Package textflow implements the Text & Reading-Order processors (spec
// §4.4): hyphenation repair, whitespace collapsing, Line→Text promotion,
// running-header/footer detection, and multi-column reading order.
package textflow

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docerr"
)

// columnItem is a top-level block projected to the coordinates the
// reading-order detector needs.
type columnItem struct {
	id   string
	midX float64
	top  float64
}

// Processor joins hyphenated line breaks, collapses whitespace, promotes
// Line blocks to Text, strips repeated headers/footers from body flow,
// and reorders each page's top-level blocks into reading order.
type Processor struct {
	// HeaderFooterMinRepeats is how many pages a candidate line must
	// repeat on (same normalized text within the same top or bottom
	// band; position alone does not count) before it is classified as a
	// PageHeader/PageFooter.
	HeaderFooterMinRepeats int
}

// New builds a Processor with spec defaults.
func New() *Processor {
	return &Processor{HeaderFooterMinRepeats: 3}
}

// Name implements pipeline.Processor.
func (p *Processor) Name() string { return "textflow" }

// Kinds implements pipeline.Processor. Empty set: this processor needs
// whole-page context (all top-level blocks per page) rather than a
// pre-filtered cross-page iterator.
func (p *Processor) Kinds() block.KindSet { return nil }

// Run implements pipeline.Processor.
func (p *Processor) Run(ctx context.Context, doc *block.Document, reporter *docerr.Reporter) error {
	if err := p.promoteLines(ctx, doc); err != nil {
		return err
	}

	headers, footers := p.detectRunningBlocks(doc)
	p.stripRunning(doc, headers, footers)

	for _, page := range doc.Pages() {
		select {
		case <-ctx.Done():
			return docerr.Wrap(docerr.Cancelled, ctx.Err(), "textflow cancelled")
		default:
		}
		p.reorderPage(doc, page)
	}

	return nil
}

var trailingHyphen = regexp.MustCompile(`-\s*$`)
var repeatedSpace = regexp.MustCompile(`[ \t]{2,}`)

// promoteLines joins hyphen-broken Line blocks into Text blocks,
// collapsing repeated interior whitespace on the way.
func (p *Processor) promoteLines(ctx context.Context, doc *block.Document) error {
	it := doc.Iter(block.NewKindSet(block.KindLine), true)
	lines, err := it.All()
	if err != nil {
		return docerr.Wrap(docerr.ConcurrentMutation, err, "textflow: line iteration")
	}

	var pending *block.Block
	var children []string
	var buf strings.Builder

	flush := func() {
		if pending == nil {
			return
		}
		promoted := block.New(pending.ID(), block.KindText)
		promoted.SetPolygon(pending.Polygon())
		promoted.SetPageID(pending.PageID())
		promoted.SetChildren(children)
		promoted.SetStructureRefs(pending.StructureRefs())
		promoted.SetTextExtractionMethod(pending.TextExtractionMethod())
		promoted.SetPayload(&block.TextPayload{Content: normalizeWhitespace(buf.String())})
		doc.RegisterBlock(promoted)
		buf.Reset()
		children = nil
		pending = nil
	}

	for _, b := range lines {
		select {
		case <-ctx.Done():
			return docerr.Wrap(docerr.Cancelled, ctx.Err(), "textflow cancelled")
		default:
		}

		text := b.Text()

		if pending == nil {
			pending = b
			children = append(children, b.Children()...)
			buf.WriteString(text)
			if !trailingHyphen.MatchString(text) {
				flush()
			}
			continue
		}

		if trailingHyphen.MatchString(buf.String()) {
			cur := trailingHyphen.ReplaceAllString(buf.String(), "")
			buf.Reset()
			buf.WriteString(cur)
			buf.WriteString(strings.TrimLeft(text, " \t"))
		} else {
			buf.WriteString(" ")
			buf.WriteString(text)
		}
		children = append(children, b.ID())
		children = append(children, b.Children()...)

		if !trailingHyphen.MatchString(text) {
			flush()
		}
	}
	flush()

	return nil
}

func normalizeWhitespace(s string) string {
	s = repeatedSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// detectRunningBlocks finds top-level blocks that repeat near-verbatim
// across at least HeaderFooterMinRepeats pages, splitting candidates into
// header band (top 15% of the page) and footer band (bottom 15%).
func (p *Processor) detectRunningBlocks(doc *block.Document) (headers, footers map[string]bool) {
	headers = make(map[string]bool)
	footers = make(map[string]bool)

	type occurrence struct {
		blockID string
		page    string
	}
	byText := make(map[string][]occurrence)

	pages := doc.Pages()
	for _, page := range pages {
		for _, id := range page.TopLevelIDs() {
			b, err := doc.Get(id)
			if err != nil {
				continue
			}
			text := normalizeWhitespace(b.Text())
			if text == "" {
				continue
			}
			top := b.Polygon().Top() / nonzero(page.HeightPx)
			bottom := (b.Polygon().Top() + b.Polygon().Height()) / nonzero(page.HeightPx)
			band := ""
			if top <= 0.15 {
				band = "header"
			} else if bottom >= 0.85 {
				band = "footer"
			} else {
				continue
			}
			key := band + "|" + text
			byText[key] = append(byText[key], occurrence{blockID: id, page: page.ID})
		}
	}

	minRepeats := p.HeaderFooterMinRepeats
	if minRepeats <= 0 {
		minRepeats = 3
	}

	for key, occs := range byText {
		pagesSeen := make(map[string]bool, len(occs))
		for _, o := range occs {
			pagesSeen[o.page] = true
		}
		if len(pagesSeen) < minRepeats {
			continue
		}
		target := headers
		if strings.HasPrefix(key, "footer|") {
			target = footers
		}
		for _, o := range occs {
			target[o.blockID] = true
		}
	}
	return headers, footers
}

func nonzero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// stripRunning reclassifies detected running blocks to PageHeader /
// PageFooter and removes them from each page's body-flow top-level order
// (spec §4.4 "strip them from body flow"); the blocks remain registered
// and reachable by ID, just no longer part of reading order.
func (p *Processor) stripRunning(doc *block.Document, headers, footers map[string]bool) {
	for id := range headers {
		reclassify(doc, id, block.KindPageHeader)
	}
	for id := range footers {
		reclassify(doc, id, block.KindPageFooter)
	}

	for _, page := range doc.Pages() {
		kept := make([]string, 0, len(page.TopLevelIDs()))
		for _, id := range page.TopLevelIDs() {
			if headers[id] || footers[id] {
				continue
			}
			kept = append(kept, id)
		}
		page.SetTopLevelIDs(kept)
	}
}

func reclassify(doc *block.Document, id string, kind block.Kind) {
	b, err := doc.Get(id)
	if err != nil {
		return
	}
	replacement := block.New(id, kind)
	replacement.SetPolygon(b.Polygon())
	replacement.SetPageID(b.PageID())
	replacement.SetChildren(b.Children())
	replacement.SetStructureRefs(b.StructureRefs())
	replacement.SetTextExtractionMethod(b.TextExtractionMethod())
	replacement.SetPayload(b.Payload())
	doc.RegisterBlock(replacement)
}

// reorderPage applies the multi-column reading-order detector (spec
// §4.4): cluster top-level blocks by x-midpoint using k-means with k
// chosen by silhouette over k∈{1,2,3}, sort within each column by y-top,
// then concatenate columns left to right.
func (p *Processor) reorderPage(doc *block.Document, page *block.Page) {
	ids := page.TopLevelIDs()
	if len(ids) < 2 {
		return
	}

	items := make([]columnItem, 0, len(ids))
	for _, id := range ids {
		b, err := doc.Get(id)
		if err != nil {
			continue
		}
		items = append(items, columnItem{id: id, midX: b.Polygon().MidX(), top: b.Polygon().Top()})
	}
	if len(items) < 2 {
		return
	}

	xs := make([]float64, len(items))
	for i, it := range items {
		xs[i] = it.midX
	}

	bestK, assignment := chooseColumns(xs)
	if bestK <= 1 {
		sort.SliceStable(items, func(i, j int) bool { return items[i].top < items[j].top })
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = it.id
		}
		page.SetTopLevelIDs(out)
		return
	}

	columns := make([][]columnItem, bestK)
	for i, it := range items {
		c := assignment[i]
		columns[c] = append(columns[c], it)
	}
	sort.Slice(columns, func(i, j int) bool {
		return meanMidX(columns[i]) < meanMidX(columns[j])
	})
	for _, col := range columns {
		sort.SliceStable(col, func(i, j int) bool { return col[i].top < col[j].top })
	}

	out := make([]string, 0, len(items))
	for _, col := range columns {
		for _, it := range col {
			out = append(out, it.id)
		}
	}
	page.SetTopLevelIDs(out)
}

func meanMidX(items []columnItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range items {
		sum += it.midX
	}
	return sum / float64(len(items))
}

// chooseColumns runs 1-D k-means for k in {1,2,3} and returns the k with
// the best silhouette score along with the resulting assignment.
func chooseColumns(xs []float64) (int, []int) {
	bestK := 1
	bestScore := -2.0
	bestAssignment := make([]int, len(xs))

	for k := 1; k <= 3 && k <= len(xs); k++ {
		assignment, centers := kmeans1D(xs, k)
		score := silhouette(xs, assignment, centers)
		if k == 1 {
			score = 0 // baseline: a single column always "fits", but adding
			// columns must clear a positive silhouette bar to win.
		}
		if score > bestScore {
			bestScore = score
			bestK = k
			bestAssignment = assignment
		}
	}
	return bestK, bestAssignment
}

// kmeans1D runs Lloyd's algorithm on scalar values, seeded by evenly
// spaced quantiles of the sorted input so results are deterministic.
func kmeans1D(xs []float64, k int) ([]int, []float64) {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	centers := make([]float64, k)
	for i := 0; i < k; i++ {
		idx := (i * (len(sorted) - 1)) / maxInt(k-1, 1)
		centers[i] = sorted[idx]
	}

	assignment := make([]int, len(xs))
	for iter := 0; iter < 20; iter++ {
		changed := false
		for i, x := range xs {
			best := 0
			bestDist := absF(x - centers[0])
			for c := 1; c < k; c++ {
				d := absF(x - centers[c])
				if d < bestDist {
					bestDist = d
					best = c
				}
			}
			if assignment[i] != best {
				assignment[i] = best
				changed = true
			}
		}

		sums := make([]float64, k)
		counts := make([]int, k)
		for i, x := range xs {
			c := assignment[i]
			sums[c] += x
			counts[c]++
		}
		for c := 0; c < k; c++ {
			if counts[c] > 0 {
				centers[c] = sums[c] / float64(counts[c])
			}
		}
		if !changed {
			break
		}
	}
	return assignment, centers
}

// silhouette computes the mean silhouette coefficient for a 1-D
// clustering, used to pick the column count in {1,2,3} (spec §4.4).
func silhouette(xs []float64, assignment []int, centers []float64) float64 {
	k := len(centers)
	if k <= 1 || len(xs) <= k {
		return 0
	}

	clusters := make([][]float64, k)
	for i, x := range xs {
		clusters[assignment[i]] = append(clusters[assignment[i]], x)
	}

	var total float64
	var n int
	for i, x := range xs {
		own := assignment[i]
		if len(clusters[own]) <= 1 {
			continue
		}
		a := meanDist(x, clusters[own])
		b := nearestOtherClusterDist(x, clusters, own)
		s := 0.0
		m := maxF(a, b)
		if m > 0 {
			s = (b - a) / m
		}
		total += s
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func meanDist(x float64, cluster []float64) float64 {
	var sum float64
	var count int
	for _, v := range cluster {
		if v == x {
			continue
		}
		sum += absF(x - v)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func nearestOtherClusterDist(x float64, clusters [][]float64, own int) float64 {
	best := -1.0
	for c, cluster := range clusters {
		if c == own || len(cluster) == 0 {
			continue
		}
		var sum float64
		for _, v := range cluster {
			sum += absF(x - v)
		}
		mean := sum / float64(len(cluster))
		if best < 0 || mean < best {
			best = mean
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
