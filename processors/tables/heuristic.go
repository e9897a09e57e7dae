package tables

import (
	"sort"
	"strings"

	"github.com/docunify/docunify/block"
)

// heuristicParams is strategy B's parameter set (spec §4.7.1: line_scale,
// line_width, flavor, shift_text, split_text). line_width and split_text
// have no field here: the gap thresholds below derive from line_scale
// and flavor alone, and cells are never pre-merged before this strategy
// runs.
type heuristicParams struct {
	LineScale int
	Flavor    string // "lattice" or "stream"
	ShiftText bool
}

func (p heuristicParams) asMap() map[string]any {
	return map[string]any{
		"line_scale": p.LineScale,
		"flavor":     p.Flavor,
		"shift_text": p.ShiftText,
	}
}

// lineScaleSweep is the fixed parameter grid the bounded search iterates
// (spec §4.7.3 "fixed lattice sweep").
func lineScaleSweep() []heuristicParams {
	var out []heuristicParams
	for _, scale := range []int{15, 25, 40, 60} {
		for _, flavor := range []string{"lattice", "stream"} {
			for _, shift := range []bool{false, true} {
				out = append(out, heuristicParams{LineScale: scale, Flavor: flavor, ShiftText: shift})
			}
		}
	}
	return out
}

// extractionMethodFor reports which extraction_method tag a strategy-B
// candidate gets (spec §3's closed `heuristic_a`/`heuristic_b` pair):
// the lattice flavor is the ruling-detector path (tagged heuristic_a,
// spec §8 S5), the stream flavor is the whitespace-column fallback used
// when no rulings are present (tagged heuristic_b, spec §4.7.1).
func extractionMethodFor(params heuristicParams) block.ExtractionMethodKind {
	if params.Flavor == "lattice" {
		return block.ExtractionHeuristicA
	}
	return block.ExtractionHeuristicB
}

// detectHeuristicB builds a candidate grid from word-level geometry by
// clustering rows and columns on whitespace gaps (strategy B, spec
// §4.7.1's "falls back to whitespace-column inference when rulings are
// absent" — no rasterized crop exists in this module to detect rulings
// from directly, so the gap-clustering stands in for both the lattice and
// stream flavors, with the flavor widening or tightening the gap and
// selecting which of the two the result is tagged as).
func detectHeuristicB(in Input, params heuristicParams) (*Candidate, float64) {
	method := extractionMethodFor(params)
	if len(in.Words) == 0 {
		return &Candidate{
			Rows:   1,
			Cols:   1,
			Cells:  []block.TableCellPayload{{RowIndex: 0, ColIndex: 0, RowSpan: 1, ColSpan: 1, Content: normalizeCell(in.RawText, params.ShiftText)}},
			Method: method,
			Params: params.asMap(),
		}, 1.0
	}

	gapMultiplier := 1.0
	if params.Flavor == "stream" {
		gapMultiplier = 1.8
	}
	baseGap := float64(params.LineScale) / 10.0

	rowCenters := make([]float64, len(in.Words))
	colLefts := make([]float64, len(in.Words))
	for i, w := range in.Words {
		top, left := wordTopLeft(w.Polygon)
		height := wordHeight(w.Polygon)
		rowCenters[i] = top + height/2
		colLefts[i] = left
	}

	rowBounds := clusterBounds(rowCenters, baseGap*gapMultiplier)
	colBounds := clusterBounds(colLefts, baseGap*gapMultiplier*2)

	type cellKey struct{ row, col int }
	buckets := make(map[cellKey][]WordBox)
	for _, w := range in.Words {
		top, left := wordTopLeft(w.Polygon)
		height := wordHeight(w.Polygon)
		r := bucketIndex(top+height/2, rowBounds)
		c := bucketIndex(left, colBounds)
		key := cellKey{r, c}
		buckets[key] = append(buckets[key], w)
	}

	var cells []block.TableCellPayload
	for key, words := range buckets {
		sort.Slice(words, func(i, j int) bool {
			_, li := wordTopLeft(words[i].Polygon)
			_, lj := wordTopLeft(words[j].Polygon)
			return li < lj
		})
		var sb strings.Builder
		for i, w := range words {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(w.Text)
		}
		cells = append(cells, block.TableCellPayload{
			RowIndex: key.row, ColIndex: key.col, RowSpan: 1, ColSpan: 1,
			Content: normalizeCell(sb.String(), params.ShiftText),
		})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].RowIndex != cells[j].RowIndex {
			return cells[i].RowIndex < cells[j].RowIndex
		}
		return cells[i].ColIndex < cells[j].ColIndex
	})

	return &Candidate{
		Rows:   len(rowBounds),
		Cols:   len(colBounds),
		Cells:  cells,
		Method: method,
		Params: params.asMap(),
	}, alignmentFromBounds(colBounds)
}

// alignmentFromBounds scores how uniformly spaced the detected column
// boundaries are: ragged spacing between columns signals a guessed grid
// rather than a real tabular layout.
func alignmentFromBounds(bounds []float64) float64 {
	if len(bounds) < 2 {
		return 1.0
	}
	minGap, maxGap := -1.0, 0.0
	for i := 1; i < len(bounds); i++ {
		g := bounds[i] - bounds[i-1]
		if minGap < 0 || g < minGap {
			minGap = g
		}
		if g > maxGap {
			maxGap = g
		}
	}
	if maxGap == 0 {
		return 1.0
	}
	return minGap / maxGap
}

func wordTopLeft(p block.Polygon) (top, left float64) {
	top, left = p[0].Y, p[0].X
	for _, pt := range p {
		if pt.Y < top {
			top = pt.Y
		}
		if pt.X < left {
			left = pt.X
		}
	}
	return
}

func wordHeight(p block.Polygon) float64 {
	minY, maxY := p[0].Y, p[0].Y
	for _, pt := range p {
		if pt.Y < minY {
			minY = pt.Y
		}
		if pt.Y > maxY {
			maxY = pt.Y
		}
	}
	return maxY - minY
}

// clusterBounds sorts values and splits them into sequential clusters
// whenever the gap to the previous value exceeds threshold, returning
// each cluster's representative (its mean).
func clusterBounds(values []float64, threshold float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var bounds []float64
	clusterStart := 0
	flush := func(end int) {
		sum := 0.0
		for _, v := range sorted[clusterStart:end] {
			sum += v
		}
		bounds = append(bounds, sum/float64(end-clusterStart))
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] > threshold {
			flush(i)
			clusterStart = i
		}
	}
	flush(len(sorted))
	return bounds
}

// bucketIndex returns the index of the cluster bound closest to v.
func bucketIndex(v float64, bounds []float64) int {
	best, bestDist := 0, absF(v-bounds[0])
	for i, b := range bounds[1:] {
		if d := absF(v - b); d < bestDist {
			best, bestDist = i+1, d
		}
	}
	return best
}

func normalizeCell(s string, shift bool) string {
	s = strings.Join(strings.Fields(s), " ")
	if shift {
		s = strings.TrimSpace(s)
	}
	return s
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
