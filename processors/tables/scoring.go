package tables

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Quality component weights (spec §4.7.2: combined = 0.35*structure +
// 0.35*content + 0.15*alignment + 0.15*whitespace).
const (
	weightStructure  = 0.35
	weightContent    = 0.35
	weightAlignment  = 0.15
	weightWhitespace = 0.15
)

// scoreCandidate fills in c.Quality and c.Combined. alignment is supplied
// by the caller since only geometry-aware strategies (heuristic B) can
// derive it directly from column spacing; other strategies pass 1.0.
func scoreCandidate(c *Candidate, in Input, alignment float64) {
	c.Quality.Structure = structureScore(c)
	c.Quality.Content = contentScore(c, in)
	c.Quality.Alignment = clip01(alignment)
	c.Quality.Whitespace = whitespaceScore(c)
	c.Combined = weightStructure*c.Quality.Structure +
		weightContent*c.Quality.Content +
		weightAlignment*c.Quality.Alignment +
		weightWhitespace*c.Quality.Whitespace
}

func structureScore(c *Candidate) float64 {
	if len(c.Cells) == 0 {
		return 0
	}
	expected := c.Rows * c.Cols
	if expected <= 0 {
		expected = len(c.Cells)
	}
	spanOK := 0
	for _, cell := range c.Cells {
		if cell.RowSpan == 1 && cell.ColSpan == 1 {
			spanOK++
		}
	}
	spanRatio := float64(spanOK) / float64(len(c.Cells))
	completeness := float64(len(c.Cells)) / float64(expected)
	if completeness > 1 {
		completeness = 1
	}
	return 0.5*spanRatio + 0.5*completeness
}

func contentScore(c *Candidate, in Input) float64 {
	reference := referenceText(in)
	if reference == "" {
		return 1.0
	}
	candidate := candidateText(c)
	if candidate == "" {
		return 0
	}
	dist := levenshtein.ComputeDistance(reference, candidate)
	maxLen := len(reference)
	if len(candidate) > maxLen {
		maxLen = len(candidate)
	}
	if maxLen == 0 {
		return 1.0
	}
	return clip01(1 - float64(dist)/float64(maxLen))
}

func referenceText(in Input) string {
	if in.RawText != "" {
		return normalizeCell(in.RawText, true)
	}
	var sb strings.Builder
	for i, w := range in.Words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w.Text)
	}
	return normalizeCell(sb.String(), true)
}

func candidateText(c *Candidate) string {
	var sb strings.Builder
	for i, cell := range c.Cells {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(cell.Content)
	}
	return normalizeCell(sb.String(), true)
}

func whitespaceScore(c *Candidate) float64 {
	expected := c.Rows * c.Cols
	if expected <= 0 {
		expected = len(c.Cells)
	}
	if expected == 0 {
		return 0
	}
	nonBlank := 0
	for _, cell := range c.Cells {
		if strings.TrimSpace(cell.Content) != "" {
			nonBlank++
		}
	}
	return clip01(float64(nonBlank) / float64(expected))
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
