// Package tables implements the Table Subsystem (spec §4.7): candidate
// extraction via a pluggable ML layout model (strategy A) and a heuristic
// ruling/whitespace detector (strategy B), quality scoring, a bounded
// parameter search with content-addressed caching, strategy arbitration,
// cross-boundary merging, and degraded-table failure modes.
package tables

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/docunify/docunify/block"
)

// MetaTableWords is the block metadata key a provider or external OCR
// collaborator uses to attach word-level geometry hints to an otherwise
// unresolved Table block (no provider in this module rasterizes real
// crops; this is the externally-supplied substitute spec §4.7.1's
// "rasterized crop" would otherwise carry).
const MetaTableWords = "table.words"

// WordBox is one recognized token and its bounding polygon, the unit
// strategy B clusters into rows and columns when no ruling lines are
// available to detect.
type WordBox struct {
	Text    string
	Polygon block.Polygon
}

// Input is everything a candidate-extraction strategy has to work with
// for one unresolved Table block.
type Input struct {
	RawText string
	Words   []WordBox
}

// CropHash returns a stable content-addressed key for Input, used as the
// parameter-search cache key (spec §4.7.3).
func (in Input) CropHash() string {
	h := sha256.New()
	h.Write([]byte(in.RawText))
	for _, w := range in.Words {
		h.Write([]byte(w.Text))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// Candidate is one proposed table structure from a single strategy run at
// a single parameter setting (spec §4.7.1).
type Candidate struct {
	Rows    int
	Cols    int
	Cells   []block.TableCellPayload
	Method  block.ExtractionMethodKind
	Params  map[string]any
	Quality block.QualityBreakdown
	Combined float64
}
