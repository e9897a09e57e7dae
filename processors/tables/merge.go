package tables

import (
	"strings"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docconfig"
)

// mergeAdjacent implements spec §4.7.5: two Table blocks that share a
// column count, whose header rows agree (or either has an empty row 0),
// and between
// which nothing but page headers/footers intervene in reading order, are
// folded into a single Table. The surviving block keeps the first
// table's ID; the absorbed one is removed from its page and tombstoned.
func mergeAdjacent(doc *block.Document, cfg docconfig.TableConfig) error {
	if !cfg.EnableMerging {
		return nil
	}

	pendingID := ""
	for _, page := range doc.Pages() {
		ids := page.TopLevelIDs()
		var out []string
		for _, id := range ids {
			b, err := doc.Get(id)
			if err != nil || b.Removed() {
				continue
			}

			switch b.Kind() {
			case block.KindPageHeader, block.KindPageFooter:
				out = append(out, id)
				continue
			case block.KindTable:
				if pendingID != "" && tryMerge(doc, pendingID, id) {
					continue // id absorbed into pendingID, drop from this page
				}
				pendingID = id
				out = append(out, id)
			default:
				pendingID = ""
				out = append(out, id)
			}
		}
		page.SetTopLevelIDs(out)
	}
	return nil
}

// tryMerge attempts to fold the table at id into the table at intoID,
// mutating intoID's payload in place. Returns whether the merge happened.
func tryMerge(doc *block.Document, intoID, id string) bool {
	first, err := doc.Get(intoID)
	if err != nil {
		return false
	}
	second, err := doc.Get(id)
	if err != nil {
		return false
	}
	firstPayload, ok := first.Payload().(*block.TablePayload)
	if !ok {
		return false
	}
	secondPayload, ok := second.Payload().(*block.TablePayload)
	if !ok {
		return false
	}
	if firstPayload.Cols != secondPayload.Cols || firstPayload.Cols == 0 {
		return false
	}
	if !headersCompatible(firstPayload, secondPayload) {
		return false
	}
	if !geometricallyAdjacent(doc, first, second) {
		return false
	}

	merged := make([]block.TableCellPayload, 0, len(firstPayload.Cells)+len(secondPayload.Cells))
	merged = append(merged, firstPayload.Cells...)
	for _, c := range secondPayload.Cells {
		c.RowIndex += firstPayload.Rows
		merged = append(merged, c)
	}

	originalIDs := append([]string(nil), firstPayload.Merge.OriginalTableIDs...)
	if len(originalIDs) == 0 {
		originalIDs = []string{intoID}
	}
	originalIDs = append(originalIDs, id)

	firstPayload.Rows += secondPayload.Rows
	firstPayload.Cells = merged
	firstPayload.Merge = block.MergeInfo{
		WasMerged:        true,
		Reason:           "adjacent tables share column count and header row across reading order",
		OriginalTableIDs: originalIDs,
	}
	first.SetPayload(firstPayload)
	second.Remove()
	return true
}

// geometricallyAdjacent implements spec §4.7.5's geometric-adjacency
// condition: on the same page, the vertical gap between the tables must
// be under 1.5x the first table's mean row height (its polygon height
// divided by its row count; per-row heights are not available, so this
// is not a true median); across a page
// boundary, the second table must start within the top 15% of its page.
// Blocks carrying no geometry (a zero-height polygon, e.g. a table
// synthesized without provider geometry) have nothing to disqualify the
// merge on, so the check passes rather than blocking on data that was
// never populated.
func geometricallyAdjacent(doc *block.Document, first, second *block.Block) bool {
	if first.PageID() == second.PageID() {
		firstPayload, ok := first.Payload().(*block.TablePayload)
		if !ok {
			return true
		}
		rows := firstPayload.Rows
		if rows <= 0 {
			rows = 1
		}
		rowHeight := first.Polygon().Height() / float64(rows)
		if rowHeight <= 0 {
			return true
		}
		gap := second.Polygon().Top() - first.Polygon().Bottom()
		return gap < 1.5*rowHeight
	}

	page, ok := doc.Page(second.PageID())
	if !ok || page.HeightPx <= 0 {
		return true
	}
	if second.Polygon() == (block.Polygon{}) {
		return true
	}
	return second.Polygon().Top() <= 0.15*page.HeightPx
}

// headersCompatible reports whether the two tables' row-0 content agree
// well enough to treat them as one continued table (spec §4.7.5: "Jaccard
// similarity >= 0.8, or no header row present").
func headersCompatible(a, b *block.TablePayload) bool {
	headerA := headerRowTokens(a)
	headerB := headerRowTokens(b)
	if len(headerA) == 0 || len(headerB) == 0 {
		return true
	}
	return jaccard(headerA, headerB) >= 0.8
}

func headerRowTokens(p *block.TablePayload) map[string]struct{} {
	out := make(map[string]struct{})
	for _, c := range p.Cells {
		if c.RowIndex != 0 {
			continue
		}
		for _, tok := range strings.Fields(strings.ToLower(c.Content)) {
			out[tok] = struct{}{}
		}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}
