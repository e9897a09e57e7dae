package block

import "fmt"

// IDGenerator produces stable `{page}_{kind}_{counter}` IDs per page
// (spec §3). Providers hold one generator per page being emitted.
type IDGenerator struct {
	pageID   string
	counters map[Kind]int
}

// NewIDGenerator creates a generator scoped to the given page.
func NewIDGenerator(pageID string) *IDGenerator {
	return &IDGenerator{pageID: pageID, counters: make(map[Kind]int)}
}

// Next returns the next stable ID for kind on this generator's page.
func (g *IDGenerator) Next(kind Kind) string {
	n := g.counters[kind]
	g.counters[kind] = n + 1
	return fmt.Sprintf("%s_%s_%d", g.pageID, kind.String(), n)
}
