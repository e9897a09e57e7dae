package block

// Iterator is a lazy, snapshot-based traversal over a Document. It
// guarantees visiting each matching block exactly once per call (spec
// §4.1) and detects structural mutation that happened concurrently with
// the traversal (spec §4.1 "mutations during iteration ... raise
// ConcurrentMutation").
type Iterator struct {
	doc      *Document
	ids      []string
	pos      int
	baseVer  int64
	err      error
}

// Iter returns a lazy iterator over blocks matching any kind in filter,
// in page order when inPageOrder is true. A nil or empty filter matches
// every kind.
func (d *Document) Iter(filter KindSet, inPageOrder bool) *Iterator {
	d.mu.RLock()
	ver := d.version.Load()

	var ordered []string
	if inPageOrder {
		ordered = d.collectPageOrderLocked()
	} else {
		ordered = append([]string(nil), d.blockOrd...)
	}
	d.mu.RUnlock()

	ids := make([]string, 0, len(ordered))
	for _, id := range ordered {
		b, ok := d.blocks[id]
		if !ok || b.removed {
			continue
		}
		if len(filter) == 0 || filter.Has(b.kind) {
			ids = append(ids, id)
		}
	}

	return &Iterator{doc: d, ids: ids, baseVer: ver}
}

// collectPageOrderLocked walks pages top-level order, descending into
// children depth-first so nested content (table cells, list items, lines)
// is visited too. Callers must hold d.mu for reading.
func (d *Document) collectPageOrderLocked() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range d.pages {
		for _, id := range p.topLevelIDs {
			d.walkLocked(id, &out, seen)
		}
	}
	// Any registered block not reachable from a page (e.g. synthesized
	// but not yet wired) is appended in registration order so Iter still
	// visits it exactly once.
	for _, id := range d.blockOrd {
		if !seen[id] {
			d.walkLocked(id, &out, seen)
		}
	}
	return out
}

func (d *Document) walkLocked(id string, out *[]string, seen map[string]bool) {
	if seen[id] {
		return
	}
	b, ok := d.blocks[id]
	if !ok {
		return
	}
	seen[id] = true
	*out = append(*out, id)
	for _, childID := range b.children {
		d.walkLocked(childID, out, seen)
	}
}

// Next advances the iterator, returning the next matching block. It
// returns (nil, false) when exhausted or when a concurrent structural
// mutation was detected; Err reports the latter case.
func (it *Iterator) Next() (*Block, bool) {
	if it.err != nil {
		return nil, false
	}
	if it.pos >= len(it.ids) {
		return nil, false
	}

	it.doc.mu.RLock()
	curVer := it.doc.version.Load()
	if curVer != it.baseVer {
		it.doc.mu.RUnlock()
		it.err = &Error{Code: ErrConcurrentMutation, Message: "document mutated during iteration"}
		return nil, false
	}
	b := it.doc.blocks[it.ids[it.pos]]
	it.doc.mu.RUnlock()

	it.pos++
	return b, true
}

// Err returns the error that stopped iteration early, if any.
func (it *Iterator) Err() error {
	return it.err
}

// All drains the iterator into a slice. Prefer Next for large documents
// where lazy traversal matters; All is a convenience for processors that
// need the full matching set up front (e.g. to snapshot before a
// worker-pool fan-out, spec §5 "readers snapshot by ID").
func (it *Iterator) All() ([]*Block, error) {
	var out []*Block
	for {
		b, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, b)
	}
	return out, it.err
}

// ErrCode is the closed set of block-package-local fatal error codes. It
// mirrors docerr.Code's values without importing docerr, to avoid a
// dependency cycle (docerr is a leaf package the whole module can use;
// block is lower still).
type ErrCode string

const (
	ErrConcurrentMutation ErrCode = "ConcurrentMutation"
	ErrUnknownBlockID     ErrCode = "UnknownBlockId"
)

// Error is block package's minimal structured error, convertible by
// callers into a docerr.Error via docerr.Wrap.
type Error struct {
	Code    ErrCode
	Message string
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

// NextSibling returns the block ID immediately following id within its
// parent's children (or its page's top-level order, for top-level
// blocks), and whether one exists.
func (d *Document) NextSibling(id string) (string, bool) {
	siblings, idx := d.siblingContext(id)
	if idx < 0 || idx+1 >= len(siblings) {
		return "", false
	}
	return siblings[idx+1], true
}

// PrevSibling returns the block ID immediately preceding id within its
// parent's children (or its page's top-level order), and whether one
// exists.
func (d *Document) PrevSibling(id string) (string, bool) {
	siblings, idx := d.siblingContext(id)
	if idx <= 0 {
		return "", false
	}
	return siblings[idx-1], true
}

func (d *Document) siblingContext(id string) ([]string, int) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if parentID, ok := d.findParentLocked(id); ok {
		parent := d.blocks[parentID]
		return parent.children, indexOf(parent.children, id)
	}
	// Fall back to page-level top-level order.
	b, ok := d.blocks[id]
	if !ok {
		return nil, -1
	}
	page, ok := d.pages[d.pageIdx[b.pageID]], true
	if !ok || page == nil {
		return nil, -1
	}
	return page.topLevelIDs, indexOf(page.topLevelIDs, id)
}

// Ancestors returns the chain of ancestor block IDs from the immediate
// parent up to the root, for the given block.
func (d *Document) Ancestors(id string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []string
	cur := id
	for {
		parentID, ok := d.findParentLocked(cur)
		if !ok {
			break
		}
		out = append(out, parentID)
		cur = parentID
	}
	return out
}

// findParentLocked performs a linear scan of the block index to find the
// block whose children include id. Documents are processed once per run
// and this is only used for navigation helpers (not hot pipeline code),
// so a scan is acceptable; callers must hold d.mu for reading.
func (d *Document) findParentLocked(id string) (string, bool) {
	for _, candidateID := range d.blockOrd {
		b := d.blocks[candidateID]
		if b == nil {
			continue
		}
		for _, childID := range b.children {
			if childID == id {
				return candidateID, true
			}
		}
	}
	return "", false
}

func indexOf(ids []string, target string) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}
