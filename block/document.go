package block

import (
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
)

// Metadata keys the pipeline and renderers agree on for document-level
// annotations (spec §3 "document-level metadata").
const (
	MetaTitle           = "title"
	MetaLanguage        = "language"
	MetaSourceType      = "source_type"
	MetaProcessingTime  = "processing_time"
	MetaValidationIssues = "validation.issues"
)

// Page is an ordered sequence of top-level block IDs plus page-level
// geometry and provenance (spec §3).
type Page struct {
	ID           string
	Number       int
	WidthPx      float64
	HeightPx     float64
	ImageRef     string // opaque rasterized image reference, owned externally
	LayoutRefs   []string // opaque layout-detector output references
	topLevelIDs  []string
}

// TopLevelIDs returns a copy of the page's top-level block IDs in reading
// order (spec §3 invariant 3).
func (p *Page) TopLevelIDs() []string {
	out := make([]string, len(p.topLevelIDs))
	copy(out, p.topLevelIDs)
	return out
}

// SetTopLevelIDs replaces the page's top-level reading order. Processors
// that reorder must preserve the full set of IDs (invariant 3).
func (p *Page) SetTopLevelIDs(ids []string) {
	p.topLevelIDs = append([]string(nil), ids...)
}

// Document is the root of the block tree: an ordered sequence of pages, a
// global block index, and document-level metadata (spec §3).
type Document struct {
	mu       sync.RWMutex
	version  atomic.Int64
	pages    []*Page
	pageIdx  map[string]int
	blocks   map[string]*Block
	blockOrd []string // insertion order, for deterministic fallback iteration
	metadata map[string]any
	sections *SectionTree
}

// New creates an empty Document with the given initial metadata.
func New(metadata map[string]any) *Document {
	d := &Document{
		pageIdx:  make(map[string]int),
		blocks:   make(map[string]*Block),
		metadata: make(map[string]any, len(metadata)),
	}
	maps.Copy(d.metadata, metadata)
	return d
}

// AddPage appends a page to the document.
func (d *Document) AddPage(p *Page) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pageIdx[p.ID] = len(d.pages)
	d.pages = append(d.pages, p)
	d.version.Add(1)
}

// Pages returns a copy of the document's pages, in order.
func (d *Document) Pages() []*Page {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Page, len(d.pages))
	copy(out, d.pages)
	return out
}

// Page looks up a page by ID.
func (d *Document) Page(id string) (*Page, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	idx, ok := d.pageIdx[id]
	if !ok {
		return nil, false
	}
	return d.pages[idx], true
}

// RegisterBlock adds a block to the global index, returning its ID.
// Registering a block with an ID already present replaces it in place
// (used by processors that synthesize a new block under a reserved ID,
// e.g. a merged Table) without disturbing reading order.
func (d *Document) RegisterBlock(b *Block) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.blocks[b.id]; !exists {
		d.blockOrd = append(d.blockOrd, b.id)
	}
	d.blocks[b.id] = b
	d.version.Add(1)
	return b.id
}

// Get resolves a block ID, failing with UnknownBlockId when absent or
// when the id was never reserved.
func (d *Document) Get(id string) (*Block, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	b, ok := d.blocks[id]
	if !ok {
		return nil, newUnknownBlockID(id)
	}
	return b, nil
}

// MustGet resolves a block ID, panicking on failure. Reserved for
// internal call sites that have already validated the reference exists.
func (d *Document) MustGet(id string) *Block {
	b, err := d.Get(id)
	if err != nil {
		panic(err)
	}
	return b
}

// Metadata returns a copy of the document's metadata.
func (d *Document) Metadata() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]any, len(d.metadata))
	maps.Copy(out, d.metadata)
	return out
}

// SetMeta sets a document-level metadata key.
func (d *Document) SetMeta(key string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata[key] = value
}

// BlockCount returns the number of registered blocks, including removed
// tombstones.
func (d *Document) BlockCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.blocks)
}

// Sections returns the document's derived section tree, if
// Document.AttachSections has been called by the Section Hierarchy
// Builder.
func (d *Document) Sections() *SectionTree {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sections
}

// AttachSections stores the derived section tree (invoked by the Section
// Hierarchy Builder, spec §4.1 "Document.assemble_sections").
func (d *Document) AttachSections(t *SectionTree) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sections = t
}

func newUnknownBlockID(id string) error {
	return &unknownBlockIDError{id: id}
}

type unknownBlockIDError struct{ id string }

func (e *unknownBlockIDError) Error() string {
	return fmt.Sprintf("UnknownBlockId: %s", e.id)
}

// IsUnknownBlockID reports whether err is the UnknownBlockId sentinel
// produced by Get/MustGet.
func IsUnknownBlockID(err error) bool {
	_, ok := err.(*unknownBlockIDError)
	return ok
}
