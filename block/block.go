package block

import "maps"

// Point is a single coordinate in page-native pixel space.
type Point struct {
	X, Y float64
}

// Polygon is a four-corner bounding box in page coordinates, ordered
// top-left, top-right, bottom-right, bottom-left.
type Polygon [4]Point

// Contains reports whether other lies within p, within the given
// fractional tolerance (spec §3 invariant 4, default tolerance 0.05).
func (p Polygon) Contains(other Polygon, tolerance float64) bool {
	pMinX, pMinY, pMaxX, pMaxY := p.bounds()
	oMinX, oMinY, oMaxX, oMaxY := other.bounds()

	width := pMaxX - pMinX
	height := pMaxY - pMinY
	tolX := width * tolerance
	tolY := height * tolerance

	return oMinX >= pMinX-tolX && oMaxX <= pMaxX+tolX &&
		oMinY >= pMinY-tolY && oMaxY <= pMaxY+tolY
}

func (p Polygon) bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = p[0].X, p[0].Y
	maxX, maxY = p[0].X, p[0].Y
	for _, pt := range p[1:] {
		minX = min(minX, pt.X)
		minY = min(minY, pt.Y)
		maxX = max(maxX, pt.X)
		maxY = max(maxY, pt.Y)
	}
	return
}

// MidX returns the horizontal midpoint of the polygon, used by the
// reading-order column clustering (spec §4.4).
func (p Polygon) MidX() float64 {
	minX, _, maxX, _ := p.bounds()
	return (minX + maxX) / 2
}

// Top returns the y-coordinate of the polygon's top edge.
func (p Polygon) Top() float64 {
	_, minY, _, _ := p.bounds()
	return minY
}

// Height returns the polygon's height.
func (p Polygon) Height() float64 {
	_, minY, _, maxY := p.bounds()
	return maxY - minY
}

// Bottom returns the y-coordinate of the polygon's bottom edge.
func (p Polygon) Bottom() float64 {
	_, _, _, maxY := p.bounds()
	return maxY
}

// Block is the polymorphic tree node every document element is modeled
// as (spec §3, §9 "tagged variant over a closed kind enumeration"). Shared
// fields live here; kind-specific data lives in Payload.
type Block struct {
	id                    string
	kind                  Kind
	polygon               Polygon
	pageID                string
	children              []string
	structureRefs         []string
	textExtractionMethod  ExtractionMethod
	removed               bool
	metadata              map[string]any
	payload               Payload
}

// Payload holds kind-specific fields. Each concrete payload type
// implements this marker interface; processors type-switch on it rather
// than on Block itself, keeping the shared header free of kind leakage.
type Payload interface {
	payload()
}

// New constructs a Block of the given kind with a stable ID. Callers set
// polygon/page/text via the returned Block's setters before registering it
// with a Document.
func New(id string, kind Kind) *Block {
	return &Block{
		id:       id,
		kind:     kind,
		metadata: make(map[string]any),
	}
}

// ID returns the block's stable identifier, `{page}_{kind}_{counter}`.
func (b *Block) ID() string { return b.id }

// Kind returns the block's closed-enumeration kind.
func (b *Block) Kind() Kind { return b.kind }

// Polygon returns the block's bounding box.
func (b *Block) Polygon() Polygon { return b.polygon }

// SetPolygon sets the block's bounding box.
func (b *Block) SetPolygon(p Polygon) { b.polygon = p }

// PageID returns the owning page's ID.
func (b *Block) PageID() string { return b.pageID }

// SetPageID sets the owning page's ID.
func (b *Block) SetPageID(id string) { b.pageID = id }

// Children returns a copy of the ordered child block IDs.
func (b *Block) Children() []string {
	out := make([]string, len(b.children))
	copy(out, b.children)
	return out
}

// SetChildren replaces the block's children.
func (b *Block) SetChildren(ids []string) {
	b.children = append([]string(nil), ids...)
}

// AddChild appends a child ID.
func (b *Block) AddChild(id string) {
	b.children = append(b.children, id)
}

// StructureRefs returns a copy of the ordered structure references.
func (b *Block) StructureRefs() []string {
	out := make([]string, len(b.structureRefs))
	copy(out, b.structureRefs)
	return out
}

// SetStructureRefs replaces the block's structure references.
func (b *Block) SetStructureRefs(ids []string) {
	b.structureRefs = append([]string(nil), ids...)
}

// TextExtractionMethod returns how this leaf's text was obtained.
func (b *Block) TextExtractionMethod() ExtractionMethod { return b.textExtractionMethod }

// SetTextExtractionMethod sets how this leaf's text was obtained.
func (b *Block) SetTextExtractionMethod(m ExtractionMethod) { b.textExtractionMethod = m }

// Removed reports whether the block is tombstoned (spec §3 invariant 7).
func (b *Block) Removed() bool { return b.removed }

// Remove marks the block as logically deleted. The ID remains reserved in
// the Document's index.
func (b *Block) Remove() { b.removed = true }

// Metadata returns a copy of the block's open annotation map.
func (b *Block) Metadata() map[string]any {
	out := make(map[string]any, len(b.metadata))
	maps.Copy(out, b.metadata)
	return out
}

// SetMeta sets a single metadata key.
func (b *Block) SetMeta(key string, value any) {
	if b.metadata == nil {
		b.metadata = make(map[string]any)
	}
	b.metadata[key] = value
}

// Meta returns a single metadata value and whether it was present.
func (b *Block) Meta(key string) (any, bool) {
	v, ok := b.metadata[key]
	return v, ok
}

// Payload returns the kind-specific payload, or nil if none was attached.
func (b *Block) Payload() Payload { return b.payload }

// SetPayload attaches the kind-specific payload.
func (b *Block) SetPayload(p Payload) { b.payload = p }

// Text returns the plain-text content of this block, when its payload
// provides one. Container blocks without a TextPayload return "".
func (b *Block) Text() string {
	if tp, ok := b.payload.(interface{ Text() string }); ok {
		return tp.Text()
	}
	return ""
}
