package block

import "fmt"

// RawBlock is the provider-facing shape: a flat block plus its intended
// page and parent, before Assemble wires the Document's children lists
// and reading order (spec §2 "bytes -> Provider -> raw block list ->
// Document.assemble"). Providers build these directly; Assemble is the
// only place that turns them into a registered, navigable Document.
type RawBlock struct {
	Block    *Block
	PageID   string
	ParentID string // empty for top-level blocks
}

// Assemble registers a flat list of provider-emitted blocks into the
// Document, wiring parent/child relationships and each page's top-level
// reading order from the input order (spec §2 Document Assembly).
// Providers are expected to emit rawBlocks already in the intended
// reading order; Assemble preserves it verbatim (invariant 3).
func (d *Document) Assemble(rawBlocks []RawBlock) error {
	topLevelByPage := make(map[string][]string)
	childrenByParent := make(map[string][]string)

	for _, rb := range rawBlocks {
		rb.Block.SetPageID(rb.PageID)
		d.RegisterBlock(rb.Block)

		if rb.ParentID == "" {
			topLevelByPage[rb.PageID] = append(topLevelByPage[rb.PageID], rb.Block.ID())
		} else {
			childrenByParent[rb.ParentID] = append(childrenByParent[rb.ParentID], rb.Block.ID())
		}
	}

	for parentID, childIDs := range childrenByParent {
		parent, err := d.Get(parentID)
		if err != nil {
			return fmt.Errorf("assemble: parent %s for children %v: %w", parentID, childIDs, err)
		}
		parent.SetChildren(childIDs)
	}

	for pageID, ids := range topLevelByPage {
		page, ok := d.Page(pageID)
		if !ok {
			return fmt.Errorf("assemble: unknown page %s", pageID)
		}
		page.SetTopLevelIDs(ids)
	}

	return d.ValidateInvariants()
}

// ValidateInvariants checks the structural invariants spec §3/§8 demand:
// unique IDs (guaranteed by the map-keyed index), resolvable references,
// and containment acyclicity. Geometry containment (invariant 4) is
// logged-not-fatal per spec and is exposed via CheckGeometry instead.
func (d *Document) ValidateInvariants() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for id, b := range d.blocks {
		for _, ref := range append(append([]string{}, b.children...), b.structureRefs...) {
			if _, ok := d.blocks[ref]; !ok {
				return fmt.Errorf("UnknownBlockId: block %s references unknown id %s", id, ref)
			}
		}
	}

	if cyc := d.findCycleLocked(); cyc != "" {
		return fmt.Errorf("containment cycle detected at block %s", cyc)
	}

	return nil
}

// findCycleLocked runs a DFS over the containment graph (children edges)
// looking for a back-edge. Callers must hold d.mu for reading.
func (d *Document) findCycleLocked() string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(d.blocks))

	var visit func(id string) string
	visit = func(id string) string {
		color[id] = gray
		b := d.blocks[id]
		if b != nil {
			for _, childID := range b.children {
				switch color[childID] {
				case gray:
					return childID
				case white:
					if found := visit(childID); found != "" {
						return found
					}
				}
			}
		}
		color[id] = black
		return ""
	}

	for id := range d.blocks {
		if color[id] == white {
			if found := visit(id); found != "" {
				return found
			}
		}
	}
	return ""
}

// GeometryViolation describes a child whose polygon escapes its parent's
// bounds beyond tolerance (spec §3 invariant 4). Logged, not fatal.
type GeometryViolation struct {
	ParentID string
	ChildID  string
}

// CheckGeometry scans the containment tree for geometry violations at the
// given tolerance (default 0.05).
func (d *Document) CheckGeometry(tolerance float64) []GeometryViolation {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var violations []GeometryViolation
	for id, b := range d.blocks {
		for _, childID := range b.children {
			child := d.blocks[childID]
			if child == nil {
				continue
			}
			if !b.polygon.Contains(child.polygon, tolerance) {
				violations = append(violations, GeometryViolation{ParentID: id, ChildID: childID})
			}
		}
	}
	return violations
}
