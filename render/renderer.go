// Package render defines the shared Renderer contract every output
// format adapter implements (spec §4.9): a pure projection from a
// finished Document to a concrete byte artifact, grounded on the
// teacher's `v2.Renderer` interface (`v2/renderer.go`).
package render

import (
	"context"

	"github.com/docunify/docunify/block"
)

// Renderer converts a finished Document into a concrete output artifact.
// Implementations must not mutate doc (spec §4.9 "Renderers must be pure
// projections").
type Renderer interface {
	// Format names the output format, e.g. "markdown", "hierarchical_json".
	Format() string
	// Render produces the artifact's bytes.
	Render(ctx context.Context, doc *block.Document) ([]byte, error)
}
