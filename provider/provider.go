// Package provider defines the contract every format-specific adapter
// must satisfy (spec §4.2): turn an input file into a finalized Document
// ready for the processor pipeline. Concrete adapters (HTML, XML, and —
// as external collaborators only — PDF/DOCX/PPTX) live in sibling
// packages under providers/.
package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docerr"
)

// Format identifies an input document format by name.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatPPTX Format = "pptx"
	FormatXML  Format = "xml"
	FormatHTML Format = "html"
)

// Config carries provider-level knobs. Kept minimal and explicit per
// spec §9 ("replace dynamic config dictionaries with an explicit
// configuration record"); format-specific options live in the adapter's
// own Config type and are passed through Options.
type Config struct {
	// SourceName is the originating file name or URI, used for
	// provenance and error context.
	SourceName string
	// Options carries adapter-specific settings (e.g. an HTML provider's
	// encoding override). Providers that need none may ignore it.
	Options map[string]any
}

// Provider converts a file handle into a finalized Document (spec §4.2).
type Provider interface {
	// Format returns the input format this provider handles.
	Format() Format

	// Detect reports whether this provider can handle the given content,
	// consulting magic bytes first and falling back to the file
	// extension hint (spec §6 "Format detected by magic bytes first,
	// extension second").
	Detect(r io.Reader, extensionHint string) bool

	// Extract reads r and returns a finalized Document: block IDs already
	// globally unique, geometry in page-native coordinates, and
	// text_extraction_method set on every leaf (spec §6 "Provider-facing
	// contract").
	Extract(ctx context.Context, r io.Reader, cfg Config) (*block.Document, error)
}

// Registry routes a file to the first provider that detects it,
// replacing the source's implicit global-registration pattern with an
// explicit, ordered provider list passed to NewRegistry (spec §9).
type Registry struct {
	providers []Provider
}

// NewRegistry builds a Registry from an explicit provider list.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: append([]Provider(nil), providers...)}
}

// Resolve finds the provider that claims ownership of the content. It
// peeks at up to 512 bytes of r for magic-byte detection and rewinds via
// the returned io.Reader, which callers must use in place of the
// original.
func (reg *Registry) Resolve(r io.Reader, extensionHint string) (Provider, io.Reader, error) {
	peek := make([]byte, 512)
	n, _ := io.ReadFull(r, peek)
	peek = peek[:n]
	rewound := io.MultiReader(bytes.NewReader(peek), r)

	for _, p := range reg.providers {
		if p.Detect(bytes.NewReader(peek), extensionHint) {
			return p, rewound, nil
		}
	}

	return nil, rewound, docerr.New(docerr.UnsupportedFormat,
		fmt.Sprintf("no provider recognized input (extension hint %q)", extensionHint))
}
