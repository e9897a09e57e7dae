// Package pptxprovider is the documented stub adapter for PPTX input
// (spec §1 "format-specific raw-byte parsers ... are external
// collaborators with defined interfaces"). Walking the OOXML slide parts
// (ppt/slides/slideN.xml) and reconstructing shapes/text runs is out of
// this module's scope; this stub only exercises the provider.Provider
// contract a real adapter would satisfy.
package pptxprovider

import (
	"context"
	"io"
	"strings"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docerr"
	"github.com/docunify/docunify/provider"
)

// Provider implements provider.Provider for PPTX input.
type Provider struct{}

// New creates a PPTX provider stub.
func New() *Provider { return &Provider{} }

// Format returns provider.FormatPPTX.
func (p *Provider) Format() provider.Format { return provider.FormatPPTX }

// Detect relies on the ".pptx" extension hint: like docx, pptx is an
// OOXML zip container indistinguishable from its siblings by magic bytes
// alone without reading the archive's internal manifest, which is out of
// scope for this stub.
func (p *Provider) Detect(r io.Reader, extensionHint string) bool {
	return strings.HasSuffix(strings.ToLower(extensionHint), ".pptx")
}

// Extract always fails: this stub's contribution is the contract, not a
// slide-deck reader (spec §1 treats that as an external collaborator).
func (p *Provider) Extract(ctx context.Context, r io.Reader, cfg provider.Config) (*block.Document, error) {
	return nil, docerr.New(docerr.UnsupportedFormat,
		"pptxprovider: PPTX extraction requires an OOXML slide reader; no real PPTX parser is wired into this build")
}
