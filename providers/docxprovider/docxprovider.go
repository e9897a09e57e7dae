// Package docxprovider is the documented stub adapter for DOCX input
// (spec §1 "format-specific raw-byte parsers ... are external
// collaborators with defined interfaces", §4.2 "DOCX must not route
// through PDF"). Unzipping the OOXML package and walking its
// word/document.xml structure is out of this module's scope; this stub
// only exercises the provider.Provider contract a real adapter would
// satisfy.
package docxprovider

import (
	"context"
	"io"
	"strings"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docerr"
	"github.com/docunify/docunify/provider"
)

// Provider implements provider.Provider for DOCX input.
type Provider struct{}

// New creates a DOCX provider stub.
func New() *Provider { return &Provider{} }

// Format returns provider.FormatDOCX.
func (p *Provider) Format() provider.Format { return provider.FormatDOCX }

// Detect relies on the ".docx" extension hint: the zip container magic
// bytes alone are shared with every other OOXML format, so without
// reading the archive's internal manifest (out of scope for this stub)
// the extension is the only reliable signal available.
func (p *Provider) Detect(r io.Reader, extensionHint string) bool {
	return strings.HasSuffix(strings.ToLower(extensionHint), ".docx")
}

// Extract always fails: this stub's contribution is the contract, not an
// OOXML reader (spec §1 treats that as an external collaborator).
func (p *Provider) Extract(ctx context.Context, r io.Reader, cfg provider.Config) (*block.Document, error) {
	return nil, docerr.New(docerr.UnsupportedFormat,
		"docxprovider: DOCX extraction requires an OOXML reader; no real DOCX parser is wired into this build")
}
