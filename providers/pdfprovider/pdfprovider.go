// Package pdfprovider is the documented stub adapter for PDF input
// (spec §1 "format-specific raw-byte parsers ... are external
// collaborators with defined interfaces"). Decoding a PDF's page
// content streams, recovering layout regions, and invoking the external
// layout/OCR model are all out of this module's scope; what this module
// owns is the provider.Provider contract those collaborators must
// satisfy once wired in. This stub recognizes PDF input by magic bytes
// and always fails extraction, so the contract (detection, error
// taxonomy) is exercised end to end without a real PDF parser behind it.
package pdfprovider

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docerr"
	"github.com/docunify/docunify/provider"
)

// magic is the PDF header every conforming file starts with.
var magic = []byte("%PDF-")

// Provider implements provider.Provider for application/pdf input. It
// never parses a byte of the file: a real adapter belongs behind this
// same interface, backed by whatever PDF/layout-model library a
// deployment wires in (spec §1).
type Provider struct{}

// New creates a PDF provider stub.
func New() *Provider { return &Provider{} }

// Format returns provider.FormatPDF.
func (p *Provider) Format() provider.Format { return provider.FormatPDF }

// Detect reports whether r starts with the PDF magic bytes, falling back
// to the ".pdf" extension hint (spec §6 "magic bytes first, extension
// second").
func (p *Provider) Detect(r io.Reader, extensionHint string) bool {
	buf := make([]byte, len(magic))
	n, _ := io.ReadFull(r, buf)
	if bytes.Equal(buf[:n], magic) {
		return true
	}
	return strings.HasSuffix(strings.ToLower(extensionHint), ".pdf")
}

// Extract always fails: this stub's contribution is the contract, not a
// PDF parser (spec §1 treats that as an external collaborator).
func (p *Provider) Extract(ctx context.Context, r io.Reader, cfg provider.Config) (*block.Document, error) {
	return nil, docerr.New(docerr.UnsupportedFormat,
		"pdfprovider: PDF extraction requires an external layout/OCR model; no real PDF parser is wired into this build")
}
