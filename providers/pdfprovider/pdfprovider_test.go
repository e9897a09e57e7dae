package pdfprovider

import (
	"context"
	"strings"
	"testing"

	"github.com/docunify/docunify/docerr"
	"github.com/docunify/docunify/provider"
)

func TestDetectByMagicBytes(t *testing.T) {
	p := New()
	if !p.Detect(strings.NewReader("%PDF-1.4\n%...binary..."), "") {
		t.Fatal("expected detection from PDF magic bytes")
	}
}

func TestDetectByExtensionFallback(t *testing.T) {
	p := New()
	if !p.Detect(strings.NewReader("not really a pdf"), "scan.PDF") {
		t.Fatal("expected extension-hint fallback to recognize .PDF")
	}
}

func TestDetectRejectsUnrelatedContent(t *testing.T) {
	p := New()
	if p.Detect(strings.NewReader("<html></html>"), ".html") {
		t.Fatal("PDF provider should not claim HTML content")
	}
}

func TestExtractReturnsUnsupportedFormat(t *testing.T) {
	p := New()
	_, err := p.Extract(context.Background(), strings.NewReader("%PDF-1.4"), provider.Config{SourceName: "t.pdf"})
	if err == nil {
		t.Fatal("expected extraction to fail")
	}
	de, ok := err.(*docerr.Error)
	if !ok || de.Code != docerr.UnsupportedFormat {
		t.Fatalf("expected UnsupportedFormat, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	if New().Format() != provider.FormatPDF {
		t.Fatalf("expected FormatPDF")
	}
}
