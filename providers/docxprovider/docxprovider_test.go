package docxprovider

import (
	"context"
	"strings"
	"testing"

	"github.com/docunify/docunify/docerr"
	"github.com/docunify/docunify/provider"
)

func TestDetectByExtension(t *testing.T) {
	p := New()
	if !p.Detect(strings.NewReader("PK\x03\x04..."), "report.DOCX") {
		t.Fatal("expected extension-hint detection of .DOCX")
	}
}

func TestDetectRejectsOtherOOXMLExtensions(t *testing.T) {
	p := New()
	if p.Detect(strings.NewReader("PK\x03\x04..."), "deck.pptx") {
		t.Fatal("DOCX provider should not claim a .pptx extension")
	}
}

func TestExtractReturnsUnsupportedFormat(t *testing.T) {
	p := New()
	_, err := p.Extract(context.Background(), strings.NewReader("PK\x03\x04..."), provider.Config{SourceName: "t.docx"})
	if err == nil {
		t.Fatal("expected extraction to fail")
	}
	de, ok := err.(*docerr.Error)
	if !ok || de.Code != docerr.UnsupportedFormat {
		t.Fatalf("expected UnsupportedFormat, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	if New().Format() != provider.FormatDOCX {
		t.Fatalf("expected FormatDOCX")
	}
}
