package xmlprovider

import (
	"context"
	"strings"
	"testing"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/provider"
)

func TestExtractBuildsTextAndHeaders(t *testing.T) {
	src := `<?xml version="1.0"?>
<doc>
  <title>Report</title>
  <section>
    <p>Body paragraph.</p>
  </section>
</doc>`

	p := New()
	doc, err := p.Extract(context.Background(), strings.NewReader(src), provider.Config{SourceName: "t.xml"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	headers, err := doc.Iter(block.NewKindSet(block.KindSectionHeader), true).All()
	if err != nil {
		t.Fatal(err)
	}
	if len(headers) != 1 {
		t.Fatalf("got %d headers, want 1", len(headers))
	}

	texts, err := doc.Iter(block.NewKindSet(block.KindText), true).All()
	if err != nil {
		t.Fatal(err)
	}
	if len(texts) != 1 || texts[0].Text() != "Body paragraph." {
		t.Fatalf("texts = %v", texts)
	}
}

func TestDetectRejectsHTML(t *testing.T) {
	p := New()
	if p.Detect(strings.NewReader("<!DOCTYPE html><html></html>"), "") {
		t.Fatal("XML provider should not claim an HTML document")
	}
	if !p.Detect(strings.NewReader(`<?xml version="1.0"?><root/>`), "") {
		t.Fatal("expected detection from xml declaration")
	}
}
