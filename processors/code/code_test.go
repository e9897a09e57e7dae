package code

import (
	"context"
	"testing"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docconfig"
	"github.com/docunify/docunify/docerr"
)

func TestHeuristicDetectsGo(t *testing.T) {
	src := "package main\n\nimport (\n\t\"fmt\"\n)\n\nfunc main() {\n\tx := 1\n\tfmt.Println(x)\n}\n"
	lang, conf, ok := heuristicDetect(src)
	if !ok || lang != "go" {
		t.Fatalf("expected go, got %q conf=%v ok=%v", lang, conf, ok)
	}
}

func TestHeuristicDisambiguatesCppFromTypeScript(t *testing.T) {
	cpp := "#include <iostream>\n\ntemplate<typename T>\nT add(T a, T b) { return a + b; }\n\nint main() {\n\tstd::cout << add(1, 2);\n}\n"
	lang, _, ok := heuristicDetect(cpp)
	if !ok || lang != "cpp" {
		t.Fatalf("expected cpp, got %q ok=%v", lang, ok)
	}

	ts := "interface Point {\n\treadonly x: number;\n\treadonly y: number;\n}\n\nexport const origin: Point = { x: 0, y: 0 };\n"
	lang, _, ok = heuristicDetect(ts)
	if !ok || lang != "typescript" {
		t.Fatalf("expected typescript, got %q ok=%v", lang, ok)
	}
}

func TestHeuristicRejectsBelowConfidenceFloor(t *testing.T) {
	_, _, ok := heuristicDetect("just some plain english prose with no code markers at all")
	if ok {
		t.Fatal("expected no language match for prose")
	}
}

func TestProcessorSetsLanguageOnCodeBlock(t *testing.T) {
	doc := block.New(nil)
	page := &block.Page{ID: "p1", Number: 1}
	doc.AddPage(page)

	b := block.New("p1_Code_0", block.KindCode)
	b.SetPageID("p1")
	b.SetPayload(&block.CodePayload{Content: "fn main() {\n\tlet mut x = 1;\n\tprintln!(\"{}\", x);\n}\n"})
	doc.RegisterBlock(b)
	page.SetTopLevelIDs([]string{b.ID()})

	cfg := docconfig.Default().Code
	proc := New(cfg)
	if err := proc.Run(context.Background(), doc, docerr.NewReporter()); err != nil {
		t.Fatal(err)
	}

	payload := b.Payload().(*block.CodePayload)
	if payload.Language == nil {
		t.Fatalf("expected a language detected, got %+v", payload)
	}
	if payload.LanguageConfidence < cfg.MinConfidence {
		t.Fatalf("expected confidence above floor, got %v", payload.LanguageConfidence)
	}
}

func TestProcessorSkipsWhenDisabled(t *testing.T) {
	doc := block.New(nil)
	page := &block.Page{ID: "p1", Number: 1}
	doc.AddPage(page)

	b := block.New("p1_Code_0", block.KindCode)
	b.SetPageID("p1")
	b.SetPayload(&block.CodePayload{Content: "package main"})
	doc.RegisterBlock(b)
	page.SetTopLevelIDs([]string{b.ID()})

	cfg := docconfig.Default().Code
	cfg.EnableLanguageDetection = false
	proc := New(cfg)
	if err := proc.Run(context.Background(), doc, docerr.NewReporter()); err != nil {
		t.Fatal(err)
	}

	payload := b.Payload().(*block.CodePayload)
	if payload.Language != nil {
		t.Fatalf("expected no detection when disabled, got %+v", payload)
	}
}
