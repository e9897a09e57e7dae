package pipeline

import (
	"context"
	"testing"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docerr"
)

type upperProcessor struct{ ran bool }

func (p *upperProcessor) Name() string           { return "upper" }
func (p *upperProcessor) Kinds() block.KindSet    { return block.NewKindSet(block.KindText) }
func (p *upperProcessor) Run(ctx context.Context, doc *block.Document, reporter *docerr.Reporter) error {
	p.ran = true
	blocks, err := doc.Iter(p.Kinds(), true).All()
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if tp, ok := b.Payload().(*block.TextPayload); ok {
			tp.Content = tp.Content + "!"
		}
	}
	return nil
}

type failingProcessor struct{ code docerr.Code }

func (p *failingProcessor) Name() string        { return "failing" }
func (p *failingProcessor) Kinds() block.KindSet { return nil }
func (p *failingProcessor) Run(ctx context.Context, doc *block.Document, reporter *docerr.Reporter) error {
	return docerr.New(p.code, "synthetic failure")
}

func newDocWithText(t *testing.T) *block.Document {
	t.Helper()
	doc := block.New(nil)
	doc.AddPage(&block.Page{ID: "p1", Number: 1})
	gen := block.NewIDGenerator("p1")
	b := block.New(gen.Next(block.KindText), block.KindText)
	b.SetPayload(&block.TextPayload{Content: "hi"})
	if err := doc.Assemble([]block.RawBlock{{Block: b, PageID: "p1"}}); err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestPipelineRunsProcessorAgainstDocument(t *testing.T) {
	doc := newDocWithText(t)
	proc := &upperProcessor{}
	p := New([]Processor{proc}, DefaultOptions())

	if _, err := p.Run(context.Background(), doc); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !proc.ran {
		t.Fatal("expected processor to run")
	}

	texts, _ := doc.Iter(block.NewKindSet(block.KindText), true).All()
	if texts[0].Text() != "hi!" {
		t.Fatalf("text = %q, want %q", texts[0].Text(), "hi!")
	}
}

func TestPipelineAbortsOnFatalError(t *testing.T) {
	doc := newDocWithText(t)
	p := New([]Processor{&failingProcessor{code: docerr.CorruptedInput}}, DefaultOptions())

	_, err := p.Run(context.Background(), doc)
	if err == nil {
		t.Fatal("expected fatal error to abort pipeline")
	}
}

func TestPipelineRecordsRecoverableError(t *testing.T) {
	doc := newDocWithText(t)
	p := New([]Processor{
		&failingProcessor{code: docerr.TableExtractionFailed},
		&upperProcessor{},
	}, DefaultOptions())

	reporter, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("recoverable error should not abort pipeline: %v", err)
	}
	if !reporter.HasIssues() {
		t.Fatal("expected recorded issue")
	}

	texts, _ := doc.Iter(block.NewKindSet(block.KindText), true).All()
	if texts[0].Text() != "hi!" {
		t.Fatal("expected pipeline to continue past recoverable error")
	}
}

func TestRunBoundedPreservesOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	results := RunBounded(context.Background(), 2, items, func(ctx context.Context, n int) (int, error) {
		return n * n, nil
	})
	for i, r := range results {
		want := items[i] * items[i]
		if r.Value != want || r.Err != nil {
			t.Fatalf("index %d: got %+v, want value %d", i, r, want)
		}
	}
}
