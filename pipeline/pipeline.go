// Package pipeline implements the ordered, type-filtered processor
// framework (spec §4.3): a Processor declares which Kinds it cares about
// and a Run method; the Pipeline executes a configured ordered list
// single-threaded and sequential, while still allowing bounded
// parallelism inside an individual processor (spec §5).
package pipeline

import (
	"context"
	"time"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docerr"
)

// Processor is one named transformation over a Document (spec §4.3).
type Processor interface {
	// Name identifies the processor in logs and error context.
	Name() string

	// Kinds returns the block kinds this processor operates on. An empty
	// set means the processor inspects the whole Document itself rather
	// than being handed a pre-filtered iterator.
	Kinds() block.KindSet

	// Run executes the processor against doc. Implementations must poll
	// ctx at loop boundaries (spec §4.3 "any processor that touches LLMs
	// must batch and await completion before returning") and leave the
	// Document in a consistent state if cancelled.
	Run(ctx context.Context, doc *block.Document, reporter *docerr.Reporter) error
}

// Options configures Pipeline execution (spec §5, §6).
type Options struct {
	// Parallelism bounds worker-pool width used by processors that
	// support it (spec §6 pipeline.parallelism, default min(4, cores)).
	Parallelism int
	// ProcessorBudget caps the wall-clock time allotted to any single
	// processor (spec §5 "overall processor budget, default 10 min").
	ProcessorBudget time.Duration
}

// DefaultOptions returns the spec-mandated defaults.
func DefaultOptions() Options {
	return Options{
		Parallelism:     DefaultParallelism(),
		ProcessorBudget: 10 * time.Minute,
	}
}

// Pipeline runs a fixed, explicit list of Processors over a Document in
// order (spec §9 "replace global registries with an explicit factory
// table passed into the Pipeline constructor").
type Pipeline struct {
	processors []Processor
	opts       Options
}

// New builds a Pipeline from an explicit, ordered processor list.
func New(processors []Processor, opts Options) *Pipeline {
	return &Pipeline{processors: processors, opts: opts}
}

// Run executes every processor in order against doc. A processor error
// whose docerr.Code is fatal aborts the run immediately with full
// context; a non-fatal error is recorded on the reporter and execution
// continues to the next processor. Run returns the accumulated reporter
// regardless of outcome so callers can inspect partial progress.
func (p *Pipeline) Run(ctx context.Context, doc *block.Document) (*docerr.Reporter, error) {
	reporter := docerr.NewReporter()

	for _, proc := range p.processors {
		select {
		case <-ctx.Done():
			return reporter, docerr.Wrap(docerr.Cancelled, ctx.Err(), "pipeline cancelled").WithProcessor(proc.Name())
		default:
		}

		procCtx, cancel := context.WithTimeout(ctx, p.budget())
		err := proc.Run(procCtx, doc, reporter)
		cancel()

		if err == nil {
			continue
		}

		de, ok := asDocErr(err)
		if !ok {
			return reporter, docerr.Wrap(docerr.CorruptedInput, err, "processor failed").WithProcessor(proc.Name())
		}
		if de.Code.Fatal() {
			return reporter, de.WithProcessor(proc.Name())
		}
		reporter.Record(de.WithProcessor(proc.Name()))
	}

	validation := reporter.Issues()
	if len(validation) > 0 {
		issues := make([]string, len(validation))
		for i, iss := range validation {
			issues[i] = iss.Error()
		}
		doc.SetMeta(block.MetaValidationIssues, issues)
	}

	return reporter, nil
}

func (p *Pipeline) budget() time.Duration {
	if p.opts.ProcessorBudget <= 0 {
		return DefaultOptions().ProcessorBudget
	}
	return p.opts.ProcessorBudget
}

// Parallelism returns the configured worker-pool width, falling back to
// the default when unset or invalid.
func (p *Pipeline) Parallelism() int {
	if p.opts.Parallelism <= 0 {
		return DefaultParallelism()
	}
	return p.opts.Parallelism
}

func asDocErr(err error) (*docerr.Error, bool) {
	de, ok := err.(*docerr.Error)
	return de, ok
}
