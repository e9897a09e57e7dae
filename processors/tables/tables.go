package tables

import (
	"context"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/contentcache"
	"github.com/docunify/docunify/docconfig"
	"github.com/docunify/docunify/docerr"
	"github.com/docunify/docunify/progress"
)

// Processor resolves unstructured Table blocks into cell grids (spec
// §4.7). Tables a provider already resolved with real cells (the HTML
// provider emits exact markup-derived grids) are left untouched; only
// blocks carrying raw text and/or word geometry hints are run through
// candidate extraction.
type Processor struct {
	cfg         docconfig.TableConfig
	cache       contentcache.Store
	layoutModel LayoutModel
	progress    progress.Indicator
}

// Option configures a Processor.
type Option func(*Processor)

// WithCache overrides the default in-memory cache, e.g. with
// contentcache/s3cache.Store for cross-run reuse.
func WithCache(store contentcache.Store) Option {
	return func(p *Processor) { p.cache = store }
}

// WithLayoutModel wires strategy A's external ML layout collaborator.
func WithLayoutModel(model LayoutModel) Option {
	return func(p *Processor) { p.layoutModel = model }
}

// WithProgress wires a progress indicator that reports parameter-sweep
// suspension points (spec §5).
func WithProgress(prog progress.Indicator) Option {
	return func(p *Processor) { p.progress = prog }
}

// New builds a Processor from the table-subsystem configuration.
func New(cfg docconfig.TableConfig, opts ...Option) *Processor {
	p := &Processor{cfg: cfg, cache: contentcache.NewMemory(), layoutModel: noLayoutModel{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements pipeline.Processor.
func (p *Processor) Name() string { return "tables" }

// Kinds implements pipeline.Processor.
func (p *Processor) Kinds() block.KindSet { return block.NewKindSet(block.KindTable) }

// Run implements pipeline.Processor.
func (p *Processor) Run(ctx context.Context, doc *block.Document, reporter *docerr.Reporter) error {
	blocks, err := doc.Iter(p.Kinds(), true).All()
	if err != nil {
		return docerr.Wrap(docerr.ConcurrentMutation, err, "tables: block iteration")
	}

	if p.progress != nil {
		p.progress.SetStatus("tables: resolving tables")
		p.progress.SetTotal(len(blocks))
	}

	for i, b := range blocks {
		select {
		case <-ctx.Done():
			err := docerr.Wrap(docerr.Cancelled, ctx.Err(), "tables cancelled")
			if p.progress != nil {
				p.progress.Finish(err)
			}
			return err
		default:
		}
		if p.progress != nil {
			p.progress.SetCurrent(i + 1)
		}

		payload, ok := b.Payload().(*block.TablePayload)
		if !ok || len(payload.Cells) > 0 {
			continue // already resolved by the provider (e.g. native HTML markup)
		}

		in := Input{RawText: payload.RawText}
		if raw, ok := b.Meta(MetaTableWords); ok {
			if words, ok := raw.([]WordBox); ok {
				in.Words = words
			}
		}

		best, err := search(ctx, p.cache, p.layoutModel, in, p.cfg, p.progress)
		if err != nil {
			if p.progress != nil {
				p.progress.Finish(err)
			}
			return err
		}

		minViable := p.cfg.MinViableScore
		if minViable <= 0 {
			minViable = 0.4
		}

		if best == nil || best.Combined < minViable {
			reporter.Record(docerr.New(docerr.TableExtractionFailed, "tables: no candidate reached the minimum viable score").WithBlock(b.ID()))
			payload.Degraded = true
			payload.RawText = referenceText(in)
			if best != nil {
				payload.QualityScore = best.Combined
				payload.QualityBreakdown = best.Quality
			}
			b.SetPayload(payload)
			continue
		}

		payload.Rows = best.Rows
		payload.Cols = best.Cols
		payload.Cells = best.Cells
		payload.ExtractionMethod = best.Method
		payload.QualityScore = best.Combined
		payload.QualityBreakdown = best.Quality
		payload.ParameterRecord = best.Params
		payload.Degraded = false
		b.SetPayload(payload)
	}

	mergeErr := mergeAdjacent(doc, p.cfg)
	if p.progress != nil {
		p.progress.Finish(mergeErr)
	}
	return mergeErr
}
