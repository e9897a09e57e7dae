// Package code implements the Code Processor & Language Detection stage
// (spec §4.6): a syntactic stage tries compiled grammars (tree-sitter
// where available, chroma lexers otherwise) before falling back to a
// weighted keyword/marker heuristic.
package code

import (
	"context"
	"time"

	"github.com/docunify/docunify/block"
	"github.com/docunify/docunify/docconfig"
	"github.com/docunify/docunify/docerr"
	"github.com/docunify/docunify/progress"
)

// Processor detects the language of Code blocks (spec §4.6).
type Processor struct {
	cfg      docconfig.CodeConfig
	registry *registry
	progress progress.Indicator
}

// Option configures a Processor.
type Option func(*Processor)

// WithProgress wires a progress indicator that reports per-block
// detection progress (spec §5).
func WithProgress(prog progress.Indicator) Option {
	return func(p *Processor) { p.progress = prog }
}

// New builds a Processor from the code-detection configuration.
func New(cfg docconfig.CodeConfig, opts ...Option) *Processor {
	p := &Processor{cfg: cfg, registry: defaultRegistry()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements pipeline.Processor.
func (p *Processor) Name() string { return "code" }

// Kinds implements pipeline.Processor.
func (p *Processor) Kinds() block.KindSet { return block.NewKindSet(block.KindCode) }

// Run implements pipeline.Processor.
func (p *Processor) Run(ctx context.Context, doc *block.Document, reporter *docerr.Reporter) error {
	if !p.cfg.EnableLanguageDetection {
		return nil
	}

	blocks, err := doc.Iter(p.Kinds(), true).All()
	if err != nil {
		return docerr.Wrap(docerr.ConcurrentMutation, err, "code: block iteration")
	}

	timeout := time.Duration(p.cfg.DetectionTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = time.Second
	}

	if p.progress != nil {
		p.progress.SetStatus("code: detecting languages")
		p.progress.SetTotal(len(blocks))
	}

	for i, b := range blocks {
		select {
		case <-ctx.Done():
			err := docerr.Wrap(docerr.Cancelled, ctx.Err(), "code cancelled")
			if p.progress != nil {
				p.progress.Finish(err)
			}
			return err
		default:
		}
		if p.progress != nil {
			p.progress.SetCurrent(i + 1)
		}

		payload, ok := b.Payload().(*block.CodePayload)
		if !ok || payload.Content == "" {
			continue
		}

		lang, confidence, timedOut := p.detect(ctx, timeout, payload.Content)
		if timedOut {
			reporter.Record(docerr.New(docerr.LanguageDetectionTimeout, "code: detection timed out").WithBlock(b.ID()))
			payload.Language = nil
			payload.LanguageConfidence = 0
			b.SetPayload(payload)
			continue
		}

		if lang == "" || confidence < p.cfg.MinConfidence {
			payload.Language = nil
			payload.LanguageConfidence = confidence
		} else {
			l := lang
			payload.Language = &l
			payload.LanguageConfidence = confidence
		}
		b.SetPayload(payload)
	}

	if p.progress != nil {
		p.progress.Finish(nil)
	}
	return nil
}

// detect runs the two-stage detection described in spec §4.6, capped at
// the configured per-block timeout.
func (p *Processor) detect(ctx context.Context, timeout time.Duration, source string) (language string, confidence float64, timedOut bool) {
	detectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		lang string
		conf float64
	}
	done := make(chan result, 1)

	go func() {
		lang, conf := p.detectSync(detectCtx, source)
		done <- result{lang: lang, conf: conf}
	}()

	select {
	case <-detectCtx.Done():
		return "", 0, true
	case r := <-done:
		return r.lang, r.conf, false
	}
}

func (p *Processor) detectSync(ctx context.Context, source string) (string, float64) {
	results := p.registry.Analyze(ctx, source)

	const densityThreshold = 0.75
	best := grammarResult{}
	found := false
	for _, r := range results {
		if r.density < densityThreshold {
			continue
		}
		if !found || r.density > best.density {
			best = r
			found = true
		}
	}
	if found {
		return best.language, best.density
	}

	if lang, conf, ok := heuristicDetect(source); ok {
		return lang, conf
	}
	return "", 0
}
