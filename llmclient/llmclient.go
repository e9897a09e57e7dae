// Package llmclient implements the external LLM enhancement collaborator
// (spec §5, §6, §7): a bounded-concurrency, retrying client wrapper
// around whatever model backend a caller wires in. No processor in this
// module's current scope invokes it (the pipeline built here relies on
// heuristic detection throughout), but it carries the full contract
// spec §6's `llm.*` options describe so a future enhancement processor
// (image captioning, entity extraction) can call through it directly —
// the same "documented stub adapter" treatment this module gives every
// external, format-specific collaborator (table layout models, PDF/DOCX/
// PPTX parsers).
package llmclient

import (
	"context"
	"time"

	"github.com/docunify/docunify/docconfig"
	"github.com/docunify/docunify/docerr"
	"golang.org/x/sync/semaphore"
)

// Request is one enhancement call: an opaque prompt/content payload the
// backend interprets however it needs to.
type Request struct {
	BlockID string
	Kind    string // e.g. "image_caption", "entity_extraction"
	Payload string
}

// Response is the backend's result for one Request.
type Response struct {
	Content string
}

// Backend is the actual outbound call a concrete LLM/model integration
// implements. The core ships none; callers wire their own.
type Backend interface {
	Invoke(ctx context.Context, req Request) (Response, error)
}

// Client wraps a Backend with the bounded concurrency, retry, and timeout
// policy spec §5/§7 mandate for every external call.
type Client struct {
	backend Backend
	cfg     docconfig.LLMConfig
	sem     *semaphore.Weighted
	sleep   func(time.Duration)
}

// New builds a Client. A nil backend makes every call fail immediately
// with ExternalCallFailed, without retrying, matching the "documented
// stub adapter" default every other external collaborator in this module
// uses.
func New(backend Backend, cfg docconfig.LLMConfig) *Client {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}
	return &Client{
		backend: backend,
		cfg:     cfg,
		sem:     semaphore.NewWeighted(int64(concurrency)),
		sleep:   time.Sleep,
	}
}

const (
	backoffBase   = time.Second
	backoffFactor = 2
	backoffCap    = 30 * time.Second
	maxAttempts   = 3
)

// Enhance runs req through the backend with bounded concurrency,
// exponential backoff retry (spec §7: base 1s, factor 2, cap 30s, max 3
// attempts), and a per-call timeout (spec §6 `llm.per_call_timeout_s`,
// default 120s). On exhausted retries it returns an ExternalCallFailed
// error; callers degrade gracefully by keeping their heuristic output and
// recording `metadata.llm_enhancement = "skipped"`.
func (c *Client) Enhance(ctx context.Context, req Request) (Response, error) {
	if c.backend == nil {
		return Response{}, docerr.New(docerr.ExternalCallFailed, "llmclient: no backend configured").WithBlock(req.BlockID)
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return Response{}, docerr.Wrap(docerr.Cancelled, err, "llmclient: semaphore acquire cancelled")
	}
	defer c.sem.Release(1)

	timeout := time.Duration(c.cfg.PerCallTimeoutS) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	var lastErr error
	delay := backoffBase
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Response{}, docerr.Wrap(docerr.Cancelled, ctx.Err(), "llmclient: cancelled during backoff")
			default:
				c.sleep(delay)
				delay *= backoffFactor
				if delay > backoffCap {
					delay = backoffCap
				}
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := c.backend.Invoke(callCtx, req)
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	return Response{}, docerr.Wrap(docerr.ExternalCallFailed, lastErr, "llmclient: exhausted retries").WithBlock(req.BlockID)
}
