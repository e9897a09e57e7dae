package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultParallelism returns min(4, cores) (spec §6 pipeline.parallelism
// default).
func DefaultParallelism() int {
	if n := runtime.NumCPU(); n < 4 {
		return n
	}
	return 4
}

// Result pairs a work item's index with whatever it produced, so a
// worker pool's output can be reassembled in the Document's deterministic
// order before the single-threaded mutation phase runs (spec §5
// "Ordering guarantees: results from parallel work units are reassembled
// in the Document's deterministic order before mutation").
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// RunBounded runs fn over every item in items with at most width
// goroutines in flight, respecting ctx cancellation (spec §5 "suspension
// points only at worker-pool submission boundaries"). Results are
// returned in input order regardless of completion order. A non-nil fn
// error does not abort the group; per-item errors are carried in Result.Err so
// callers can apply per-table/per-block degradation instead of failing
// the whole batch (spec §4.7.6, §4.6 "on timeout -> language=null").
func RunBounded[In, Out any](ctx context.Context, width int, items []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	if width <= 0 {
		width = DefaultParallelism()
	}

	results := make([]Result[Out], len(items))
	sem := semaphore.NewWeighted(int64(width))
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))

	for i, item := range items {
		i, item := i, item
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = Result[Out]{Index: i, Err: err}
			continue
		}
		g.Go(func() error {
			defer sem.Release(1)
			out, err := fn(gctx, item)
			results[i] = Result[Out]{Index: i, Value: out, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// CancellationToken is polled at processor loop boundaries (spec §4.3,
// §5). It wraps a context.Context so processors have a uniform, minimal
// surface to check rather than threading context.Context through every
// helper signature; long-running loops call Cancelled() once per outer
// iteration.
type CancellationToken struct {
	ctx context.Context
}

// NewCancellationToken wraps ctx.
func NewCancellationToken(ctx context.Context) CancellationToken {
	return CancellationToken{ctx: ctx}
}

// Cancelled reports whether the underlying context has been cancelled or
// has exceeded its deadline.
func (t CancellationToken) Cancelled() bool {
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}

// Err returns the underlying context's error, if cancelled.
func (t CancellationToken) Err() error {
	return t.ctx.Err()
}
