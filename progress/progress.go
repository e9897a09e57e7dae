// Package progress implements the progress-reporting collaborator (spec
// §5, §6) that long-running processors use to surface suspension-point
// progress: the table subsystem's parameter sweep and the code
// processor's per-block language-detection loop.
//
// Unlike the teacher's version, which handed the indicator a
// context.Context to watch in a background goroutine and let it stop
// itself on cancellation, reporting here is driven entirely by the
// processor's own suspension-point loop (spec §5 "suspension points only
// at worker-pool submission boundaries, at cancellation-token checks ...
// No suspension inside a block mutation"): a processor calls
// SetCurrent/SetStatus as it walks its ctx.Done()-guarded loop and
// calls Finish exactly once, when that loop ends, instead of
// delegating the stop decision to an indicator watching context state on
// its own.
package progress

// Options configures an Indicator at construction time.
type Options struct {
	Status        string
	TrackerLength int
}

// Indicator reports progress for one bounded unit of work (a processor's
// block loop, a parameter sweep). Implementations must be safe for
// concurrent use: a worker pool may call SetCurrent from multiple
// goroutines.
type Indicator interface {
	SetTotal(total int)
	SetCurrent(current int)
	SetStatus(status string)
	// Finish marks the unit of work done. A nil err reports success; a
	// non-nil err (a cancellation, a timeout, an exhausted retry) is
	// recorded against the indicator before it stops.
	Finish(err error)
}

// New builds an Indicator. enabled selects between the pretty terminal
// indicator and the no-op; pretty additionally degrades to the no-op
// when stdout isn't a terminal, since a fixed-width progress bar written
// to a pipe or log file just corrupts the output.
func New(enabled bool, opts Options) Indicator {
	if !enabled {
		return newNoOp(opts)
	}
	if ind := newPretty(opts); ind != nil {
		return ind
	}
	return newNoOp(opts)
}
