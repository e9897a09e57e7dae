package progress

import "log"

// noOp discards every update. It's the default for non-interactive runs
// (CI, batch ingestion writing to a file) where a terminal progress bar
// would just be noise in the output stream.
type noOp struct {
	total, current int
	options        Options
	debug          bool
	err            error
}

func newNoOp(opts Options) *noOp {
	return &noOp{options: opts}
}

func (n *noOp) debugf(format string, args ...interface{}) {
	if n.debug {
		log.Printf(format, args...)
	}
}

func (n *noOp) SetTotal(total int) { n.total = total; n.debugf("progress: total=%d", total) }
func (n *noOp) SetCurrent(c int)   { n.current = c; n.debugf("progress: current=%d", c) }
func (n *noOp) SetStatus(s string) { n.options.Status = s; n.debugf("progress: status=%s", s) }
func (n *noOp) Finish(err error) {
	n.err = err
	n.debugf("progress: finished err=%v", err)
}
