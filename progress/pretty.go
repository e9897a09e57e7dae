package progress

import (
	"os"
	"sync"
	"time"

	ppkg "github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// pretty wraps go-pretty's progress.Writer. All methods are guarded by a
// mutex, since the code processor's detection loop and the table
// subsystem's candidate sweep both report progress from the goroutine
// running their own suspension-point loop, which may itself fan out
// through pipeline.RunBounded.
type pretty struct {
	writer  ppkg.Writer
	tracker *ppkg.Tracker
	mutex   sync.Mutex
	done    bool
}

// newPretty builds a pretty indicator, degrading to nil (caller falls
// back to the no-op) when stdout isn't a terminal.
func newPretty(opts Options) *pretty {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return nil
	}

	pp := &pretty{}
	pp.tracker = &ppkg.Tracker{Message: opts.Status}

	length := opts.TrackerLength
	if length <= 0 {
		length = 40
	}

	w := ppkg.NewWriter()
	w.SetAutoStop(false)
	w.SetTrackerLength(length)
	w.SetUpdateFrequency(100 * time.Millisecond)
	w.SetTrackerPosition(ppkg.PositionRight)
	w.SetOutputWriter(os.Stdout)
	w.SetNumTrackersExpected(1)
	style := ppkg.StyleDefault
	style.Visibility.TrackerOverall = false
	w.SetStyle(style)
	w.AppendTracker(pp.tracker)
	pp.writer = w

	go pp.writer.Render()

	return pp
}

func (pp *pretty) SetTotal(total int) {
	pp.mutex.Lock()
	defer pp.mutex.Unlock()
	pp.tracker.UpdateTotal(int64(total))
}

func (pp *pretty) SetCurrent(current int) {
	pp.mutex.Lock()
	defer pp.mutex.Unlock()
	pp.tracker.SetValue(int64(current))
}

func (pp *pretty) SetStatus(status string) {
	pp.mutex.Lock()
	defer pp.mutex.Unlock()
	pp.tracker.UpdateMessage(status)
}

// Finish marks the tracker done or errored and stops the writer. It is
// the only point at which this indicator's render goroutine is told to
// stop: there is no background watch on a caller-supplied context, the
// processor calling Finish at the end of its own suspension-point loop
// is what ends the bar (spec §5's explicit-suspension-point model).
func (pp *pretty) Finish(err error) {
	pp.mutex.Lock()
	defer pp.mutex.Unlock()
	if pp.done {
		return
	}
	pp.done = true

	color := text.Colors{text.FgGreen}
	if err != nil {
		color = text.Colors{text.FgRed}
		pp.tracker.UpdateMessage(err.Error())
	}
	style := *pp.writer.Style()
	style.Colors.Message = color
	style.Colors.Tracker = color
	style.Colors.Value = color
	pp.writer.SetStyle(style)

	if err != nil {
		pp.tracker.MarkAsErrored()
	} else {
		pp.tracker.MarkAsDone()
	}
	pp.writer.Stop()
}
