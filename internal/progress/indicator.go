package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// lineLength is the number of steps drawn per line. Each line opens with a
// header that grows more insistent the longer the search runs.
const lineLength = 17

// Indicator draws one dot per search step on a writer.
type Indicator struct {
	mu        sync.Mutex
	out       io.Writer
	steps     int
	startTime time.Time
	done      bool
}

// New creates a new indicator writing to out.
func New(out io.Writer) *Indicator {
	return &Indicator{
		out:       out,
		startTime: time.Now(),
	}
}

// Step records one attempt. Safe for concurrent use; steps are drawn in
// arrival order.
func (ind *Indicator) Step() {
	ind.mu.Lock()
	defer ind.mu.Unlock()

	if ind.done {
		return
	}

	if ind.steps%lineLength == 0 {
		fmt.Fprintf(ind.out, "\n%s...", Header(ind.steps/lineLength))
	} else {
		fmt.Fprint(ind.out, ".")
	}
	ind.steps++
}

// Steps returns the number of steps drawn so far.
func (ind *Indicator) Steps() int {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.steps
}

// Finish terminates the current line. Later steps are ignored.
func (ind *Indicator) Finish() {
	ind.mu.Lock()
	defer ind.mu.Unlock()

	if !ind.done {
		if ind.steps > 0 {
			fmt.Fprintln(ind.out)
		}
		ind.done = true
	}
}

// Elapsed returns the time since the indicator was created.
func (ind *Indicator) Elapsed() time.Duration {
	return time.Since(ind.startTime)
}

// Header returns the banner for the given line number.
func Header(line int) string {
	switch {
	case line == 0:
		return "Searching"
	case line < 3:
		return "Still searching"
	case line < 6:
		return "Yet still searching"
	case line < 10:
		return "And yet still searching"
	case line < 20:
		return "Continuing searching"
	default:
		return "This is taking a while - you may want to restart the app"
	}
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
