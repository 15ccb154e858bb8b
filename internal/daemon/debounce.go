package daemon

import (
	"context"
	"time"
)

const (
	defaultQuietWindow = 300 * time.Millisecond
	defaultMaxDelay    = 5 * time.Second
)

// Debouncer coalesces bursts of change notifications into single rebuild
// triggers: a trigger fires once the input has been quiet for QuietWindow,
// or unconditionally after MaxDelay of sustained changes.
type Debouncer struct {
	QuietWindow time.Duration
	MaxDelay    time.Duration
}

// NewDebouncer creates a debouncer with the default windows.
func NewDebouncer() *Debouncer {
	return &Debouncer{QuietWindow: defaultQuietWindow, MaxDelay: defaultMaxDelay}
}

// Run reads change notifications from in and emits one reason string per
// coalesced burst on out. Returns when ctx ends or in closes.
func (d *Debouncer) Run(ctx context.Context, in <-chan string, out chan<- string) {
	quiet := d.QuietWindow
	if quiet <= 0 {
		quiet = defaultQuietWindow
	}
	maxDelay := d.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}

	var (
		timer    *time.Timer
		timerC   <-chan time.Time
		deadline time.Time
		last     string
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}
	fire := func() {
		stopTimer()
		select {
		case out <- "changed: " + last:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return
		case path, ok := <-in:
			if !ok {
				stopTimer()
				return
			}
			last = path
			if timer == nil {
				deadline = time.Now().Add(maxDelay)
				timer = time.NewTimer(quiet)
				timerC = timer.C
				continue
			}
			// Restart the quiet window, but never past the burst deadline.
			wait := quiet
			if remaining := time.Until(deadline); remaining < wait {
				wait = remaining
			}
			if wait <= 0 {
				fire()
				continue
			}
			timer.Stop()
			timer.Reset(wait)
		case <-timerC:
			fire()
		}
	}
}
