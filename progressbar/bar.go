// Package progressbar implements a concurrent terminal progress bar,
// adapted from the teacher's per-episode display to instead track the
// policy search (spec.md §6 "show_progress"), annotated live with the search's own counters
// (states evaluated, actions pruned) rather than a training episode
// count.
package progressbar

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agentlab/coresolver/stats"
)

// Bar is a concurrent progress bar. Increment is safe to call from the
// search loop while Display runs its own update loop on a background
// goroutine, exactly as the teacher's ProgressBar does for its training
// loop.
type Bar struct {
	width float64

	// max is the number of Increment() calls after which the bar
	// reaches 100%.
	max float64

	currentProgress            float64
	currentProgressIncrementer chan struct{}
	incrementEvent             chan float64

	wait       sync.WaitGroup
	closeEvent chan struct{}
	closed     bool

	updateEvery       time.Duration
	updateAtIncrement bool

	// solveStats, when attached via AttachStats, is read (not written)
	// by Display's render loop to annotate the bar with the search's own
	// progress, not just an elapsed-time counter: states evaluated and
	// actions pruned so far.
	solveStats *stats.Counters
}

// AttachStats records the running solve's counters so Display's render
// loop can report live search progress (states evaluated, actions
// pruned) alongside the percentage-complete bar. Must be called before
// Display, and only from the same goroutine that constructs the Bar.
func (b *Bar) AttachStats(s *stats.Counters) { b.solveStats = s }

// New returns a new Bar that is width characters wide and reaches 100%
// after max Increment() calls. solver.Solve creates its bar with max 1.
func New(width, max int, updateEvery time.Duration, updateAtIncrement bool) *Bar {
	b := &Bar{
		width:                      float64(width),
		max:                        float64(max),
		currentProgressIncrementer: make(chan struct{}),
		incrementEvent:             make(chan float64),
		closeEvent:                 make(chan struct{}),
		updateEvery:                updateEvery,
		updateAtIncrement:          updateAtIncrement,
	}

	go func() {
		for range b.currentProgressIncrementer {
			b.currentProgress++
		}
	}()

	return b
}

// Increment records one more unit of progress; solver.Solve calls it each
// time a top-level findOptimal call completes.
func (b *Bar) Increment() {
	b.wait.Add(1)
	go func() {
		if b.currentProgress < b.max && !b.closed {
			b.incrementEvent <- b.currentProgress
			b.currentProgressIncrementer <- struct{}{}
		}
		b.wait.Done()
	}()
}

// Close waits for any in-flight Increment calls, snaps the bar to 100%,
// and releases the display goroutine. A second Close call is a no-op: a
// solve that errors out of Solve before reaching its own single Close
// call, and is then cleaned up again by a caller's defer, must not crash
// the process over a display detail.
func (b *Bar) Close() {
	if b.closed {
		return
	}
	b.wait.Wait()

	b.incrementEvent <- b.max
	close(b.closeEvent)
	b.closed = true
	fmt.Println()
}

// Display starts the bar's background render loop. It should only be
// called once, before any Increment calls.
func (b *Bar) Display() {
	go func() {
		current := b.currentProgress
		max := b.max
		width := b.width

		tick := time.NewTicker(b.updateEvery)
		var elapsed time.Duration

		var line strings.Builder

		for {
			select {
			case current = <-b.incrementEvent:
				if !b.updateAtIncrement {
					continue
				}
			case <-tick.C:
				elapsed += b.updateEvery
			case <-b.closeEvent:
				close(b.incrementEvent)
				tick.Stop()
				return
			default:
				continue
			}

			line.Reset()
			line.WriteByte('|')

			filled := current / max * width
			for i := 0.0; i < filled; i++ {
				line.WriteString("#")
			}
			for i := filled; i < width; i++ {
				line.WriteByte(' ')
			}
			fmt.Fprintf(&line, "| [%.2f%% | elapsed: %v]", current/max*100, elapsed)
			if b.solveStats != nil {
				fmt.Fprintf(&line, " [states=%d pruned=%d]", b.solveStats.StatesEvaluated, b.solveStats.ActionsPrunedOuter+b.solveStats.ActionsPrunedInner)
			}

			fmt.Printf("\n\033[1A\033[K%s", line.String())
		}
	}()
}
