package progressbar

import (
	"testing"
	"time"

	"github.com/agentlab/coresolver/stats"
)

func TestBar_CloseIsIdempotent(t *testing.T) {
	b := New(10, 1, time.Millisecond, true)
	b.Display()
	b.Increment()
	b.Close()
	b.Close() // must not panic
}

func TestBar_AttachStatsIsReadByDisplay(t *testing.T) {
	b := New(10, 2, time.Millisecond, true)
	st := stats.New()
	b.AttachStats(st)
	b.Display()

	st.StatesEvaluated = 3
	b.Increment()
	time.Sleep(5 * time.Millisecond)
	b.Close()

	if b.solveStats != st {
		t.Fatal("AttachStats did not record the given counters")
	}
}
