package session

import (
	"sync"
	"time"

	"github.com/verte-zerg/beattype/internal/rhythm"
)

// Beat is a pulse notification for presentation. Scoring never uses it.
type Beat struct {
	Index  int64
	Active bool
	At     time.Time
}

// ticker fires a callback on every beat of a clock from its own goroutine.
// Each wait is computed from the clock, so jitter never accumulates.
type ticker struct {
	clock *rhythm.Clock
	now   func() time.Time
	emit  func(Beat)

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newTicker(clock *rhythm.Clock, now func() time.Time, emit func(Beat)) *ticker {
	return &ticker{
		clock:  clock,
		now:    now,
		emit:   emit,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (t *ticker) start() {
	go t.run()
}

// stop halts the goroutine and waits for it to exit. Safe to call twice.
func (t *ticker) stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
	})
	<-t.done
}

func (t *ticker) run() {
	defer close(t.done)

	next := t.clock.NextBeat(t.now())
	timer := time.NewTimer(t.untilBeat(next))
	defer timer.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-timer.C:
		}
		select {
		case <-t.stopCh:
			return
		default:
		}

		// After a stall, report only the latest elapsed beat.
		if cur := t.clock.CurrentBeat(t.now()); cur > next {
			next = cur
		}
		t.emit(Beat{
			Index:  next,
			Active: t.clock.IsActive(next),
			At:     t.clock.BeatTime(next),
		})
		next++
		timer.Reset(t.untilBeat(next))
	}
}

func (t *ticker) untilBeat(index int64) time.Duration {
	d := t.clock.BeatTime(index).Sub(t.now())
	if d < 0 {
		return 0
	}
	return d
}
