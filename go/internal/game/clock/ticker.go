package clock

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultTickInterval is one countdown step.
const DefaultTickInterval = time.Second

// Ticker emits one value per interval into a channel consumed by the owner's
// loop. It never touches state itself.
type Ticker struct {
	clock    clockwork.Clock
	interval time.Duration
	ticks    chan time.Time
}

// NewTicker creates a ticker. In production pass clockwork.NewRealClock(), in
// tests a fake clock.
func NewTicker(clk clockwork.Clock, interval time.Duration) *Ticker {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Ticker{
		clock:    clk,
		interval: interval,
		ticks:    make(chan time.Time, 1),
	}
}

// Ticks is the channel the owner drains.
func (t *Ticker) Ticks() <-chan time.Time {
	return t.ticks
}

// Run forwards ticks until ctx is cancelled. A tick that finds the previous one
// still unconsumed is dropped rather than queued, so a stalled consumer does not
// see a burst of catch-up decrements.
func (t *Ticker) Run(ctx context.Context) {
	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	log.Debug().Dur("interval", t.interval).Msg("turn clock started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("turn clock stopped")
			return
		case now := <-ticker.Chan():
			select {
			case t.ticks <- now:
			default:
			}
		}
	}
}
