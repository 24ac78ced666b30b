package examsession

import "time"

// Ticker delivers the once-per-second countdown ticks of a session
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates the ticker a session owns for its whole lifetime
type TickerFactory func(interval time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t *timeTicker) C() <-chan time.Time { return t.t.C }
func (t *timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the wall-clock TickerFactory
func NewTimeTicker(interval time.Duration) Ticker {
	return &timeTicker{t: time.NewTicker(interval)}
}
