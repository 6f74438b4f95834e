package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// PrintCounters counts print traffic since process start.
type PrintCounters struct {
	Dispatched     Counter
	DispatchFailed Counter
	Polled         Counter
	PollFailed     Counter
}

type PrintSnapshot struct {
	Dispatched     uint64 `json:"dispatched"`
	DispatchFailed uint64 `json:"dispatchFailed"`
	Polled         uint64 `json:"polled"`
	PollFailed     uint64 `json:"pollFailed"`
}

// Prints is the process-wide print counter set.
var Prints = &PrintCounters{}

func (p *PrintCounters) Snapshot() PrintSnapshot {
	return PrintSnapshot{
		Dispatched:     p.Dispatched.Load(),
		DispatchFailed: p.DispatchFailed.Load(),
		Polled:         p.Polled.Load(),
		PollFailed:     p.PollFailed.Load(),
	}
}
