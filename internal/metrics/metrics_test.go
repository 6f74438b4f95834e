package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter_Concurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(50), c.Load())
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, timer.Duration(), 5*time.Millisecond)
}

func TestPrintCounters_Snapshot(t *testing.T) {
	p := &PrintCounters{}
	p.Dispatched.Inc()
	p.Dispatched.Inc()
	p.DispatchFailed.Inc()
	p.Polled.Inc()

	assert.Equal(t, PrintSnapshot{Dispatched: 2, DispatchFailed: 1, Polled: 1}, p.Snapshot())
}
