package printer

import (
	"context"
	"time"

	"clover-print-diag/internal/clover"
	"clover-print-diag/internal/logger"
	"clover-print-diag/internal/metrics"

	"go.uber.org/zap"
)

// DefaultSettleInterval is how long the gateway gets to relay an event to a
// terminal before its state is read again.
const DefaultSettleInterval = 2500 * time.Millisecond

type Poller struct {
	gw     clover.Gateway
	settle time.Duration
	wait   func(time.Duration)
}

// NewPoller returns a poller that waits settle before each re-read. A
// negative settle uses DefaultSettleInterval.
func NewPoller(gw clover.Gateway, settle time.Duration) *Poller {
	if settle < 0 {
		settle = DefaultSettleInterval
	}
	return &Poller{gw: gw, settle: settle, wait: timerWait}
}

func (p *Poller) SettleInterval() time.Duration { return p.settle }

// Poll waits the settle interval, then re-reads eventID. The wait is a plain
// timer and is not cut short by ctx; bound a run from the outside.
func (p *Poller) Poll(ctx context.Context, eventID string) PollResult {
	log := logger.FromCtx(ctx).With(zap.String("event_id", eventID))

	timer := metrics.StartTimer()
	p.wait(p.settle)

	metrics.Prints.Polled.Inc()
	res := PollResult{EventID: eventID}
	ev, err := p.gw.GetPrintEvent(ctx, eventID)
	if err != nil {
		metrics.Prints.PollFailed.Inc()
		res.Err = err
		log.Warn("Print event status check failed",
			zap.Error(err),
			zap.Duration("elapsed", timer.Duration()),
		)
		return res
	}
	res.Event = ev
	log.Info("Print event status",
		zap.String("state", string(res.State())),
		zap.Duration("elapsed", timer.Duration()),
	)
	return res
}

// Settle picks the state to report after a poll: the polled one, unless it
// is missing or a known state earlier in the lifecycle than the
// dispatch-time state. Gateway-specific variants are reported verbatim.
func Settle(dispatched clover.PrintState, poll PollResult) clover.PrintState {
	polled := poll.State()
	switch {
	case polled == "":
		return dispatched
	case !polled.Known():
		return polled
	case dispatched.Known() && polled.Rank() < dispatched.Rank():
		return dispatched
	}
	return polled
}

func timerWait(d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	<-t.C
}
