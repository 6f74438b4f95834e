package printer

import (
	"context"

	"clover-print-diag/internal/clover"
	"clover-print-diag/internal/logger"
	"clover-print-diag/internal/metrics"

	"go.uber.org/zap"
)

type Dispatcher struct {
	gw clover.Gateway
}

func NewDispatcher(gw clover.Gateway) *Dispatcher {
	return &Dispatcher{gw: gw}
}

// Dispatch submits one print event for orderID, targeted at deviceID when it
// is not empty. Gateway and transport failures come back in Attempt.Failure.
func (d *Dispatcher) Dispatch(ctx context.Context, orderID, deviceID string) Attempt {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", orderID),
		zap.String("device_id", deviceID),
	)

	req := clover.NewPrintRequest(orderID, deviceID)
	attempt := Attempt{Request: req, DeviceID: deviceID}

	metrics.Prints.Dispatched.Inc()
	ev, err := d.gw.CreatePrintEvent(ctx, req)
	if err != nil {
		metrics.Prints.DispatchFailed.Inc()
		attempt.Failure = failureFrom(err)
		log.Error("Clover print event failed",
			zap.String("message", attempt.Failure.Message),
			zap.Int("status", attempt.Failure.Status),
		)
		return attempt
	}

	attempt.Event = ev
	log.Info("Clover print event sent",
		zap.String("event_id", attempt.EventID()),
		zap.String("state", string(attempt.State())),
	)
	return attempt
}

// DispatchCopies sends copies identical requests in order. The first failure
// stops the loop and fails the whole run; nothing is retried.
func (d *Dispatcher) DispatchCopies(ctx context.Context, orderID, deviceID string, copies int) Copies {
	if copies < 1 {
		copies = 1
	}

	out := Copies{Copies: copies}
	for i := 0; i < copies; i++ {
		a := d.Dispatch(ctx, orderID, deviceID)
		out.Attempts = append(out.Attempts, a)
		if !a.OK() {
			out.Error = a.Failure.Message
			out.Body = a.Failure.Body
			return out
		}
	}
	out.Success = true
	return out
}

// Devices lists the registered devices that can be targeted.
func (d *Dispatcher) Devices(ctx context.Context) ([]clover.Device, error) {
	all, err := d.gw.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]clover.Device, 0, len(all))
	for _, dev := range all {
		if dev.ID == "" {
			continue
		}
		out = append(out, dev)
	}
	return out, nil
}

// DispatchAll sends an independent request to every device, one after the
// other, in listing order. Only the device listing can fail the call.
func (d *Dispatcher) DispatchAll(ctx context.Context, orderID string) (*FanOut, error) {
	devices, err := d.Devices(ctx)
	if err != nil {
		return nil, err
	}

	out := &FanOut{TryAllDevices: true, Results: make([]DeviceResult, 0, len(devices))}
	for _, dev := range devices {
		out.Results = append(out.Results, ResultFor(dev, d.Dispatch(ctx, orderID, dev.ID)))
	}
	return out, nil
}

// ResultFor summarises one device's attempt.
func ResultFor(dev clover.Device, a Attempt) DeviceResult {
	r := DeviceResult{
		DeviceID: dev.ID,
		Model:    dev.Model,
		Success:  a.OK(),
	}
	if a.OK() {
		r.EventID = a.EventID()
		r.State = a.State()
	} else {
		r.Error = a.Failure.Message
	}
	return r
}

func failureFrom(err error) *Failure {
	if apiErr, ok := clover.AsAPIError(err); ok {
		return &Failure{
			Message: apiErr.Message,
			Status:  apiErr.Status,
			Body:    apiErr.Body,
		}
	}
	return &Failure{Message: err.Error()}
}
