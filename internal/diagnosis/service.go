package diagnosis

import (
	"context"
	"errors"
	"time"

	"clover-print-diag/internal/clover"
	"clover-print-diag/internal/logger"
	"clover-print-diag/internal/order"
	"clover-print-diag/internal/printer"
	"clover-print-diag/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	fanOutLimit   = 4
	realMenuItems = 2
)

type Options struct {
	BaseURL    string
	MerchantID string
	// Settle is the wait before each status check. Negative uses the
	// poller default.
	Settle         time.Duration
	ParallelFanOut bool
}

type Service struct {
	gw         clover.Gateway
	builder    order.Builder
	dispatcher *printer.Dispatcher
	poller     *printer.Poller
	cfg        RunConfig
	parallel   bool
}

func NewService(gw clover.Gateway, opts Options) *Service {
	return &Service{
		gw:         gw,
		builder:    order.NewBuilder(gw),
		dispatcher: printer.NewDispatcher(gw),
		poller:     printer.NewPoller(gw, opts.Settle),
		cfg:        RunConfig{BaseURL: opts.BaseURL, MerchantID: opts.MerchantID},
		parallel:   opts.ParallelFanOut,
	}
}

// ----------------- Print flows -----------------

// TestPrint builds a fresh order, prints it and checks the print once.
// Print failures are reported in the result; only build, fetch and device
// listing failures are returned as errors.
func (s *Service) TestPrint(ctx context.Context, req TestPrintRequest) (*TestPrintResult, error) {
	log := logger.FromCtx(ctx)

	built, err := s.builder.Build(ctx, order.Request{
		OrderTypeID: req.OrderTypeID,
		EmployeeID:  req.EmployeeID,
		Items:       order.ItemsFromIDs(req.ItemIDs),
	}, req.Policy)
	if err != nil {
		return nil, err
	}

	res := &TestPrintResult{
		OrderID:   built.OrderID,
		PaymentID: built.PaymentID,
		Total:     built.Total,
		Policy:    built.Policy,
	}

	details, err := s.gw.GetOrder(ctx, built.OrderID, true)
	if err != nil {
		return nil, &order.StepError{Step: order.StepFetchOrder, Err: err}
	}
	res.Order = details
	if details != nil {
		res.OrderState = details.State
		res.LineItemCount = len(details.Lines())
	}
	log.Info("Order fetched before print",
		zap.String("order_id", res.OrderID),
		zap.String("state", res.OrderState),
	)

	if req.TryAllDevices {
		fan, err := s.dispatcher.DispatchAll(ctx, built.OrderID)
		if err != nil {
			return nil, &order.StepError{Step: order.StepFetchDevices, Err: err}
		}
		res.FanOut = fan
		for _, r := range fan.Results {
			if r.State != "" {
				res.PrintState = r.State
				break
			}
		}
		return res, nil
	}

	a := s.dispatcher.Dispatch(ctx, built.OrderID, req.DeviceID)
	res.Attempt = &a
	res.PrintState = a.State()
	if a.OK() && a.EventID() != "" {
		res.PrintEventID = a.EventID()
		res.PrintState = printer.Settle(a.State(), s.poller.Poll(ctx, a.EventID()))
	}
	return res, nil
}

// SendPrint re-sends an existing order. Nothing is polled.
func (s *Service) SendPrint(ctx context.Context, req SendPrintRequest) (*SendPrintResult, error) {
	if req.OrderID == "" {
		return nil, ErrMissingOrderID
	}
	if req.TryAllDevices {
		fan, err := s.dispatcher.DispatchAll(ctx, req.OrderID)
		if err != nil {
			return nil, &order.StepError{Step: order.StepFetchDevices, Err: err}
		}
		return &SendPrintResult{FanOut: fan}, nil
	}
	copies := s.dispatcher.DispatchCopies(ctx, req.OrderID, req.DeviceID, req.Copies)
	return &SendPrintResult{Copies: &copies}, nil
}

// Diagnose dispatches, polls and explains print events for an existing
// order. It never touches the order itself, so repeated runs only add print
// events.
func (s *Service) Diagnose(ctx context.Context, orderID, deviceID string, tryAll bool) (*Run, error) {
	if orderID == "" {
		return nil, ErrMissingOrderID
	}
	ctx = logger.WithFields(ctx, zap.Bool("try_all_devices", tryAll))

	if !tryAll {
		entry := s.dispatchAndPoll(ctx, orderID, clover.Device{ID: deviceID})
		return newRun(s.cfg, orderID, Single, []Entry{entry}), nil
	}

	devices, err := s.dispatcher.Devices(ctx)
	if err != nil {
		return nil, &order.StepError{Step: order.StepFetchDevices, Err: err}
	}

	entries := make([]Entry, len(devices))
	if s.parallel {
		var g errgroup.Group
		g.SetLimit(fanOutLimit)
		for i, dev := range devices {
			g.Go(func() error {
				entries[i] = s.dispatchAndPoll(ctx, orderID, dev)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, dev := range devices {
			entries[i] = s.dispatchAndPoll(ctx, orderID, dev)
		}
	}

	run := newRun(s.cfg, orderID, FanOut, entries)
	logger.FromCtx(ctx).Info("Diagnostic run complete",
		zap.Int("devices", len(devices)),
		zap.Int("explanations", len(run.WhyNoPrint)),
	)
	return run, nil
}

func (s *Service) dispatchAndPoll(ctx context.Context, orderID string, dev clover.Device) Entry {
	e := Entry{DeviceID: dev.ID, Model: dev.Model}
	e.Attempt = s.dispatcher.Dispatch(ctx, orderID, dev.ID)
	if e.Attempt.OK() && e.Attempt.EventID() != "" {
		p := s.poller.Poll(ctx, e.Attempt.EventID())
		e.Poll = &p
	}
	return e
}

// RealMenuPrint prints a paid order built from real inventory. When the
// inventory is too small the returned result lists what was found, along
// with the error.
func (s *Service) RealMenuPrint(ctx context.Context, req RealMenuRequest) (*RealMenuResult, error) {
	log := logger.FromCtx(ctx)

	items, err := order.PickItems(ctx, s.gw, realMenuItems)
	if err != nil {
		if errors.Is(err, order.ErrNotEnoughItems) {
			return &RealMenuResult{ItemsUsed: items}, err
		}
		return nil, err
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID, err = order.FirstEmployee(ctx, s.gw)
		if errors.Is(err, order.ErrNoEmployee) {
			log.Warn("No active employee, creating order without one")
		} else if err != nil {
			return nil, err
		}
	}

	built, err := s.builder.Build(ctx, order.Request{
		OrderTypeID:         req.OrderTypeID,
		EmployeeID:          employeeID,
		Items:               items,
		Title:               "Online Delivery Order",
		Note:                "Created via API with employee",
		ExternalReferenceID: utils.GenerateExternalReference(),
	}, order.LockAndPay{})
	if err != nil {
		return nil, err
	}

	res := &RealMenuResult{
		OrderID:    built.OrderID,
		PaymentID:  built.PaymentID,
		Total:      built.Total,
		EmployeeID: employeeID,
		ItemsUsed:  items,
	}
	res.Attempt = s.dispatcher.Dispatch(ctx, built.OrderID, "")
	res.PrintState = res.Attempt.State()
	if res.Attempt.OK() && res.Attempt.EventID() != "" {
		res.PrintEventID = res.Attempt.EventID()
		res.PrintState = printer.Settle(res.Attempt.State(), s.poller.Poll(ctx, res.PrintEventID))
	}
	return res, nil
}

// ----------------- Lookups -----------------

// Check confirms the credentials by listing at most one recent order.
func (s *Service) Check(ctx context.Context) (*CheckResult, error) {
	orders, err := s.gw.ListOrders(ctx, 1)
	if err != nil {
		return nil, err
	}
	return &CheckResult{
		BaseURL:          s.cfg.BaseURL,
		MerchantID:       s.cfg.MerchantID,
		RecentOrderCount: len(orders),
	}, nil
}

func (s *Service) Verify(ctx context.Context, orderID string) (*clover.Order, error) {
	if orderID == "" {
		return nil, ErrMissingOrderID
	}
	return s.gw.GetOrder(ctx, orderID, true)
}

func (s *Service) Devices(ctx context.Context) ([]clover.Device, error) {
	return s.gw.ListDevices(ctx)
}

func (s *Service) OrderTypes(ctx context.Context) ([]clover.OrderType, error) {
	return s.gw.ListOrderTypes(ctx)
}

func (s *Service) SellableItems(ctx context.Context) ([]clover.Item, error) {
	return order.SellableItems(ctx, s.gw)
}

func (s *Service) Employees(ctx context.Context) ([]clover.Employee, error) {
	return s.gw.ListEmployees(ctx)
}
