package diagnosis

import (
	"encoding/json"

	"clover-print-diag/internal/clover"
	"clover-print-diag/internal/order"
	"clover-print-diag/internal/printer"
)

type RunConfig struct {
	BaseURL    string `json:"baseURL"`
	MerchantID string `json:"merchantId"`
}

// PrintRecord is one print request as sent, with what came back.
type PrintRecord struct {
	Sent        clover.PrintRequest `json:"sent"`
	DeviceID    string              `json:"deviceId,omitempty"`
	DeviceModel string              `json:"deviceModel,omitempty"`
	Response    *clover.PrintEvent  `json:"cloverResponse,omitempty"`
	Error       string              `json:"error,omitempty"`
	HTTPStatus  int                 `json:"httpStatus,omitempty"`
	ErrorBody   json.RawMessage     `json:"errorResponse,omitempty"`
}

type StatusCheck struct {
	EventID  string             `json:"eventId"`
	DeviceID string             `json:"deviceId,omitempty"`
	After    *clover.PrintEvent `json:"after,omitempty"`
	Error    string             `json:"error,omitempty"`
	State    clover.PrintState  `json:"state,omitempty"`
}

// Run is the record of one diagnostic run. It lives for one request.
type Run struct {
	Config        RunConfig              `json:"config"`
	OrderID       string                 `json:"orderId"`
	PrintRequests []PrintRecord          `json:"printRequests"`
	StatusChecks  []StatusCheck          `json:"statusChecks"`
	Devices       []printer.DeviceResult `json:"devices,omitempty"`
	WhyNoPrint    []string               `json:"whyNoPrint"`
}

func newRun(cfg RunConfig, orderID string, mode Mode, entries []Entry) *Run {
	run := &Run{
		Config:        cfg,
		OrderID:       orderID,
		PrintRequests: make([]PrintRecord, 0, len(entries)),
		StatusChecks:  make([]StatusCheck, 0, len(entries)),
	}

	for _, e := range entries {
		rec := PrintRecord{Sent: e.Attempt.Request, Response: e.Attempt.Event}
		if mode == FanOut {
			rec.DeviceID = e.DeviceID
			rec.DeviceModel = e.Model
		}
		if f := e.Attempt.Failure; f != nil {
			rec.Error = f.Message
			rec.HTTPStatus = f.Status
			rec.ErrorBody = f.Body
		}
		run.PrintRequests = append(run.PrintRequests, rec)

		if e.Poll != nil {
			check := StatusCheck{
				EventID: e.Poll.EventID,
				After:   e.Poll.Event,
				State:   e.State(),
			}
			if mode == FanOut {
				check.DeviceID = e.DeviceID
			}
			if e.Poll.Err != nil {
				check.Error = e.Poll.Err.Error()
			}
			run.StatusChecks = append(run.StatusChecks, check)
		}

		if mode == FanOut {
			r := printer.ResultFor(clover.Device{ID: e.DeviceID, Model: e.Model}, e.Attempt)
			if r.Success {
				r.State = e.State()
			}
			run.Devices = append(run.Devices, r)
		}
	}

	run.WhyNoPrint = Classify(mode, entries)
	return run
}

type TestPrintRequest struct {
	DeviceID      string
	TryAllDevices bool
	OrderTypeID   string
	EmployeeID    string
	ItemIDs       []string
	// Policy nil means lock and pay.
	Policy order.Policy
}

type TestPrintResult struct {
	OrderID       string
	PaymentID     string
	Total         int64
	Policy        string
	OrderState    string
	LineItemCount int
	Order         *clover.Order
	PrintEventID  string
	PrintState    clover.PrintState
	Attempt       *printer.Attempt
	FanOut        *printer.FanOut
}

type SendPrintRequest struct {
	OrderID       string
	DeviceID      string
	TryAllDevices bool
	Copies        int
}

// SendPrintResult holds exactly one of FanOut or Copies.
type SendPrintResult struct {
	FanOut *printer.FanOut
	Copies *printer.Copies
}

type RealMenuRequest struct {
	OrderTypeID string
	EmployeeID  string
}

type RealMenuResult struct {
	OrderID      string
	PaymentID    string
	Total        int64
	EmployeeID   string
	ItemsUsed    []clover.Item
	PrintEventID string
	PrintState   clover.PrintState
	Attempt      printer.Attempt
}

type CheckResult struct {
	BaseURL          string
	MerchantID       string
	RecentOrderCount int
}
