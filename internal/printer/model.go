package printer

import (
	"encoding/json"

	"clover-print-diag/internal/clover"
)

// Failure is a print submission the gateway rejected or that never reached
// it. Status and Body are zero for transport failures.
type Failure struct {
	Message string          `json:"error"`
	Status  int             `json:"httpStatus,omitempty"`
	Body    json.RawMessage `json:"cloverResponse,omitempty"`
}

// Attempt is one print_event submission.
type Attempt struct {
	Request  clover.PrintRequest `json:"sent"`
	DeviceID string              `json:"deviceId,omitempty"`
	Event    *clover.PrintEvent  `json:"cloverResponse,omitempty"`
	Failure  *Failure            `json:"failure,omitempty"`
}

func (a Attempt) OK() bool { return a.Failure == nil }

// EventID is the id of the created event, "" when none came back.
func (a Attempt) EventID() string {
	if a.Event == nil {
		return ""
	}
	return a.Event.ID
}

// State is the dispatch-time state.
func (a Attempt) State() clover.PrintState {
	if a.Event == nil {
		return ""
	}
	return a.Event.State
}

// Copies is the outcome of an explicit repeated print.
type Copies struct {
	Success  bool            `json:"success"`
	Copies   int             `json:"copies"`
	Attempts []Attempt       `json:"results"`
	Error    string          `json:"error,omitempty"`
	Body     json.RawMessage `json:"cloverResponse,omitempty"`
}

// DeviceResult is one device's line in a fan-out.
type DeviceResult struct {
	DeviceID string            `json:"deviceId"`
	Model    string            `json:"model,omitempty"`
	Success  bool              `json:"success"`
	EventID  string            `json:"eventId,omitempty"`
	State    clover.PrintState `json:"state,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// FanOut is successful as a container even when devices failed.
type FanOut struct {
	TryAllDevices bool           `json:"tryAllDevices"`
	Results       []DeviceResult `json:"results"`
}

// PollResult is the second look at an event after the settle interval. Err
// keeps EventID so callers can fall back to the dispatch-time state.
type PollResult struct {
	EventID string             `json:"eventId"`
	Event   *clover.PrintEvent `json:"after,omitempty"`
	Err     error              `json:"-"`
}

func (p PollResult) State() clover.PrintState {
	if p.Err != nil || p.Event == nil {
		return ""
	}
	return p.Event.State
}
