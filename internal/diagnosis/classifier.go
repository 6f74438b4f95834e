package diagnosis

import (
	"encoding/json"
	"fmt"
	"strconv"

	"clover-print-diag/internal/clover"
	"clover-print-diag/internal/printer"
)

type Mode int

const (
	Single Mode = iota
	FanOut
)

const catchAll = "No status or error captured. Check statusChecks and printRequests."

// Entry is one dispatch and, when an event id came back, its poll.
type Entry struct {
	DeviceID string
	Model    string
	Attempt  printer.Attempt
	Poll     *printer.PollResult
}

// State is the state to report for the entry.
func (e Entry) State() clover.PrintState {
	if e.Poll == nil {
		return e.Attempt.State()
	}
	return printer.Settle(e.Attempt.State(), *e.Poll)
}

// Classify explains every entry in order. When no entry produced an
// explanation but at least one status check ran, a single catch-all line is
// returned so a run never comes back empty-handed.
func Classify(mode Mode, entries []Entry) []string {
	out := make([]string, 0, len(entries))
	polled := false
	for _, e := range entries {
		if e.Poll != nil {
			polled = true
		}
		msg := explain(e)
		if msg == "" {
			continue
		}
		if mode == FanOut {
			msg = fmt.Sprintf("Device %s (%s): %s", e.DeviceID, e.Model, msg)
		}
		out = append(out, msg)
	}
	if len(out) == 0 && polled {
		out = append(out, catchAll)
	}
	return out
}

func explain(e Entry) string {
	if !e.Attempt.OK() {
		return "print_event failed: " + describeFailure(e.Attempt.Failure)
	}
	if e.Attempt.EventID() == "" {
		return "No print event id returned, see raw response: " + rawJSON(e.Attempt.Event)
	}

	state := e.State()
	switch {
	case state == clover.StateFailed:
		return "Print event FAILED: device or printer problem."
	case state == clover.StateDone:
		return "State DONE: job reached the device."
	case e.Poll != nil && e.Poll.Err != nil:
		last := string(state)
		if last == "" {
			last = "unknown"
		}
		return fmt.Sprintf("Status check failed (%v); last known state %s.", e.Poll.Err, last)
	case state != "":
		return fmt.Sprintf("State %s.", state)
	}
	return ""
}

func describeFailure(f *printer.Failure) string {
	if f.Status == 0 {
		return f.Message
	}
	detail := f.Message
	if len(f.Body) > 0 {
		detail = string(f.Body)
		var text string
		if json.Unmarshal(f.Body, &text) == nil {
			detail = text
		}
	}
	return strconv.Itoa(f.Status) + " " + detail
}

func rawJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
