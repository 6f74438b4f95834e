package clover

// PrintState is the gateway's print event state. Values outside the known
// set are gateway-specific variants and are carried verbatim.
type PrintState string

const (
	StateCreated  PrintState = "CREATED"
	StateQueued   PrintState = "QUEUED"
	StatePrinting PrintState = "PRINTING"
	StateDone     PrintState = "DONE"
	StateFailed   PrintState = "FAILED"
)

// Rank orders states along the print lifecycle. DONE and FAILED are both
// terminal and share the highest rank.
func (s PrintState) Rank() int {
	switch s {
	case StateQueued:
		return 1
	case StatePrinting:
		return 2
	case StateDone, StateFailed:
		return 3
	default:
		return 0
	}
}

// Known reports whether s is one of the named lifecycle states.
func (s PrintState) Known() bool {
	switch s {
	case StateCreated, StateQueued, StatePrinting, StateDone, StateFailed:
		return true
	}
	return false
}
