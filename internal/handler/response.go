package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"clover-print-diag/internal/clover"
	"clover-print-diag/internal/hint"
	"clover-print-diag/internal/logger"
	"clover-print-diag/internal/order"
	"clover-print-diag/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// errorResponse is the body of every hard failure.
type errorResponse struct {
	Success        bool            `json:"success"`
	FailedStep     order.Step      `json:"failedStep,omitempty"`
	Error          string          `json:"error"`
	CloverStatus   int             `json:"cloverStatus,omitempty"`
	CloverResponse json.RawMessage `json:"cloverResponse,omitempty"`
	Hint           string          `json:"hint,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	utils.WriteJSON(w, status, v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	utils.WriteJSONError(w, message, status)
}

// writeGatewayError renders err with the step it failed in. fallback is used
// when err carries no step of its own.
func writeGatewayError(w http.ResponseWriter, r *http.Request, fallback order.Step, err error) {
	step := order.FailedStep(err)
	if step == "" {
		step = fallback
	}

	resp := errorResponse{FailedStep: step, Error: causeMessage(err)}
	status := http.StatusInternalServerError

	switch apiErr, ok := clover.AsAPIError(err); {
	case errors.Is(err, order.ErrZeroTotal):
		// A precondition failure, not a gateway error.
		status = http.StatusBadRequest
		resp.FailedStep = order.StepPayment
	case ok:
		if apiErr.Status >= 400 {
			status = apiErr.Status
		}
		resp.Error = apiErr.Message
		resp.CloverStatus = apiErr.Status
		resp.CloverResponse = apiErr.Body
		resp.Hint = hint.For(step, apiErr.Status, apiErr.Body)
	default:
		resp.Hint = hint.For(step, 0, nil)
	}

	logger.FromCtx(r.Context()).Error("Clover step failed",
		zap.String("step", string(resp.FailedStep)),
		zap.Int("status", resp.CloverStatus),
		zap.Error(err),
	)
	writeJSON(w, status, resp)
}

func causeMessage(err error) string {
	var se *order.StepError
	if errors.As(err, &se) {
		return se.Err.Error()
	}
	return err.Error()
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// formatAmount renders minor units as a fixed two-decimal amount.
func formatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
