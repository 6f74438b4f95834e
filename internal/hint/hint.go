// Package hint turns gateway failures into operator advice. Hints are
// advisory only and never change control flow.
package hint

import (
	"encoding/json"
	"net/http"
	"regexp"

	"clover-print-diag/internal/order"
)

const (
	Unauthorized = "Invalid or expired token. Check CLOVER_ACCESS_TOKEN and use the correct Clover environment (sandbox vs production)."
	Forbidden    = "Token does not have permission for this action. Check token scope in Clover Developer Dashboard."
	NotFound     = "Merchant or resource not found. If using sandbox, set CLOVER_BASE_URL=https://apisandbox.dev.clover.com in .env."
	LockRejected = "Try PATCH instead of POST for order update, or check request body."
	NoOrderTypes = "This merchant has no order types (GET /test-print/order-types returns empty). Omit orderTypeId in the body and use POST /test-print with {} or { \"tryAllDevices\": true }. Or create order types in Clover Setup first."
	CreateOrder  = "Ensure token has order write permission and CLOVER_BASE_URL matches your merchant region (e.g. api.eu.clover.com for Europe)."
)

var orderTypePattern = regexp.MustCompile(`(?i)order type`)

// For returns the hint for a failure at step with the given HTTP status and
// raw gateway body, or "" when no rule applies. The first matching rule wins.
func For(step order.Step, status int, body json.RawMessage) string {
	switch {
	case status == http.StatusUnauthorized:
		return Unauthorized
	case status == http.StatusForbidden:
		return Forbidden
	case status == http.StatusNotFound:
		return NotFound
	case status == http.StatusUnprocessableEntity && step == order.StepLockOrder:
		return LockRejected
	case status == http.StatusBadRequest && step == order.StepCreateOrder && orderTypePattern.MatchString(message(body)):
		return NoOrderTypes
	case step == order.StepCreateOrder, step == order.StepCreateItems:
		return CreateOrder
	}
	return ""
}

func message(body json.RawMessage) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
