package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"clover-print-diag/internal/clover"
	"clover-print-diag/internal/content"
	"clover-print-diag/internal/diagnosis"
	"clover-print-diag/internal/order"

	"github.com/go-chi/chi/v5"
)

// PrintService is the diagnostics surface the handlers need. Satisfied by
// *diagnosis.Service.
type PrintService interface {
	TestPrint(ctx context.Context, req diagnosis.TestPrintRequest) (*diagnosis.TestPrintResult, error)
	SendPrint(ctx context.Context, req diagnosis.SendPrintRequest) (*diagnosis.SendPrintResult, error)
	Diagnose(ctx context.Context, orderID, deviceID string, tryAll bool) (*diagnosis.Run, error)
	RealMenuPrint(ctx context.Context, req diagnosis.RealMenuRequest) (*diagnosis.RealMenuResult, error)
	Check(ctx context.Context) (*diagnosis.CheckResult, error)
	Verify(ctx context.Context, orderID string) (*clover.Order, error)
	Devices(ctx context.Context) ([]clover.Device, error)
	OrderTypes(ctx context.Context) ([]clover.OrderType, error)
	SellableItems(ctx context.Context) ([]clover.Item, error)
	Employees(ctx context.Context) ([]clover.Employee, error)
}

// PrintHandler serves the /test-print routes.
type PrintHandler struct {
	svc        PrintService
	configured bool
}

// NewPrintHandler creates a PrintHandler. configured reports whether the
// Clover merchant id and token are both set.
func NewPrintHandler(svc PrintService, configured bool) *PrintHandler {
	return &PrintHandler{svc: svc, configured: configured}
}

// RegisterRoutes registers the print routes on r. Expected to be mounted at
// /test-print.
func (h *PrintHandler) RegisterRoutes(r chi.Router) {
	r.Get("/how-to-print", h.HowToPrint)

	r.Group(func(r chi.Router) {
		r.Use(h.requireCloverConfig)

		r.Post("/", h.TestPrint)
		r.Post("/send-print", h.SendPrint)
		r.Post("/debug-print", h.DebugPrint)
		r.Post("/real-menu-print", h.RealMenuPrint)

		r.Get("/check", h.Check)
		r.Get("/order-types", h.OrderTypes)
		r.Get("/devices", h.Devices)
		r.Get("/items", h.Items)
		r.Get("/employees", h.Employees)
		r.Get("/verify/{orderId}", h.Verify)
	})
}

func (h *PrintHandler) requireCloverConfig(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.configured {
			writeError(w, http.StatusBadRequest, "Missing CLOVER_MERCHANT_ID or CLOVER_ACCESS_TOKEN in .env")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- Request / Response types ---

type testPrintRequest struct {
	DeviceID      string   `json:"deviceId"`
	TryAllDevices bool     `json:"tryAllDevices"`
	OrderTypeID   string   `json:"orderTypeId"`
	EmployeeID    string   `json:"employeeId"`
	ItemIDs       []string `json:"itemIds"`
	Policy        string   `json:"policy"`
}

type sendPrintRequest struct {
	OrderID       string `json:"orderId"`
	DeviceID      string `json:"deviceId"`
	TryAllDevices bool   `json:"tryAllDevices"`
	Copies        int    `json:"copies"`
}

type realMenuRequest struct {
	OrderTypeID string `json:"orderTypeId"`
	EmployeeID  string `json:"employeeId"`
}

type confirmation struct {
	Message       string        `json:"message"`
	OrderState    string        `json:"orderState,omitempty"`
	LineItemCount int           `json:"lineItemCount"`
	OrderDetails  *clover.Order `json:"orderDetails,omitempty"`
}

type testPrintResponse struct {
	Success                bool                    `json:"success"`
	OrderID                string                  `json:"orderId"`
	PaymentID              string                  `json:"paymentId,omitempty"`
	Policy                 string                  `json:"policy"`
	Amount                 string                  `json:"amount,omitempty"`
	PrintEventID           string                  `json:"printEventId,omitempty"`
	PrintState             clover.PrintState       `json:"printState,omitempty"`
	OrderState             string                  `json:"orderState,omitempty"`
	PrintEvent             interface{}             `json:"printEvent"`
	Confirmation           confirmation            `json:"confirmation"`
	NoPrintTroubleshooting content.Troubleshooting `json:"noPrintTroubleshooting"`
}

type itemRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Price *int64 `json:"price,omitempty"`
}

func toItemRefs(items []clover.Item, withPrice bool) []itemRef {
	out := make([]itemRef, len(items))
	for i, it := range items {
		out[i] = itemRef{ID: it.ID, Name: it.Name}
		if withPrice {
			price := it.Price
			out[i].Price = &price
		}
	}
	return out
}

// --- Print handlers ---

// TestPrint creates an order, settles it, prints it and checks the print.
func (h *PrintHandler) TestPrint(w http.ResponseWriter, r *http.Request) {
	var req testPrintRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	policy, err := order.PolicyByName(req.Policy, order.LockAndPay{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.TestPrint(r.Context(), diagnosis.TestPrintRequest{
		DeviceID:      req.DeviceID,
		TryAllDevices: req.TryAllDevices,
		OrderTypeID:   req.OrderTypeID,
		EmployeeID:    req.EmployeeID,
		ItemIDs:       req.ItemIDs,
		Policy:        policy,
	})
	if err != nil {
		writeGatewayError(w, r, order.StepCreateOrder, err)
		return
	}

	message := "Order created, locked, and print requested."
	if res.Policy == order.PolicyLockAndPay {
		message = fmt.Sprintf("Order created, paid (cash) %s, and print requested.", formatAmount(res.Total))
	}

	resp := testPrintResponse{
		Success:      true,
		OrderID:      res.OrderID,
		PaymentID:    res.PaymentID,
		Policy:       res.Policy,
		PrintEventID: res.PrintEventID,
		PrintState:   res.PrintState,
		OrderState:   res.OrderState,
		Confirmation: confirmation{
			Message:       message,
			OrderState:    res.OrderState,
			LineItemCount: res.LineItemCount,
			OrderDetails:  res.Order,
		},
		NoPrintTroubleshooting: content.NoPrint(res.OrderID),
	}
	if res.Total > 0 {
		resp.Amount = formatAmount(res.Total)
	}
	if res.FanOut != nil {
		resp.PrintEvent = res.FanOut
	} else {
		resp.PrintEvent = res.Attempt
	}
	writeJSON(w, http.StatusOK, resp)
}

// SendPrint re-sends an existing order, optionally several times.
func (h *PrintHandler) SendPrint(w http.ResponseWriter, r *http.Request) {
	var req sendPrintRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, `Body must include orderId: { "orderId": "YOUR_ORDER_ID" }`)
		return
	}

	res, err := h.svc.SendPrint(r.Context(), diagnosis.SendPrintRequest{
		OrderID:       req.OrderID,
		DeviceID:      req.DeviceID,
		TryAllDevices: req.TryAllDevices,
		Copies:        req.Copies,
	})
	if err != nil {
		writeGatewayError(w, r, order.StepPrintEvent, err)
		return
	}

	if res.FanOut != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"message":    "Print sent to all devices. Check which Clover device has your Star printer.",
			"printEvent": res.FanOut,
		})
		return
	}

	copies := res.Copies
	if !copies.Success {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success":                false,
			"message":                "Print request failed.",
			"error":                  copies.Error,
			"cloverResponse":         copies.Body,
			"copies":                 copies,
			"noPrintTroubleshooting": content.SendPrintNoPrint(req.OrderID),
		})
		return
	}

	message := "Print request sent."
	if copies.Copies > 1 {
		message = fmt.Sprintf("%d print requests sent.", copies.Copies)
	}
	last := copies.Attempts[len(copies.Attempts)-1]
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":                true,
		"message":                message,
		"printEvent":             last.Event,
		"copies":                 copies,
		"noPrintTroubleshooting": content.SendPrintNoPrint(req.OrderID),
	})
}

// DebugPrint runs a diagnostic print for an existing order.
func (h *PrintHandler) DebugPrint(w http.ResponseWriter, r *http.Request) {
	var req sendPrintRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, `Body must include orderId. Example: { "orderId": "ABC123" }. Get an orderId from a previous POST /test-print response.`)
		return
	}

	run, err := h.svc.Diagnose(r.Context(), req.OrderID, req.DeviceID, req.TryAllDevices)
	if err != nil {
		writeGatewayError(w, r, order.StepFetchDevices, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Debug run complete. See printRequests, statusChecks, and whyNoPrint.",
		"diagnostic": run,
	})
}

// RealMenuPrint prints a paid order built from the merchant's own items.
func (h *PrintHandler) RealMenuPrint(w http.ResponseWriter, r *http.Request) {
	var req realMenuRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.RealMenuPrint(r.Context(), diagnosis.RealMenuRequest{
		OrderTypeID: req.OrderTypeID,
		EmployeeID:  req.EmployeeID,
	})
	if errors.Is(err, order.ErrNotEnoughItems) {
		found := 0
		var items []itemRef
		if res != nil {
			found = len(res.ItemsUsed)
			items = toItemRefs(res.ItemsUsed, false)
		}
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":    false,
			"failedStep": order.StepFetchItems,
			"error":      fmt.Sprintf("Not enough sellable items in inventory. Found %d, need at least 2.", found),
			"itemsFound": items,
		})
		return
	}
	if err != nil {
		writeGatewayError(w, r, order.StepCreateOrder, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"orderId":      res.OrderID,
		"paymentId":    res.PaymentID,
		"amount":       formatAmount(res.Total),
		"employeeId":   res.EmployeeID,
		"itemsUsed":    toItemRefs(res.ItemsUsed, false),
		"printEventId": res.PrintEventID,
		"printState":   res.PrintState,
		"printEvent":   res.Attempt,
	})
}

// --- Lookup handlers ---

func (h *PrintHandler) HowToPrint(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, content.HowToPrint)
}

// Check confirms the credentials reach the merchant.
func (h *PrintHandler) Check(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Check(r.Context())
	if err != nil {
		// A failing check is most often an order permission or region issue.
		writeGatewayError(w, r, order.StepCreateOrder, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"message":          "Clover API connection OK. You can POST /test-print to create an order.",
		"baseURL":          res.BaseURL,
		"merchantId":       res.MerchantID,
		"recentOrderCount": res.RecentOrderCount,
	})
}

func (h *PrintHandler) OrderTypes(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.OrderTypes(r.Context())
	if err != nil {
		writeGatewayError(w, r, "", err)
		return
	}

	message := "Use orderTypeId from one of these (e.g. Online Order, Take Out, Delivery) in POST /test-print so our orders route to the same printer as Uber Eats/DoorDash."
	usage := `POST /test-print with body { "orderTypeId": "<id from above>" }`
	if len(list) == 0 {
		message = "No order types returned from Clover. You can still use POST /test-print without orderTypeId. To get types: create them in Clover Setup (e.g. Register app > Order Types, or Setup App), or use a production merchant that has Online Order / Take Out already."
		usage = `POST /test-print with body {} or { "tryAllDevices": true }`
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    message,
		"orderTypes": list,
		"usage":      usage,
	})
}

func (h *PrintHandler) Devices(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Devices(r.Context())
	if err != nil {
		writeGatewayError(w, r, order.StepFetchDevices, err)
		return
	}

	message := "Clover POS devices. Physical printers (e.g. Star SP700) are connected to one of these."
	if len(list) == 0 {
		message = "No devices found. Add a Clover device and set it as the order printer in Setup App."
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     message,
		"deviceCount": len(list),
		"devices":     list,
		"note":        `Set "Default Firing Device" (Setup > Online Ordering > Settings) to the device that has your Star printer as Order Printer.`,
	})
}

func (h *PrintHandler) Items(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.SellableItems(r.Context())
	if err != nil {
		writeGatewayError(w, r, order.StepFetchItems, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(items),
		"items":   toItemRefs(items, true),
	})
}

func (h *PrintHandler) Employees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.svc.Employees(r.Context())
	if err != nil {
		writeGatewayError(w, r, order.StepFetchEmployee, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"count":     len(employees),
		"employees": employees,
	})
}

// Verify returns an order with its line items.
func (h *PrintHandler) Verify(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	o, err := h.svc.Verify(r.Context(), orderID)
	if err != nil {
		writeGatewayError(w, r, order.StepFetchOrder, err)
		return
	}

	state := ""
	if o != nil {
		state = o.State
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"orderId":       orderID,
		"orderState":    state,
		"lineItemCount": len(o.Lines()),
		"orderDetails":  o,
	})
}

var _ PrintService = (*diagnosis.Service)(nil)
