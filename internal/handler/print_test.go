package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"clover-print-diag/internal/clover"
	"clover-print-diag/internal/clover/clovertest"
	"clover-print-diag/internal/diagnosis"
	"clover-print-diag/internal/handler"
	"clover-print-diag/internal/hint"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func setupRouter(gw clover.Gateway, configured bool) *chi.Mux {
	svc := diagnosis.NewService(gw, diagnosis.Options{
		BaseURL:    "https://api.clover.com",
		MerchantID: "M1",
		Settle:     0,
	})
	h := handler.NewPrintHandler(svc, configured)
	r := chi.NewRouter()
	r.Route("/test-print", h.RegisterRoutes)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), "body: %s", rr.Body.String())
	return resp
}

// --- Config guard ---

func TestRoutes_RequireCloverConfig(t *testing.T) {
	gw := new(clovertest.MockGateway)
	router := setupRouter(gw, false)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/test-print/check"},
		{"GET", "/test-print/devices"},
		{"POST", "/test-print"},
		{"POST", "/test-print/debug-print"},
	} {
		rr := doRequest(t, router, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, tc.path)
		resp := decodeResponse(t, rr)
		assert.Equal(t, false, resp["success"])
		assert.Contains(t, resp["error"], "CLOVER_MERCHANT_ID")
	}
	gw.AssertNotCalled(t, "ListDevices", mock.Anything)

	rr := doRequest(t, router, "GET", "/test-print/how-to-print", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decodeResponse(t, rr), "steps")
}

// --- POST /test-print ---

func TestTestPrint(t *testing.T) {
	t.Run("LockOnlyTargetedDevice", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("CreateOrder", mock.Anything, mock.Anything).Return(&clover.Order{ID: "ORD1"}, nil)
		gw.On("AddLineItem", mock.Anything, "ORD1", "X1", 1).Return(nil)
		gw.On("LockOrder", mock.Anything, "ORD1").Return(nil)
		gw.On("GetOrder", mock.Anything, "ORD1", true).Return(&clover.Order{
			ID:        "ORD1",
			State:     "locked",
			LineItems: &clover.LineItemList{Elements: []clover.LineItem{{ID: "L1"}}},
		}, nil)
		gw.On("CreatePrintEvent", mock.Anything, clover.NewPrintRequest("ORD1", "d1")).
			Return(&clover.PrintEvent{ID: "EV1", State: clover.StateCreated}, nil)
		gw.On("GetPrintEvent", mock.Anything, "EV1").Return(&clover.PrintEvent{ID: "EV1", State: clover.StatePrinting}, nil)

		rr := doRequest(t, setupRouter(gw, true), "POST", "/test-print", map[string]interface{}{
			"deviceId": "d1",
			"itemIds":  []string{"X1"},
			"policy":   "lock_only",
		})

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decodeResponse(t, rr)
		assert.Equal(t, true, resp["success"])
		assert.Equal(t, "ORD1", resp["orderId"])
		assert.Equal(t, "lock_only", resp["policy"])
		assert.Equal(t, "EV1", resp["printEventId"])
		assert.Equal(t, "PRINTING", resp["printState"])
		assert.NotContains(t, resp, "paymentId")

		conf := resp["confirmation"].(map[string]interface{})
		assert.Equal(t, "Order created, locked, and print requested.", conf["message"])
		assert.Equal(t, float64(1), conf["lineItemCount"])

		sent := resp["printEvent"].(map[string]interface{})["sent"].(map[string]interface{})
		assert.Equal(t, "d1", sent["deviceRef"].(map[string]interface{})["id"])
		assert.Contains(t, resp["noPrintTroubleshooting"].(map[string]interface{})["step4"], "ORD1")
		gw.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PaidAmountRendered", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("CreateOrder", mock.Anything, mock.Anything).Return(&clover.Order{ID: "ORD2"}, nil)
		gw.On("AddLineItem", mock.Anything, "ORD2", mock.Anything, 1).Return(nil)
		gw.On("LockOrder", mock.Anything, "ORD2").Return(nil)
		gw.On("GetOrder", mock.Anything, "ORD2", true).Return(&clover.Order{ID: "ORD2", State: "locked", Total: 1250}, nil)
		gw.On("ListTenders", mock.Anything).Return([]clover.Tender{{ID: "T1", Label: "Cash"}}, nil)
		gw.On("CreatePayment", mock.Anything, "ORD2", mock.Anything).Return(&clover.Payment{ID: "PAY2"}, nil)
		gw.On("ListDevices", mock.Anything).Return([]clover.Device{{ID: "d1", Model: "Station"}}, nil)
		gw.On("CreatePrintEvent", mock.Anything, mock.Anything).Return(&clover.PrintEvent{ID: "EV2", State: clover.StateQueued}, nil)

		rr := doRequest(t, setupRouter(gw, true), "POST", "/test-print", map[string]interface{}{
			"itemIds":       []string{"X1"},
			"tryAllDevices": true,
		})

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decodeResponse(t, rr)
		assert.Equal(t, "PAY2", resp["paymentId"])
		assert.Equal(t, "12.50", resp["amount"])
		assert.Equal(t, "QUEUED", resp["printState"])
		assert.Equal(t, "Order created, paid (cash) 12.50, and print requested.", resp["confirmation"].(map[string]interface{})["message"])
		fan := resp["printEvent"].(map[string]interface{})
		assert.Equal(t, true, fan["tryAllDevices"])
		assert.Len(t, fan["results"], 1)
	})

	t.Run("ZeroTotal", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("CreateOrder", mock.Anything, mock.Anything).Return(&clover.Order{ID: "ORD3"}, nil)
		gw.On("AddLineItem", mock.Anything, "ORD3", "X1", 1).Return(nil)
		gw.On("LockOrder", mock.Anything, "ORD3").Return(nil)
		gw.On("GetOrder", mock.Anything, "ORD3", true).Return(&clover.Order{ID: "ORD3"}, nil)

		rr := doRequest(t, setupRouter(gw, true), "POST", "/test-print", map[string]interface{}{"itemIds": []string{"X1"}})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, "payment", resp["failedStep"])
		assert.Contains(t, resp["error"], "total is zero")
		assert.NotContains(t, resp, "cloverStatus")
		gw.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnauthorizedOnCreateOrder", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("CreateItem", mock.Anything, mock.Anything).Return(&clover.Item{ID: "I1"}, nil)
		gw.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, &clover.APIError{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
			Body:    []byte(`{"message":"Unauthorized"}`),
		})

		rr := doRequest(t, setupRouter(gw, true), "POST", "/test-print", nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, "create_order", resp["failedStep"])
		assert.Equal(t, "Unauthorized", resp["error"])
		assert.Equal(t, float64(401), resp["cloverStatus"])
		assert.Equal(t, map[string]interface{}{"message": "Unauthorized"}, resp["cloverResponse"])
		assert.Equal(t, hint.Unauthorized, resp["hint"])
	})

	t.Run("MissingOrderType", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("CreateItem", mock.Anything, mock.Anything).Return(&clover.Item{ID: "I1"}, nil)
		gw.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, &clover.APIError{
			Status:  http.StatusBadRequest,
			Message: "Referenced order type does not exist",
			Body:    []byte(`{"message":"Referenced order type does not exist"}`),
		})

		rr := doRequest(t, setupRouter(gw, true), "POST", "/test-print", map[string]string{"orderTypeId": "Delivery"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, hint.NoOrderTypes, decodeResponse(t, rr)["hint"])
	})

	t.Run("LockTransportError", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("CreateOrder", mock.Anything, mock.Anything).Return(&clover.Order{ID: "ORD4"}, nil)
		gw.On("AddLineItem", mock.Anything, "ORD4", "X1", 1).Return(nil)
		gw.On("LockOrder", mock.Anything, "ORD4").Return(errors.New("connection refused"))

		rr := doRequest(t, setupRouter(gw, true), "POST", "/test-print", map[string]interface{}{"itemIds": []string{"X1"}})

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, "lock_order", resp["failedStep"])
		assert.Equal(t, "connection refused", resp["error"])
		assert.NotContains(t, resp, "hint")
	})

	t.Run("BadPolicy", func(t *testing.T) {
		rr := doRequest(t, setupRouter(new(clovertest.MockGateway), true), "POST", "/test-print", map[string]string{"policy": "refund"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test-print", bytes.NewBufferString("{bad"))
		rr := httptest.NewRecorder()
		setupRouter(new(clovertest.MockGateway), true).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

// --- POST /test-print/send-print ---

func TestSendPrint(t *testing.T) {
	t.Run("MissingOrderID", func(t *testing.T) {
		rr := doRequest(t, setupRouter(new(clovertest.MockGateway), true), "POST", "/test-print/send-print", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeResponse(t, rr)["error"], "orderId")
	})

	t.Run("DoublePrint", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("CreatePrintEvent", mock.Anything, clover.NewPrintRequest("ORD1", "")).
			Return(&clover.PrintEvent{ID: "EV1", State: clover.StateCreated}, nil)

		rr := doRequest(t, setupRouter(gw, true), "POST", "/test-print/send-print", map[string]interface{}{"orderId": "ORD1", "copies": 2})

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, "2 print requests sent.", resp["message"])
		assert.Equal(t, "EV1", resp["printEvent"].(map[string]interface{})["id"])
		gw.AssertNumberOfCalls(t, "CreatePrintEvent", 2)
	})

	t.Run("Rejected", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("CreatePrintEvent", mock.Anything, mock.Anything).Return(nil, &clover.APIError{
			Status:  http.StatusBadRequest,
			Message: "Order is not locked",
			Body:    []byte(`{"message":"Order is not locked"}`),
		})

		rr := doRequest(t, setupRouter(gw, true), "POST", "/test-print/send-print", map[string]interface{}{"orderId": "ORD1"})

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, "Print request failed.", resp["message"])
		assert.Equal(t, "Order is not locked", resp["error"])
		assert.Contains(t, resp, "noPrintTroubleshooting")
	})

	t.Run("AllDevices", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("ListDevices", mock.Anything).Return([]clover.Device{{ID: "d1"}, {ID: "d2"}}, nil)
		gw.On("CreatePrintEvent", mock.Anything, mock.Anything).Return(&clover.PrintEvent{ID: "EV"}, nil)

		rr := doRequest(t, setupRouter(gw, true), "POST", "/test-print/send-print", map[string]interface{}{"orderId": "ORD1", "tryAllDevices": true})

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decodeResponse(t, rr)["printEvent"].(map[string]interface{})["results"], 2)
	})

	t.Run("DeviceListingFails", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("ListDevices", mock.Anything).Return(nil, &clover.APIError{Status: http.StatusForbidden, Message: "Forbidden"})

		rr := doRequest(t, setupRouter(gw, true), "POST", "/test-print/send-print", map[string]interface{}{"orderId": "ORD1", "tryAllDevices": true})

		assert.Equal(t, http.StatusForbidden, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, "fetch_devices", resp["failedStep"])
		assert.Equal(t, hint.Forbidden, resp["hint"])
	})
}

// --- POST /test-print/debug-print ---

func TestDebugPrint(t *testing.T) {
	t.Run("MissingOrderID", func(t *testing.T) {
		rr := doRequest(t, setupRouter(new(clovertest.MockGateway), true), "POST", "/test-print/debug-print", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("FanOut", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("ListDevices", mock.Anything).Return([]clover.Device{{ID: "d1", Model: "Station"}, {ID: "d2", Model: "Mini"}}, nil)
		gw.On("CreatePrintEvent", mock.Anything, clover.NewPrintRequest("ORD1", "d1")).
			Return(&clover.PrintEvent{ID: "EV1", State: clover.StateCreated}, nil)
		gw.On("CreatePrintEvent", mock.Anything, clover.NewPrintRequest("ORD1", "d2")).
			Return(nil, &clover.APIError{Status: http.StatusBadRequest, Message: "Device offline"})
		gw.On("GetPrintEvent", mock.Anything, "EV1").Return(&clover.PrintEvent{ID: "EV1", State: clover.StateDone}, nil)

		rr := doRequest(t, setupRouter(gw, true), "POST", "/test-print/debug-print", map[string]interface{}{"orderId": "ORD1", "tryAllDevices": true})

		require.Equal(t, http.StatusOK, rr.Code)
		diag := decodeResponse(t, rr)["diagnostic"].(map[string]interface{})
		assert.Equal(t, "ORD1", diag["orderId"])
		assert.Equal(t, "M1", diag["config"].(map[string]interface{})["merchantId"])
		assert.Len(t, diag["printRequests"], 2)
		assert.Len(t, diag["statusChecks"], 1)

		devices := diag["devices"].([]interface{})
		require.Len(t, devices, 2)
		assert.Equal(t, "DONE", devices[0].(map[string]interface{})["state"])
		assert.Equal(t, "Device offline", devices[1].(map[string]interface{})["error"])

		why := diag["whyNoPrint"].([]interface{})
		require.Len(t, why, 2)
		assert.Equal(t, "Device d1 (Station): State DONE: job reached the device.", why[0])
	})
}

// --- POST /test-print/real-menu-print ---

func TestRealMenuPrint_NotEnoughItems(t *testing.T) {
	avail := true
	gw := new(clovertest.MockGateway)
	gw.On("ListItems", mock.Anything).Return([]clover.Item{{ID: "R1", Name: "Burger", Available: &avail}}, nil)

	rr := doRequest(t, setupRouter(gw, true), "POST", "/test-print/real-menu-print", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, "Not enough sellable items in inventory. Found 1, need at least 2.", resp["error"])
	found := resp["itemsFound"].([]interface{})
	require.Len(t, found, 1)
	assert.Equal(t, "R1", found[0].(map[string]interface{})["id"])
}

// --- Lookups ---

func TestLookups(t *testing.T) {
	avail, hidden := true, true

	t.Run("Check", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("ListOrders", mock.Anything, 1).Return([]clover.Order{{ID: "O1"}}, nil)

		rr := doRequest(t, setupRouter(gw, true), "GET", "/test-print/check", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, float64(1), resp["recentOrderCount"])
		assert.Equal(t, "https://api.clover.com", resp["baseURL"])
	})

	t.Run("CheckWrongRegion", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("ListOrders", mock.Anything, 1).Return(nil, &clover.APIError{Status: http.StatusNotFound, Message: "Not Found"})

		rr := doRequest(t, setupRouter(gw, true), "GET", "/test-print/check", nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, hint.NotFound, decodeResponse(t, rr)["hint"])
	})

	t.Run("OrderTypesEmpty", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("ListOrderTypes", mock.Anything).Return([]clover.OrderType{}, nil)

		rr := doRequest(t, setupRouter(gw, true), "GET", "/test-print/order-types", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Contains(t, resp["message"], "No order types returned")
		assert.Equal(t, `POST /test-print with body {} or { "tryAllDevices": true }`, resp["usage"])
	})

	t.Run("Devices", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("ListDevices", mock.Anything).Return([]clover.Device{{ID: "d1", Name: "Counter", Model: "Station"}}, nil)

		rr := doRequest(t, setupRouter(gw, true), "GET", "/test-print/devices", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, float64(1), resp["deviceCount"])
		assert.Contains(t, resp, "note")
	})

	t.Run("ItemsSellableOnly", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("ListItems", mock.Anything).Return([]clover.Item{
			{ID: "R1", Name: "Burger", Price: 950, Available: &avail},
			{ID: "R2", Name: "Secret", Price: 100, Available: &avail, Hidden: &hidden},
			{ID: "R3", Name: "Sold out"},
		}, nil)

		rr := doRequest(t, setupRouter(gw, true), "GET", "/test-print/items", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, float64(1), resp["count"])
		item := resp["items"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, float64(950), item["price"])
	})

	t.Run("Employees", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("ListEmployees", mock.Anything).Return([]clover.Employee{{ID: "E1", Name: "Owner"}}, nil)

		rr := doRequest(t, setupRouter(gw, true), "GET", "/test-print/employees", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, float64(1), decodeResponse(t, rr)["count"])
	})

	t.Run("Verify", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("GetOrder", mock.Anything, "ORD9", true).Return(&clover.Order{
			ID:        "ORD9",
			State:     "paid",
			LineItems: &clover.LineItemList{Elements: []clover.LineItem{{ID: "L1"}, {ID: "L2"}}},
		}, nil)

		rr := doRequest(t, setupRouter(gw, true), "GET", "/test-print/verify/ORD9", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, "paid", resp["orderState"])
		assert.Equal(t, float64(2), resp["lineItemCount"])
	})

	t.Run("VerifyNotFound", func(t *testing.T) {
		gw := new(clovertest.MockGateway)
		gw.On("GetOrder", mock.Anything, "NOPE", true).Return(nil, &clover.APIError{Status: http.StatusNotFound, Message: "Order not found"})

		rr := doRequest(t, setupRouter(gw, true), "GET", "/test-print/verify/NOPE", nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "fetch_order", decodeResponse(t, rr)["failedStep"])
	})
}
