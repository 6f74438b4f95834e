package clover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"clover-print-diag/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.clover.com"
	defaultRate    = 8
	defaultBurst   = 4
)

// Gateway is the subset of the Clover v3 REST API the diagnostics use.
type Gateway interface {
	ListDevices(ctx context.Context) ([]Device, error)
	ListOrderTypes(ctx context.Context) ([]OrderType, error)
	ListItems(ctx context.Context) ([]Item, error)
	CreateItem(ctx context.Context, in ItemInput) (*Item, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	ListTenders(ctx context.Context) ([]Tender, error)
	CreateOrder(ctx context.Context, in OrderInput) (*Order, error)
	AddLineItem(ctx context.Context, orderID, itemID string, quantity int) error
	LockOrder(ctx context.Context, orderID string) error
	CreatePayment(ctx context.Context, orderID string, in PaymentInput) (*Payment, error)
	CreatePrintEvent(ctx context.Context, req PrintRequest) (*PrintEvent, error)
	GetPrintEvent(ctx context.Context, eventID string) (*PrintEvent, error)
	GetOrder(ctx context.Context, orderID string, expandLineItems bool) (*Order, error)
	ListOrders(ctx context.Context, limit int) ([]Order, error)
}

type Options struct {
	BaseURL     string
	MerchantID  string
	AccessToken string
	// RequestsPerSecond bounds the outbound request rate. Zero uses the
	// default; a negative value disables limiting.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

type client struct {
	baseURL    string
	merchantID string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ----------------- Constructor -----------------

func NewClient(opts Options) Gateway {
	if opts.MerchantID == "" {
		logger.L().Warn("Clover merchant id is empty")
	}
	if opts.AccessToken == "" {
		logger.L().Warn("Clover access token is empty")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	limit := rate.Limit(defaultRate)
	switch {
	case opts.RequestsPerSecond < 0:
		limit = rate.Inf
	case opts.RequestsPerSecond > 0:
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &client{
		baseURL:    NormalizeBaseURL(opts.BaseURL),
		merchantID: opts.MerchantID,
		token:      opts.AccessToken,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, defaultBurst),
	}
}

// NormalizeBaseURL prepends https:// when no scheme is given and trims any
// trailing slash. Empty input yields the production host.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultBaseURL
	}
	if !strings.HasPrefix(raw, "http") {
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/")
}

// ----------------- Catalogue -----------------

func (c *client) ListDevices(ctx context.Context) ([]Device, error) {
	body, err := c.do(ctx, http.MethodGet, c.merchantPath("devices"), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Device](body)
}

func (c *client) ListOrderTypes(ctx context.Context) ([]OrderType, error) {
	body, err := c.do(ctx, http.MethodGet, c.merchantPath("order_types"), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[OrderType](body)
}

func (c *client) ListItems(ctx context.Context) ([]Item, error) {
	body, err := c.do(ctx, http.MethodGet, c.merchantPath("items"), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Item](body)
}

func (c *client) CreateItem(ctx context.Context, in ItemInput) (*Item, error) {
	body, err := c.do(ctx, http.MethodPost, c.merchantPath("items"), nil, in)
	if err != nil {
		return nil, err
	}
	var item Item
	if err := decodeEntity(body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *client) ListEmployees(ctx context.Context) ([]Employee, error) {
	body, err := c.do(ctx, http.MethodGet, c.merchantPath("employees"), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Employee](body)
}

func (c *client) ListTenders(ctx context.Context) ([]Tender, error) {
	body, err := c.do(ctx, http.MethodGet, c.merchantPath("tenders"), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Tender](body)
}

// ----------------- Orders -----------------

func (c *client) CreateOrder(ctx context.Context, in OrderInput) (*Order, error) {
	if in.State == "" {
		in.State = "open"
	}
	body, err := c.do(ctx, http.MethodPost, c.merchantPath("orders"), nil, in)
	if err != nil {
		return nil, err
	}
	return decodeOrder(body)
}

func (c *client) AddLineItem(ctx context.Context, orderID, itemID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	payload := map[string]interface{}{
		"item":     Ref{ID: itemID},
		"quantity": quantity,
	}
	_, err := c.do(ctx, http.MethodPost, c.merchantPath("orders", orderID, "line_items"), nil, payload)
	return err
}

func (c *client) LockOrder(ctx context.Context, orderID string) error {
	payload := map[string]string{"state": "locked"}
	_, err := c.do(ctx, http.MethodPost, c.merchantPath("orders", orderID), nil, payload)
	return err
}

func (c *client) CreatePayment(ctx context.Context, orderID string, in PaymentInput) (*Payment, error) {
	in.Order = Ref{ID: orderID}
	body, err := c.do(ctx, http.MethodPost, c.merchantPath("orders", orderID, "payments"), nil, in)
	if err != nil {
		return nil, err
	}
	var p Payment
	if err := decodeEntity(body, &p); err != nil {
		return nil, err
	}
	p.Raw = rawBody(body)
	return &p, nil
}

func (c *client) GetOrder(ctx context.Context, orderID string, expandLineItems bool) (*Order, error) {
	query := url.Values{}
	if expandLineItems {
		query.Set("expand", "lineItems")
	}
	body, err := c.do(ctx, http.MethodGet, c.merchantPath("orders", orderID), query, nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder(body)
}

func (c *client) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.do(ctx, http.MethodGet, c.merchantPath("orders"), query, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Order](body)
}

// ----------------- Print events -----------------

func (c *client) CreatePrintEvent(ctx context.Context, req PrintRequest) (*PrintEvent, error) {
	body, err := c.do(ctx, http.MethodPost, c.merchantPath("print_event"), nil, req)
	if err != nil {
		return nil, err
	}
	return decodePrintEvent(body)
}

func (c *client) GetPrintEvent(ctx context.Context, eventID string) (*PrintEvent, error) {
	body, err := c.do(ctx, http.MethodGet, c.merchantPath("print_event", eventID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodePrintEvent(body)
}

// ----------------- Transport -----------------

func (c *client) merchantPath(parts ...string) string {
	segments := make([]string, 0, len(parts)+3)
	segments = append(segments, "v3", "merchants", url.PathEscape(c.merchantID))
	for _, p := range parts {
		segments = append(segments, url.PathEscape(p))
	}
	return "/" + strings.Join(segments, "/")
}

// do sends one request and returns the raw 2xx body. Non-2xx responses come
// back as *APIError.
func (c *client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", method),
		zap.String("path", path),
	)

	var reader io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			log.Error("Failed to marshal clover request", zap.Error(err))
			return nil, err
		}
		reader = bytes.NewReader(jsonBody)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		log.Warn("Clover rate limiter wait aborted", zap.Error(err))
		return nil, fmt.Errorf("clover rate limit: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Clover request failed", zap.Error(err))
		return nil, fmt.Errorf("clover %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read clover response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("Clover returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, newAPIError(resp.StatusCode, bodyBytes)
	}

	log.Debug("Clover request ok", zap.Int("status", resp.StatusCode))
	return bodyBytes, nil
}

func decodeEntity(body []byte, v interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unexpected clover response: %w", err)
	}
	return nil
}

func decodeOrder(body []byte) (*Order, error) {
	var o Order
	if err := decodeEntity(body, &o); err != nil {
		return nil, err
	}
	o.Raw = rawBody(body)
	return &o, nil
}

func decodePrintEvent(body []byte) (*PrintEvent, error) {
	var e PrintEvent
	if err := decodeEntity(body, &e); err != nil {
		return nil, err
	}
	e.Raw = rawBody(body)
	return &e, nil
}

func rawBody(body []byte) json.RawMessage {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.RawMessage(body)
}
