package clover

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Ref is the {"id": ...} reference the gateway uses between entities.
type Ref struct {
	ID string `json:"id"`
}

type Device struct {
	ID             string `json:"id"`
	Name           string `json:"name,omitempty"`
	Model          string `json:"model,omitempty"`
	Serial         string `json:"serial,omitempty"`
	DeviceTypeName string `json:"deviceTypeName,omitempty"`
}

type OrderType struct {
	ID                string `json:"id"`
	Label             string `json:"label,omitempty"`
	LabelKey          string `json:"labelKey,omitempty"`
	IsDefault         bool   `json:"isDefault,omitempty"`
	SystemOrderTypeID string `json:"systemOrderTypeId,omitempty"`
}

type Item struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Available *bool  `json:"available,omitempty"`
	Hidden    *bool  `json:"hidden,omitempty"`
}

// Sellable reports whether the item is explicitly available and not hidden.
func (i Item) Sellable() bool {
	return i.Available != nil && *i.Available && (i.Hidden == nil || !*i.Hidden)
}

// ItemInput is the body of a throwaway inventory item.
type ItemInput struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type Employee struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Role        string `json:"role,omitempty"`
	DeletedTime *int64 `json:"deletedTime,omitempty"`
}

type Tender struct {
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
	LabelKey string `json:"labelKey,omitempty"`
	Enabled  bool   `json:"enabled,omitempty"`
}

type LineItem struct {
	ID        string              `json:"id,omitempty"`
	Item      *Ref                `json:"item,omitempty"`
	Name      string              `json:"name,omitempty"`
	Price     *int64              `json:"price,omitempty"`
	UnitPrice *int64              `json:"unitPrice,omitempty"`
	Quantity  decimal.NullDecimal `json:"quantity,omitempty"`
}

// Amount is unit price (falling back to price) times quantity (falling
// back to 1).
func (l LineItem) Amount() decimal.Decimal {
	var price int64
	switch {
	case l.UnitPrice != nil:
		price = *l.UnitPrice
	case l.Price != nil:
		price = *l.Price
	}
	qty := decimal.NewFromInt(1)
	if l.Quantity.Valid {
		qty = l.Quantity.Decimal
	}
	return decimal.NewFromInt(price).Mul(qty)
}

type LineItemList struct {
	Elements []LineItem `json:"elements"`
}

type Order struct {
	ID        string          `json:"id"`
	State     string          `json:"state,omitempty"`
	Total     int64           `json:"total,omitempty"`
	OrderType *Ref            `json:"orderType,omitempty"`
	Employee  *Ref            `json:"employee,omitempty"`
	LineItems *LineItemList   `json:"lineItems,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

// Lines returns the expanded line items, if any were returned.
func (o *Order) Lines() []LineItem {
	if o == nil || o.LineItems == nil {
		return nil
	}
	return o.LineItems.Elements
}

// OrderInput is the body of a new open order.
type OrderInput struct {
	State               string `json:"state"`
	OrderType           *Ref   `json:"orderType,omitempty"`
	Employee            *Ref   `json:"employee,omitempty"`
	ExternalReferenceID string `json:"externalReferenceId,omitempty"`
	Title               string `json:"title,omitempty"`
	Note                string `json:"note,omitempty"`
}

type Payment struct {
	ID     string          `json:"id"`
	Amount int64           `json:"amount,omitempty"`
	Raw    json.RawMessage `json:"-"`
}

// PaymentInput is a full-amount settlement against an order.
type PaymentInput struct {
	Order  Ref   `json:"order"`
	Tender *Ref  `json:"tender,omitempty"`
	Amount int64 `json:"amount"`
}

// PrintRequest is the print_event body. DeviceRef absent means the
// merchant's default firing device.
type PrintRequest struct {
	OrderRef  Ref  `json:"orderRef"`
	DeviceRef *Ref `json:"deviceRef,omitempty"`
}

// NewPrintRequest builds a request for orderID, targeted at deviceID when it
// is not empty.
func NewPrintRequest(orderID, deviceID string) PrintRequest {
	req := PrintRequest{OrderRef: Ref{ID: orderID}}
	if deviceID != "" {
		req.DeviceRef = &Ref{ID: deviceID}
	}
	return req
}

type PrintEvent struct {
	ID        string          `json:"id"`
	State     PrintState      `json:"state,omitempty"`
	OrderRef  *Ref            `json:"orderRef,omitempty"`
	DeviceRef *Ref            `json:"deviceRef,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

// MarshalJSON renders the gateway's own representation when it is known.
func (e PrintEvent) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	type plain PrintEvent
	return json.Marshal(plain(e))
}

// MarshalJSON renders the gateway's own representation when it is known.
func (o Order) MarshalJSON() ([]byte, error) {
	if len(o.Raw) > 0 {
		return o.Raw, nil
	}
	type plain Order
	return json.Marshal(plain(o))
}
