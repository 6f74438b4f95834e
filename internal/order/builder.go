package order

import (
	"context"

	"clover-print-diag/internal/clover"
	"clover-print-diag/internal/logger"

	"go.uber.org/zap"
)

// Builder assembles an order to the state the gateway requires before it
// accepts a print event.
type Builder interface {
	Build(ctx context.Context, req Request, policy Policy) (*Result, error)
}

type builder struct {
	gw clover.Gateway
}

func NewBuilder(gw clover.Gateway) Builder {
	return &builder{gw: gw}
}

// build is the state shared between the common steps and a policy.
type build struct {
	prices []int64
	result *Result
}

// Build runs create_items (when needed), create_order, add_line_items,
// lock_order and fetch_order, then hands the locked order to policy.
// Every failure is a *StepError.
func (b *builder) Build(ctx context.Context, req Request, policy Policy) (*Result, error) {
	if policy == nil {
		policy = LockAndPay{}
	}
	log := logger.FromCtx(ctx).With(zap.String("policy", policy.Name()))

	st := &build{result: &Result{Policy: policy.Name()}}

	items := req.Items
	if len(items) == 0 {
		created, err := b.createThrowaway(ctx, req.Throwaway)
		if err != nil {
			return nil, err
		}
		items = created
	}
	for _, it := range items {
		st.result.ItemIDs = append(st.result.ItemIDs, it.ID)
		st.prices = append(st.prices, it.Price)
	}

	in := clover.OrderInput{
		State:               "open",
		ExternalReferenceID: req.ExternalReferenceID,
		Title:               req.Title,
		Note:                req.Note,
	}
	if req.OrderTypeID != "" {
		in.OrderType = &clover.Ref{ID: req.OrderTypeID}
	}
	if req.EmployeeID != "" {
		in.Employee = &clover.Ref{ID: req.EmployeeID}
	}

	created, err := b.gw.CreateOrder(ctx, in)
	if err != nil {
		return nil, stepErr(StepCreateOrder, err)
	}
	if created == nil || created.ID == "" {
		return nil, stepErr(StepCreateOrder, ErrMissingID)
	}
	orderID := created.ID
	st.result.OrderID = orderID
	log = log.With(zap.String("order_id", orderID))
	log.Info("Order created",
		zap.String("order_type_id", req.OrderTypeID),
		zap.String("employee_id", req.EmployeeID),
	)

	for _, id := range st.result.ItemIDs {
		if err := b.gw.AddLineItem(ctx, orderID, id, 1); err != nil {
			return nil, stepErr(StepAddLineItems, err)
		}
	}

	if err := b.gw.LockOrder(ctx, orderID); err != nil {
		return nil, stepErr(StepLockOrder, err)
	}

	details, err := b.gw.GetOrder(ctx, orderID, true)
	if err != nil {
		return nil, stepErr(StepFetchOrder, err)
	}
	st.result.Order = details

	if err := policy.settle(ctx, b.gw, st); err != nil {
		return nil, err
	}

	log.Info("Order ready for print",
		zap.Int("line_items", len(st.result.ItemIDs)),
		zap.String("payment_id", st.result.PaymentID),
	)
	return st.result, nil
}

func (b *builder) createThrowaway(ctx context.Context, defs []clover.ItemInput) ([]clover.Item, error) {
	if len(defs) == 0 {
		defs = DefaultItems
	}

	items := make([]clover.Item, 0, len(defs))
	for _, def := range defs {
		created, err := b.gw.CreateItem(ctx, def)
		if err != nil {
			return nil, stepErr(StepCreateItems, err)
		}
		if created == nil || created.ID == "" {
			return nil, stepErr(StepCreateItems, ErrMissingID)
		}
		items = append(items, clover.Item{ID: created.ID, Name: def.Name, Price: def.Price})
	}
	return items, nil
}
