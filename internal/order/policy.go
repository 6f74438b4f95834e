package order

import (
	"context"
	"fmt"
	"strings"

	"clover-print-diag/internal/clover"
	"clover-print-diag/internal/logger"

	"go.uber.org/zap"
)

const (
	PolicyLockOnly   = "lock_only"
	PolicyLockAndPay = "lock_and_pay"

	cashTenderKey = "com.clover.tender.cash"
)

// Policy decides the terminal pre-print state of a built order. Both
// policies share create, attach, lock and fetch; they differ only in what
// happens after the order is locked.
type Policy interface {
	Name() string
	settle(ctx context.Context, gw clover.Gateway, b *build) error
}

// LockOnly leaves the order locked; no money changes hands.
type LockOnly struct{}

func (LockOnly) Name() string { return PolicyLockOnly }

func (LockOnly) settle(context.Context, clover.Gateway, *build) error { return nil }

// LockAndPay settles the locked order with a full-amount cash payment.
type LockAndPay struct{}

func (LockAndPay) Name() string { return PolicyLockAndPay }

func (LockAndPay) settle(ctx context.Context, gw clover.Gateway, b *build) error {
	log := logger.FromCtx(ctx).With(zap.String("order_id", b.result.OrderID))

	total := ResolveTotal(b.result.Order, b.prices)
	b.result.Total = total
	if total == 0 {
		log.Warn("Order total is zero, skipping payment")
		return stepErr(StepPayment, ErrZeroTotal)
	}

	in := clover.PaymentInput{Amount: total}
	if tender := cashTender(ctx, gw); tender != "" {
		in.Tender = &clover.Ref{ID: tender}
	}

	p, err := gw.CreatePayment(ctx, b.result.OrderID, in)
	if err != nil {
		return stepErr(StepPayment, err)
	}
	if p != nil {
		b.result.PaymentID = p.ID
	}

	log.Info("Order paid (cash)",
		zap.String("payment_id", b.result.PaymentID),
		zap.Int64("amount", total),
	)
	return nil
}

// PolicyByName maps a request value to a policy. Empty selects fallback.
func PolicyByName(name string, fallback Policy) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return fallback, nil
	case PolicyLockOnly, "lock":
		return LockOnly{}, nil
	case PolicyLockAndPay, "pay":
		return LockAndPay{}, nil
	default:
		return nil, fmt.Errorf("unknown order policy %q", name)
	}
}

// ResolveTotal returns the gateway total, else the sum of line item
// amounts, else the sum of prices.
func ResolveTotal(o *clover.Order, prices []int64) int64 {
	if o != nil && o.Total > 0 {
		return o.Total
	}

	var fromLines int64
	for _, line := range o.Lines() {
		fromLines += line.Amount().Round(0).IntPart()
	}
	if fromLines > 0 {
		return fromLines
	}

	var fromPrices int64
	for _, p := range prices {
		fromPrices += p
	}
	if fromPrices < 0 {
		return 0
	}
	return fromPrices
}

// cashTender finds the merchant's cash tender. A lookup failure is not
// fatal; the payment is then sent without a tender and the gateway decides.
func cashTender(ctx context.Context, gw clover.Gateway) string {
	tenders, err := gw.ListTenders(ctx)
	if err != nil {
		logger.FromCtx(ctx).Warn("Failed to list tenders", zap.Error(err))
		return ""
	}
	for _, t := range tenders {
		if t.LabelKey == cashTenderKey {
			return t.ID
		}
	}
	for _, t := range tenders {
		if strings.EqualFold(t.Label, "cash") {
			return t.ID
		}
	}
	return ""
}
