package order

import (
	"context"
	"fmt"

	"clover-print-diag/internal/clover"
)

// SellableItems returns inventory items that are available and not hidden.
func SellableItems(ctx context.Context, gw clover.Gateway) ([]clover.Item, error) {
	all, err := gw.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]clover.Item, 0, len(all))
	for _, it := range all {
		if it.ID != "" && it.Sellable() {
			out = append(out, it)
		}
	}
	return out, nil
}

// PickItems returns the first n sellable items.
func PickItems(ctx context.Context, gw clover.Gateway, n int) ([]clover.Item, error) {
	items, err := SellableItems(ctx, gw)
	if err != nil {
		return nil, stepErr(StepFetchItems, err)
	}
	if len(items) < n {
		return items, stepErr(StepFetchItems, fmt.Errorf("%w: found %d, need at least %d", ErrNotEnoughItems, len(items), n))
	}
	return items[:n], nil
}

// FirstEmployee returns the id of the first employee that is not deleted.
func FirstEmployee(ctx context.Context, gw clover.Gateway) (string, error) {
	employees, err := gw.ListEmployees(ctx)
	if err != nil {
		return "", stepErr(StepFetchEmployee, err)
	}
	for _, e := range employees {
		if e.ID != "" && e.DeletedTime == nil {
			return e.ID, nil
		}
	}
	return "", stepErr(StepFetchEmployee, ErrNoEmployee)
}
