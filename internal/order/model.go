package order

import "clover-print-diag/internal/clover"

// DefaultItems are the throwaway items created when the caller names no
// existing inventory.
var DefaultItems = []clover.ItemInput{
	{Name: "Print Test Item 1", Price: 100},
	{Name: "Print Test Item 2", Price: 100},
}

type Request struct {
	OrderTypeID string
	EmployeeID  string
	// Items are existing inventory items to attach. Price is optional and
	// only used as a last-resort total.
	Items []clover.Item
	// Throwaway items are created first when Items is empty. Empty means
	// DefaultItems.
	Throwaway           []clover.ItemInput
	Title               string
	Note                string
	ExternalReferenceID string
}

// ItemsFromIDs wraps caller-supplied inventory ids.
func ItemsFromIDs(ids []string) []clover.Item {
	items := make([]clover.Item, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			items = append(items, clover.Item{ID: id})
		}
	}
	return items
}

type Result struct {
	OrderID   string
	ItemIDs   []string
	PaymentID string
	Total     int64
	Order     *clover.Order
	Policy    string
}
