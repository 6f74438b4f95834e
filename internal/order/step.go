package order

// Step names a failure boundary of an order build or print flow. The names
// are part of the response contract and are matched by the hint rules.
type Step string

const (
	StepCreateItems   Step = "create_items"
	StepCreateOrder   Step = "create_order"
	StepAddLineItems  Step = "add_line_items"
	StepLockOrder     Step = "lock_order"
	StepFetchOrder    Step = "fetch_order"
	StepPayment       Step = "payment"
	StepFetchItems    Step = "fetch_items"
	StepFetchEmployee Step = "fetch_employee"
	StepPrintEvent    Step = "print_event"
	StepFetchDevices  Step = "fetch_devices"
)
