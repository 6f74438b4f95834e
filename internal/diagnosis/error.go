package diagnosis

import "errors"

var ErrMissingOrderID = errors.New("orderId is required")
