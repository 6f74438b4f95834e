package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateExternalReference returns an order reference of the form
// A<11 digits>: the low eight digits of the millisecond clock followed by
// three random digits.
func GenerateExternalReference() string {
	now := time.Now().UTC()
	millis := now.UnixMilli() % 100000000

	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 1000)
	}

	return fmt.Sprintf("A%08d%03d", millis, n.Int64())
}
