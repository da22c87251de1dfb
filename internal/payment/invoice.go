package payment

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// NewInvoiceNumber returns PREFIX-YYYYMMDD-NNNN. The suffix is random; the
// invoice number only needs to be unique enough to correlate a payment back
// to its booking, and booking id is always tried first.
func NewInvoiceNumber(prefix string, now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	} else {
		suffix = now.UnixNano() % 10000
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("20060102"), suffix)
}
