package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// Transaction is the financial record of one paid booking. BookingID is
// unique; amounts never change after insert.
type Transaction struct {
	ID               int64             `json:"id"`
	BookingID        string            `json:"booking_id"`
	StaffID          int32             `json:"staff_id"`
	GrossAmount      decimal.Decimal   `json:"gross_amount"`
	CommissionRate   decimal.Decimal   `json:"commission_rate"`
	CommissionAmount decimal.Decimal   `json:"commission_amount"`
	Currency         string            `json:"currency"`
	TransactionDate  time.Time         `json:"transaction_date"`
	Status           TransactionStatus `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
}

var hundred = decimal.NewFromInt(100)

// Commission returns gross × rate / 100 at minor-unit precision.
func Commission(gross, ratePercent decimal.Decimal) decimal.Decimal {
	return RoundMoney(gross.Mul(ratePercent).Div(hundred))
}

// NewTransaction derives the transaction for a paid booking using the staff
// member's current commission rate.
func NewTransaction(b *Booking, staff *Staff) (*Transaction, error) {
	if b.PaymentStatus != PaymentStatusPaid && b.PaymentStatus != PaymentStatusRefunded {
		return nil, fmt.Errorf("booking %s is not paid", b.ID)
	}
	if !b.PaymentAmount.Valid || !b.PaymentAmount.Decimal.IsPositive() {
		return nil, fmt.Errorf("booking %s has no payment amount", b.ID)
	}

	gross := b.PaymentAmount.Decimal
	rate := decimal.Zero
	if staff != nil {
		rate = staff.CommissionRate
	}

	date := time.Now()
	if b.PaymentReceivedAt != nil {
		date = *b.PaymentReceivedAt
	}

	return &Transaction{
		BookingID:        b.ID,
		StaffID:          b.StaffID,
		GrossAmount:      gross,
		CommissionRate:   rate,
		CommissionAmount: Commission(gross, rate),
		Currency:         b.Currency,
		TransactionDate:  date,
		Status:           TransactionStatusCompleted,
	}, nil
}

// TransactionFilter selects transactions dated in [Start, End).
type TransactionFilter struct {
	StaffID *int32
	Start   time.Time
	End     time.Time
}
