package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booking(s ServiceStatus, p PaymentStatus) *Booking {
	return &Booking{ID: "b1", ServiceStatus: s, PaymentStatus: p}
}

func TestBooking_CanCancel(t *testing.T) {
	tests := []struct {
		name    string
		b       *Booking
		allowed bool
	}{
		{"scheduled pending", booking(ServiceStatusScheduled, PaymentStatusPending), true},
		{"scheduled paid", booking(ServiceStatusScheduled, PaymentStatusPaid), true},
		{"completed pending", booking(ServiceStatusCompleted, PaymentStatusPending), true},
		{"completed failed", booking(ServiceStatusCompleted, PaymentStatusFailed), true},
		{"completed paid", booking(ServiceStatusCompleted, PaymentStatusPaid), false},
		{"completed refunded", booking(ServiceStatusCompleted, PaymentStatusRefunded), false},
		{"already cancelled", booking(ServiceStatusCancelled, PaymentStatusPending), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.b.CanCancel()
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidTransition))
			}
		})
	}
}

func TestBooking_PaymentGuards(t *testing.T) {
	assert.NoError(t, booking(ServiceStatusScheduled, PaymentStatusPending).CanAcceptPayment())
	assert.NoError(t, booking(ServiceStatusCompleted, PaymentStatusFailed).CanAcceptPayment())
	assert.Error(t, booking(ServiceStatusCancelled, PaymentStatusPending).CanAcceptPayment())
	assert.Error(t, booking(ServiceStatusCompleted, PaymentStatusPaid).CanAcceptPayment())

	assert.NoError(t, booking(ServiceStatusCancelled, PaymentStatusPaid).CanRefund())
	assert.Error(t, booking(ServiceStatusScheduled, PaymentStatusPending).CanRefund())

	assert.NoError(t, booking(ServiceStatusScheduled, PaymentStatusPending).CanFail())
	assert.Error(t, booking(ServiceStatusScheduled, PaymentStatusPaid).CanFail())
	assert.Error(t, booking(ServiceStatusCancelled, PaymentStatusPending).CanFail())

	assert.True(t, booking(ServiceStatusScheduled, PaymentStatusPending).CanDelete())
	assert.False(t, booking(ServiceStatusCancelled, PaymentStatusFailed).CanDelete())
}

func TestBooking_Reschedule(t *testing.T) {
	assert.NoError(t, booking(ServiceStatusScheduled, PaymentStatusPaid).CanReschedule())
	err := booking(ServiceStatusCompleted, PaymentStatusPending).CanReschedule()
	require.Error(t, err)
	assert.Equal(t, "cannot reschedule booking in state completed/pending", err.Error())
}

func TestBooking_PaidWith(t *testing.T) {
	ref := "chrg_1"
	b := booking(ServiceStatusScheduled, PaymentStatusPaid)
	b.PaymentReference = &ref
	assert.True(t, b.PaidWith("chrg_1"))
	assert.False(t, b.PaidWith("chrg_2"))
}

func TestNewTransaction_CommissionExample(t *testing.T) {
	// 700 charged, processor keeps 20, staff on 60%.
	evt := PaymentEvent{Type: PaymentEventSucceeded, Reference: "R", AmountMinor: 70000, FeeMinor: 2000}
	b := booking(ServiceStatusCompleted, PaymentStatusPaid)
	b.StaffID = 7
	b.Currency = "thb"
	b.PaymentAmount = decimal.NewNullDecimal(evt.NetAmount())

	txn, err := NewTransaction(b, &Staff{ID: 7, CommissionRate: decimal.NewFromInt(60)})
	require.NoError(t, err)
	assert.Equal(t, "680", txn.GrossAmount.String())
	assert.Equal(t, "408.00", txn.CommissionAmount.StringFixed(2))
	assert.True(t, txn.CommissionAmount.Equal(decimal.NewFromInt(408)))
	assert.Equal(t, TransactionStatusCompleted, txn.Status)
	assert.Equal(t, int32(7), txn.StaffID)
}

func TestNewTransaction_RequiresPayment(t *testing.T) {
	_, err := NewTransaction(booking(ServiceStatusScheduled, PaymentStatusPending), nil)
	assert.Error(t, err)

	b := booking(ServiceStatusScheduled, PaymentStatusPaid)
	_, err = NewTransaction(b, nil)
	assert.ErrorContains(t, err, "no payment amount")
}

func TestCommission_Rounding(t *testing.T) {
	c := Commission(decimal.RequireFromString("33.33"), decimal.RequireFromString("12.5"))
	assert.Equal(t, "4.17", c.StringFixed(2))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "700", AmountFromMinor(70000).String())
	assert.Equal(t, int64(1999), AmountToMinor(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(1000), AmountToMinor(decimal.RequireFromString("9.995")))
}

func TestPaymentEvent_Validate(t *testing.T) {
	ok := PaymentEvent{Type: PaymentEventSucceeded, Reference: "R", AmountMinor: 100, Metadata: PaymentMetadata{BookingID: "b"}}
	assert.NoError(t, ok.Validate())

	bad := PaymentEvent{Type: "refunded", AmountMinor: 100, FeeMinor: 100}
	err := bad.Validate()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)

	// correlation keys are optional; a miss is handled downstream
	foreign := PaymentEvent{Type: PaymentEventSucceeded, Reference: "R", AmountMinor: 100}
	assert.NoError(t, foreign.Validate())

	failed := PaymentEvent{Type: PaymentEventFailed, Reference: "R", Metadata: PaymentMetadata{InvoiceNumber: "INV-1"}}
	assert.NoError(t, failed.Validate())
}

func TestMessage_ReferencesCustomer(t *testing.T) {
	assert.False(t, (&Message{Subject: "Rota for March", HTML: "<p>Team meeting at 9</p>"}).ReferencesCustomer())
	assert.True(t, (&Message{CustomerName: "Dana"}).ReferencesCustomer())
	assert.True(t, (&Message{BookingID: "b-1"}).ReferencesCustomer())
	assert.True(t, (&Message{Subject: "Receipt for INV-20260304-0001"}).ReferencesCustomer())
	assert.True(t, (&Message{HTML: "<p>Booking 0b6f8a8e-5d7c-4a55-9f3e-0f0f2a3c7d11 is paid</p>"}).ReferencesCustomer())
	assert.True(t, (&Message{Text: "ref inv-20260304-0001"}).ReferencesCustomer())
}

func TestRecipients_UnmarshalJSON(t *testing.T) {
	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"to":"a@x.com","subject":"s","html":"h"}`), &m))
	assert.Equal(t, Recipients{"a@x.com"}, m.To)

	require.NoError(t, json.Unmarshal([]byte(`{"to":["a@x.com","b@x.com"]}`), &m))
	assert.Equal(t, Recipients{"a@x.com", "b@x.com"}, m.To)

	assert.Error(t, json.Unmarshal([]byte(`{"to":42}`), &m))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("week")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, p)
	_, err = ParsePeriod("year")
	assert.Error(t, err)
}
