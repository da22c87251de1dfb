package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	}
	return "", ValidationError{Field: "period", Message: fmt.Sprintf("unknown period %q", s)}
}

// EarningsTotals is the result of aggregating transactions over a range.
type EarningsTotals struct {
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionCount int             `json:"transaction_count"`
	CommissionTotal  decimal.Decimal `json:"commission_total"`
}

// Add merges two totals.
func (t EarningsTotals) Add(o EarningsTotals) EarningsTotals {
	return EarningsTotals{
		TotalAmount:      t.TotalAmount.Add(o.TotalAmount),
		TransactionCount: t.TransactionCount + o.TransactionCount,
		CommissionTotal:  t.CommissionTotal.Add(o.CommissionTotal),
	}
}

// PeriodSummary is computed on demand and never stored.
type PeriodSummary struct {
	StaffID          *int32          `json:"staff_id,omitempty"`
	Period           Period          `json:"period,omitempty"`
	PeriodStart      time.Time       `json:"period_start"`
	PeriodEnd        time.Time       `json:"period_end"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TransactionCount int             `json:"transaction_count"`
	CommissionTotal  decimal.Decimal `json:"commission_total"`
	DailyAverage     decimal.Decimal `json:"daily_average"`
	Target           decimal.Decimal `json:"target"`
	ProgressRatio    *float64        `json:"progress_ratio"` // nil when no target is set
}

// Dashboard bundles the three canonical periods for one staff member or the shop.
type Dashboard struct {
	Day   PeriodSummary `json:"day"`
	Week  PeriodSummary `json:"week"`
	Month PeriodSummary `json:"month"`
}
