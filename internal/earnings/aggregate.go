// Package earnings turns transactions into revenue, commission and target
// figures. Everything here is a pure function of its inputs.
package earnings

import (
	"time"

	"github.com/shopspring/decimal"

	"shopbooking-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Aggregate sums completed transactions dated in [start, end). A nil staffID
// means shop-wide. Refunded transactions are excluded.
func Aggregate(txns []domain.Transaction, staffID *int32, start, end time.Time) domain.EarningsTotals {
	totals := domain.EarningsTotals{TotalAmount: decimal.Zero, CommissionTotal: decimal.Zero}
	for i := range txns {
		t := &txns[i]
		if t.Status != domain.TransactionStatusCompleted {
			continue
		}
		if staffID != nil && t.StaffID != *staffID {
			continue
		}
		if t.TransactionDate.Before(start) || !t.TransactionDate.Before(end) {
			continue
		}
		totals.TotalAmount = totals.TotalAmount.Add(t.GrossAmount)
		totals.CommissionTotal = totals.CommissionTotal.Add(t.CommissionAmount)
		totals.TransactionCount++
	}
	return totals
}

// AveragePerPeriod divides total by the number of elapsed periods and
// returns zero when there are none.
func AveragePerPeriod(total decimal.Decimal, periods int) decimal.Decimal {
	if periods <= 0 {
		return decimal.Zero
	}
	return domain.RoundMoney(total.Div(decimal.NewFromInt(int64(periods))))
}

// Progress returns total/target as a percentage with no upper cap, or nil
// when there is no target.
func Progress(total, target decimal.Decimal) *float64 {
	if !target.IsPositive() {
		return nil
	}
	pct, _ := total.Div(target).Mul(hundred).Round(2).Float64()
	return &pct
}

// Summarize builds a PeriodSummary for [start, end) with a daily average over
// the days elapsed as of now.
func Summarize(txns []domain.Transaction, staffID *int32, start, end, now time.Time, target decimal.Decimal) domain.PeriodSummary {
	totals := Aggregate(txns, staffID, start, end)
	return domain.PeriodSummary{
		StaffID:          staffID,
		PeriodStart:      start,
		PeriodEnd:        end,
		TotalRevenue:     totals.TotalAmount,
		TransactionCount: totals.TransactionCount,
		CommissionTotal:  totals.CommissionTotal,
		DailyAverage:     AveragePerPeriod(totals.TotalAmount, ElapsedDays(start, end, now)),
		Target:           target,
		ProgressRatio:    Progress(totals.TotalAmount, target),
	}
}
