package domain

import "github.com/shopspring/decimal"

// Staff is owned by the user-management service; this service only reads it.
type Staff struct {
	ID             int32           `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone,omitempty"`
	CommissionRate decimal.Decimal `json:"commission_rate"` // percent, e.g. 60 for 60%
	DailyTarget    decimal.Decimal `json:"daily_target"`
	WeeklyTarget   decimal.Decimal `json:"weekly_target"`
	MonthlyTarget  decimal.Decimal `json:"monthly_target"`
	Active         bool            `json:"active"`
}

// Target returns the staff member's target for a period.
func (s *Staff) Target(p Period) decimal.Decimal {
	switch p {
	case PeriodDay:
		return s.DailyTarget
	case PeriodWeek:
		return s.WeeklyTarget
	case PeriodMonth:
		return s.MonthlyTarget
	}
	return decimal.Zero
}
