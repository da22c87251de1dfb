package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/earnings"
	"shopbooking-backend/internal/repository"
)

// ShopTargets are the shop-wide targets used when no staff member is given.
type ShopTargets struct {
	Daily   decimal.Decimal
	Weekly  decimal.Decimal
	Monthly decimal.Decimal
}

func (t ShopTargets) forPeriod(p domain.Period) decimal.Decimal {
	switch p {
	case domain.PeriodDay:
		return t.Daily
	case domain.PeriodWeek:
		return t.Weekly
	case domain.PeriodMonth:
		return t.Monthly
	}
	return decimal.Zero
}

type earningsService struct {
	txnRepo   repository.TransactionRepository
	staffRepo repository.StaffRepository
	calendar  earnings.Calendar
	targets   ShopTargets
	now       func() time.Time
}

func NewEarningsService(
	txnRepo repository.TransactionRepository,
	staffRepo repository.StaffRepository,
	calendar earnings.Calendar,
	targets ShopTargets,
) EarningsService {
	return &earningsService{
		txnRepo:   txnRepo,
		staffRepo: staffRepo,
		calendar:  calendar,
		targets:   targets,
		now:       time.Now,
	}
}

func (s *earningsService) Summary(ctx context.Context, staffID *int32, start, end time.Time) (*domain.PeriodSummary, error) {
	if start.IsZero() || end.IsZero() {
		return nil, invalid("range", "start and end are required")
	}
	if !start.Before(end) {
		return nil, invalid("range", "start must be before end")
	}
	txns, err := s.txnRepo.List(ctx, domain.TransactionFilter{StaffID: staffID, Start: start, End: end})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	summary := earnings.Summarize(txns, staffID, start, end, s.now(), decimal.Zero)
	return &summary, nil
}

func (s *earningsService) PeriodSummary(ctx context.Context, staffID *int32, period domain.Period) (*domain.PeriodSummary, error) {
	now := s.now()
	start, end, err := s.calendar.Bounds(period, now)
	if err != nil {
		return nil, err
	}
	targets, err := s.targetsFor(ctx, staffID)
	if err != nil {
		return nil, err
	}
	txns, err := s.txnRepo.List(ctx, domain.TransactionFilter{StaffID: staffID, Start: start, End: end})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	summary := earnings.Summarize(txns, staffID, start, end, now, targets.forPeriod(period))
	summary.Period = period
	return &summary, nil
}

// Dashboard reads the union of the three periods once and summarizes each.
func (s *earningsService) Dashboard(ctx context.Context, staffID *int32) (*domain.Dashboard, error) {
	now := s.now()
	targets, err := s.targetsFor(ctx, staffID)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := s.calendar.Day(now)
	weekStart, weekEnd := s.calendar.Week(now)
	monthStart, monthEnd := s.calendar.Month(now)

	from, to := monthStart, monthEnd
	if weekStart.Before(from) {
		from = weekStart
	}
	if weekEnd.After(to) {
		to = weekEnd
	}

	txns, err := s.txnRepo.List(ctx, domain.TransactionFilter{StaffID: staffID, Start: from, End: to})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	d := &domain.Dashboard{
		Day:   earnings.Summarize(txns, staffID, dayStart, dayEnd, now, targets.Daily),
		Week:  earnings.Summarize(txns, staffID, weekStart, weekEnd, now, targets.Weekly),
		Month: earnings.Summarize(txns, staffID, monthStart, monthEnd, now, targets.Monthly),
	}
	d.Day.Period, d.Week.Period, d.Month.Period = domain.PeriodDay, domain.PeriodWeek, domain.PeriodMonth
	return d, nil
}

func (s *earningsService) targetsFor(ctx context.Context, staffID *int32) (ShopTargets, error) {
	if staffID == nil {
		return s.targets, nil
	}
	st, err := s.staffRepo.GetByID(ctx, *staffID)
	if errors.Is(err, domain.ErrNotFound) {
		return ShopTargets{}, invalid("staff_id", "unknown staff member")
	}
	if err != nil {
		return ShopTargets{}, err
	}
	return ShopTargets{Daily: st.DailyTarget, Weekly: st.WeeklyTarget, Monthly: st.MonthlyTarget}, nil
}
