package earnings

import (
	"fmt"
	"time"

	"shopbooking-backend/internal/domain"
)

// Calendar computes canonical period boundaries in shop-local time.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday
}

func NewCalendar(loc *time.Location, weekStart time.Weekday) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc, WeekStart: weekStart}
}

func (c Calendar) startOfDay(t time.Time) time.Time {
	t = t.In(c.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.Location)
}

// Day returns [00:00, next 00:00) of the local day containing now.
func (c Calendar) Day(now time.Time) (time.Time, time.Time) {
	start := c.startOfDay(now)
	return start, start.AddDate(0, 0, 1)
}

// Week returns the seven local days containing now, starting on WeekStart.
func (c Calendar) Week(now time.Time) (time.Time, time.Time) {
	day := c.startOfDay(now)
	offset := (int(day.Weekday()) - int(c.WeekStart) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// Month returns the calendar month containing now.
func (c Calendar) Month(now time.Time) (time.Time, time.Time) {
	t := now.In(c.Location)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.Location)
	return start, start.AddDate(0, 1, 0)
}

func (c Calendar) Bounds(p domain.Period, now time.Time) (time.Time, time.Time, error) {
	switch p {
	case domain.PeriodDay:
		s, e := c.Day(now)
		return s, e, nil
	case domain.PeriodWeek:
		s, e := c.Week(now)
		return s, e, nil
	case domain.PeriodMonth:
		s, e := c.Month(now)
		return s, e, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", p)
}

// ElapsedDays counts the days of [start, end) that have begun by now, so a
// week viewed on its third day averages over three days, not seven.
func ElapsedDays(start, end, now time.Time) int {
	if !now.After(start) {
		return 0
	}
	if now.After(end) {
		now = end
	}
	days := 0
	for d := start; d.Before(now); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}
