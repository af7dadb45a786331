// This file implements the Strategy Pattern for budget period calendars.
// Each period type (weekly, monthly, yearly) has its own calendar that knows
// where a period starts, where it ends and how to step between periods.

package core

import (
	"fmt"
	"time"
)

// Period is the length of a budget plan.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// PeriodCalendar is the strategy interface for period arithmetic.
type PeriodCalendar interface {
	// Start returns the first day of the period containing t.
	Start(t time.Time) time.Time
	// Shift moves a period start n periods forward (negative n moves back).
	Shift(start time.Time, n int) time.Time
}

// WeeklyCalendar starts periods on Monday.
type WeeklyCalendar struct{}

func (WeeklyCalendar) Start(t time.Time) time.Time {
	d := DateOf(t).Time
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func (WeeklyCalendar) Shift(start time.Time, n int) time.Time {
	return start.AddDate(0, 0, 7*n)
}

// MonthlyCalendar starts periods on the first day of the month.
type MonthlyCalendar struct{}

func (MonthlyCalendar) Start(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Shift keeps the day of month of start, clamped to the length of the
// target month: a plan starting on the 31st moves to Feb 28, then Mar 31.
func (MonthlyCalendar) Shift(start time.Time, n int) time.Time {
	return addMonths(start, n)
}

// YearlyCalendar starts periods on January 1st.
type YearlyCalendar struct{}

func (YearlyCalendar) Start(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

func (YearlyCalendar) Shift(start time.Time, n int) time.Time {
	return addMonths(start, 12*n)
}

// addMonths moves t by n months without spilling into the following month
// when the target month is shorter than t's day.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	return first.AddDate(0, 0, min(d, last)-1)
}

var calendars = map[Period]PeriodCalendar{
	Weekly:  WeeklyCalendar{},
	Monthly: MonthlyCalendar{},
	Yearly:  YearlyCalendar{},
}

// GetCalendar returns the calendar for a period type.
func GetCalendar(p Period) (PeriodCalendar, error) {
	cal, ok := calendars[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
	return cal, nil
}

// Validate reports whether the period has a registered calendar.
func (p Period) Validate() error {
	_, err := GetCalendar(p)
	return err
}

// Calendar returns the calendar for p, falling back to monthly for unknown periods.
func (p Period) Calendar() PeriodCalendar {
	if cal, err := GetCalendar(p); err == nil {
		return cal
	}
	return MonthlyCalendar{}
}

// End returns the exclusive end of the period beginning at start.
func (p Period) End(start time.Time) time.Time {
	return p.Calendar().Shift(start, 1)
}
