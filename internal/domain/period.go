package domain

import "time"

// Period is a half-open time range [From, To). A zero bound is open.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) IsZero() bool { return p.From.IsZero() && p.To.IsZero() }

func (p Period) Contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && !t.Before(p.To) {
		return false
	}
	return true
}

// MonthPeriod returns the calendar month containing t, in t's location.
func MonthPeriod(t time.Time) Period {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Period{From: from, To: from.AddDate(0, 1, 0)}
}

// PreviousMonthPeriod returns the calendar month before the one containing t.
func PreviousMonthPeriod(t time.Time) Period {
	current := MonthPeriod(t)
	return Period{From: current.From.AddDate(0, -1, 0), To: current.From}
}

// Validate rejects a period whose end is not after its start.
func (p Period) Validate() error {
	if !p.From.IsZero() && !p.To.IsZero() && !p.To.After(p.From) {
		return NewError(KindInvalidInput, "period end must be after its start")
	}
	return nil
}

func (p Period) String() string {
	from, to := "-", "-"
	if !p.From.IsZero() {
		from = p.From.Format(time.RFC3339)
	}
	if !p.To.IsZero() {
		to = p.To.Format(time.RFC3339)
	}
	return from + ".." + to
}
