package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriod_Contains(t *testing.T) {
	p := MonthPeriod(time.Date(2026, time.March, 17, 10, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), p.From)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), p.To)

	assert.True(t, p.Contains(p.From))
	assert.True(t, p.Contains(p.To.Add(-time.Nanosecond)))
	assert.False(t, p.Contains(p.To))
	assert.False(t, p.Contains(p.From.Add(-time.Second)))

	var allTime Period
	assert.True(t, allTime.IsZero())
	assert.True(t, allTime.Contains(time.Time{}))
	assert.True(t, allTime.Contains(time.Now()))
}

func TestPreviousMonthPeriod(t *testing.T) {
	p := PreviousMonthPeriod(time.Date(2026, time.January, 1, 6, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), p.From)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), p.To)
	assert.False(t, p.IsZero())
}

func TestPeriod_Validate(t *testing.T) {
	start := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, Period{}.Validate())
	assert.NoError(t, Period{From: start}.Validate())
	assert.NoError(t, Period{From: start, To: start.Add(time.Hour)}.Validate())

	err := Period{From: start, To: start}.Validate()
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "2026-05-01T00:00:00Z..-", Period{From: start}.String())
}
