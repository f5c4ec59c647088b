package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/svenhofer/timegrid/internal/insights/domain"
)

func TestIntervalMinutes(t *testing.T) {
	start := time.Date(2025, 7, 23, 10, 0, 0, 0, time.UTC)

	end := start.Add(45 * time.Minute)
	assert.Equal(t, 45, domain.IntervalMinutes(start, &end))

	// Open interval contributes nothing.
	assert.Equal(t, 0, domain.IntervalMinutes(start, nil))

	// Inverted interval clamps to zero.
	before := start.Add(-10 * time.Minute)
	assert.Equal(t, 0, domain.IntervalMinutes(start, &before))

	// Seconds round half-up to whole minutes.
	end = start.Add(44*time.Minute + 30*time.Second)
	assert.Equal(t, 45, domain.IntervalMinutes(start, &end))
	end = start.Add(44*time.Minute + 29*time.Second)
	assert.Equal(t, 44, domain.IntervalMinutes(start, &end))
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0h"},
		{-1, "0h"},
		{0.5, "30m"},
		{0.75, "45m"},
		{1, "1h"},
		{2, "2h"},
		{2.25, "2h 15m"},
		{2.5, "2h 30m"},
		{1.999, "2h"},   // 119.94m rounds to 120
		{0.9999, "1h"},  // 59.994m rounds to 60 and carries
		{0.0001, "0h"},  // rounds down to zero minutes
		{0.0084, "1m"},  // just above half a minute
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.FormatHours(tt.hours))
		})
	}
}
