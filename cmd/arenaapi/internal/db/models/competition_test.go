package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompetition_Schedule(t *testing.T) {
	start := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)
	c := &Competition{StartTime: start, EndTime: start.Add(24 * time.Hour)}

	tests := []struct {
		name   string
		now    time.Time
		open   bool
		status string
	}{
		{"before start", start.Add(-time.Minute), false, CompetitionUpcoming},
		{"at start", start, true, CompetitionActive},
		{"running", start.Add(time.Hour), true, CompetitionActive},
		{"at end", c.EndTime, true, CompetitionActive},
		{"after end", c.EndTime.Add(time.Minute), false, CompetitionEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, c.Open(tt.now))
			assert.Equal(t, tt.status, c.StatusAt(tt.now))
		})
	}
}
