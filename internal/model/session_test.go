package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDurationHours(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		start   Clock
		end     Clock
		want    float64
		wantErr error
	}{
		{name: "hour and a half", start: NewClock(9, 0), end: NewClock(10, 30), want: 1.5},
		{name: "afternoon", start: NewClock(13, 0), end: NewClock(14, 30), want: 1.5},
		{name: "quarter hour", start: NewClock(8, 0), end: NewClock(8, 15), want: 0.25},
		{name: "equal bounds", start: NewClock(9, 0), end: NewClock(9, 0), wantErr: ErrInvalidTimeRange},
		{name: "reversed bounds", start: NewClock(23, 0), end: NewClock(1, 0), wantErr: ErrInvalidTimeRange},
		{name: "out of day", start: NewClock(9, 0), end: NewClock(25, 0), wantErr: ErrInvalidClock},
		{name: "seconds in end", start: NewClock(9, 0), end: NewClock(9, 0) + Clock(45*time.Second), wantErr: ErrInvalidClock},
		{name: "seconds in start", start: NewClock(10, 0) + Clock(59*time.Second), end: NewClock(10, 30), wantErr: ErrInvalidClock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeDurationHours(date, tt.start, tt.end)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSessionDurationMinutes(t *testing.T) {
	s := &Session{StartTime: NewClock(13, 0), EndTime: NewClock(14, 30)}
	minutes, err := s.DurationMinutes()
	require.NoError(t, err)
	assert.Equal(t, 90, minutes)
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, NewClock(9, 30), c)
	assert.Equal(t, "09:30", c.String())

	c, err = ParseClock("14:05:00")
	require.NoError(t, err)
	assert.Equal(t, NewClock(14, 5), c)

	_, err = ParseClock("9h30")
	assert.ErrorIs(t, err, ErrInvalidClock)

	_, err = ParseClock("09:00:45")
	assert.ErrorIs(t, err, ErrInvalidClock)
}

func TestSessionStatusValid(t *testing.T) {
	for _, s := range []SessionStatus{"scheduled", "completed", "cancelled", "rescheduled", "absent"} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, SessionStatus("done").Valid())
	assert.False(t, SessionStatus("").Valid())
}

func TestSessionStartsAt(t *testing.T) {
	s := &Session{Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), StartTime: NewClock(18, 45)}
	assert.Equal(t, time.Date(2026, 3, 10, 18, 45, 0, 0, time.UTC), s.StartsAt())
}

func TestClockText(t *testing.T) {
	text, err := NewClock(9, 5).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "09:05", string(text))

	var c Clock
	require.NoError(t, c.UnmarshalText([]byte("13:30")))
	assert.Equal(t, NewClock(13, 30), c)
	assert.Error(t, c.UnmarshalText([]byte("noon")))
}
