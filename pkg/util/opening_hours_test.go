package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"09:00", "09:00:00", false},
		{"9:00", "09:00:00", false},
		{"17:30:15", "17:30:15", false},
		{" 23:59 ", "23:59:00", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeTime(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDayRange(t *testing.T) {
	t.Run("Open range", func(t *testing.T) {
		hours, err := ParseDayRange("09:00-17:00")
		require.NoError(t, err)
		require.NotNil(t, hours)
		assert.False(t, hours.IsClosed)
		assert.Equal(t, "09:00:00", *hours.Open)
		assert.Equal(t, "17:00:00", *hours.Close)
	})

	t.Run("Spaces around dash", func(t *testing.T) {
		hours, err := ParseDayRange("8:30 - 22:00")
		require.NoError(t, err)
		assert.Equal(t, "08:30:00", *hours.Open)
		assert.Equal(t, "22:00:00", *hours.Close)
	})

	t.Run("Closed any case", func(t *testing.T) {
		for _, input := range []string{"closed", "Closed", " CLOSED "} {
			hours, err := ParseDayRange(input)
			require.NoError(t, err)
			require.NotNil(t, hours)
			assert.True(t, hours.IsClosed)
			assert.Nil(t, hours.Open)
			assert.Nil(t, hours.Close)
		}
	})

	t.Run("Empty is omitted", func(t *testing.T) {
		hours, err := ParseDayRange("  ")
		assert.NoError(t, err)
		assert.Nil(t, hours)
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, input := range []string{"9am-5pm", "09:00", "09:00-25:00", "open"} {
			hours, err := ParseDayRange(input)
			assert.ErrorIs(t, err, ErrMalformedDayRange, input)
			assert.Nil(t, hours)
		}
	})
}

func TestWeekdayName(t *testing.T) {
	assert.Equal(t, "Sunday", WeekdayName(0))
	assert.Equal(t, "Monday", WeekdayName(1))
	assert.Equal(t, "Saturday", WeekdayName(6))
	assert.Equal(t, "", WeekdayName(7))
	assert.Equal(t, "", WeekdayName(-1))
}
