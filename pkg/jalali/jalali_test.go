package jalali

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDateNowruz(t *testing.T) {
	// 1403-01-01 began on 20 March 2024.
	got := FormatDate(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "1403-01-01", got)
}

func TestParseDateRoundTrip(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, date := range dates {
		parsed, err := ParseDate(FormatDate(date))
		require.NoError(t, err)
		assert.Equal(t, date.Format("2006-01-02"), parsed.Format("2006-01-02"))
	}
}

func TestParseDateInvalid(t *testing.T) {
	_, err := ParseDate("not-a-date")
	assert.Error(t, err)
	_, err = ParseDate("1403-13-01")
	assert.Error(t, err)
}
