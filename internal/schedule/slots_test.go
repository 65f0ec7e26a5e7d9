package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"10:30:00", 630, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9:00", 0, true},
		{"morning", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, m := range []int{0, 1, 59, 60, 540, 1439} {
		parsed, err := ParseClock(FormatClock(m))
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}

func TestGenerateSplitsWindowIntoFullSlots(t *testing.T) {
	slots, err := Generate("09:00", "11:00", 30)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	expected := []Slot{
		{Start: "09:00", End: "09:30"},
		{Start: "09:30", End: "10:00"},
		{Start: "10:00", End: "10:30"},
		{Start: "10:30", End: "11:00"},
	}
	assert.Equal(t, expected, slots)
}

func TestGenerateDropsTrailingRemainder(t *testing.T) {
	slots, err := Generate("09:00", "10:50", 30)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "10:30", slots[2].End)
}

func TestGenerateContiguousAndNonOverlapping(t *testing.T) {
	slots, err := Generate("08:15", "17:00", 45)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	for i := 1; i < len(slots); i++ {
		assert.Equal(t, slots[i-1].End, slots[i].Start, "slots must be contiguous")
	}

	from, _ := ParseClock("08:15")
	to, _ := ParseClock("17:00")
	assert.Len(t, slots, (to-from)/45)

	last, err := ParseClock(slots[len(slots)-1].End)
	require.NoError(t, err)
	assert.LessOrEqual(t, last, to)
}

func TestGenerateDeterministic(t *testing.T) {
	first, err := Generate("09:00", "12:00", 20)
	require.NoError(t, err)
	second, err := Generate("09:00", "12:00", 20)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	_, err := Generate("11:00", "09:00", 30)
	assert.Error(t, err)

	_, err = Generate("09:00", "09:00", 30)
	assert.Error(t, err)

	_, err = Generate("09:00", "11:00", 0)
	assert.Error(t, err)

	_, err = Generate("09:00", "11:00", -15)
	assert.Error(t, err)
}

func TestGenerateWindowShorterThanDuration(t *testing.T) {
	slots, err := Generate("09:00", "09:20", 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestOverlaps(t *testing.T) {
	nine, _ := ParseClock("09:00")
	ten, _ := ParseClock("10:00")
	tenThirty, _ := ParseClock("10:30")
	eleven, _ := ParseClock("11:00")
	eleven30, _ := ParseClock("11:30")

	// contained
	assert.True(t, Overlaps(nine, eleven, ten, tenThirty))
	// partial
	assert.True(t, Overlaps(nine, tenThirty, ten, eleven))
	// identical
	assert.True(t, Overlaps(nine, eleven, nine, eleven))
	// boundary touch is not an overlap
	assert.False(t, Overlaps(nine, eleven, eleven, eleven30))
	assert.False(t, Overlaps(eleven, eleven30, nine, eleven))
	// disjoint
	assert.False(t, Overlaps(nine, ten, tenThirty, eleven))
}
