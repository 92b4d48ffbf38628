package month

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_TableTests(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{
			name: "middle of month",
			in:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2024, 2, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "end of january in leap year",
			in:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "end of january in common year",
			in:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "across year",
			in:   time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC),
			n:    2,
			want: time.Date(2025, 2, 28, 23, 59, 0, 0, time.UTC),
		},
		{
			name: "zero months",
			in:   time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
			n:    0,
			want: time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Add(tt.in, tt.n))
		})
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 28, DaysIn(time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 31, DaysIn(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-03-07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDay("2025-03-07T23:30:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDay("07/03/2025")
	assert.ErrorIs(t, err, ErrBadDate)
}

func TestBounds(t *testing.T) {
	from, to, err := Bounds("2024-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), to)

	_, _, err = Bounds("2024-13")
	assert.ErrorIs(t, err, ErrBadMonth)
}
