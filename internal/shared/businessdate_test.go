package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBusinessDateRollover(t *testing.T) {
	before := time.Date(2025, 3, 14, 11, 29, 59, 0, IST)
	require.Equal(t, "2025-03-13", FormatBusinessDate(BusinessDate(before)))

	at := time.Date(2025, 3, 14, 11, 30, 0, 0, IST)
	require.Equal(t, "2025-03-14", FormatBusinessDate(BusinessDate(at)))

	evening := time.Date(2025, 3, 14, 23, 45, 0, 0, IST)
	require.Equal(t, "2025-03-14", FormatBusinessDate(BusinessDate(evening)))

	// Shops trade past midnight; 00:30 IST is still the previous day.
	lateNight := time.Date(2025, 3, 15, 0, 30, 0, 0, IST)
	require.Equal(t, "2025-03-14", FormatBusinessDate(BusinessDate(lateNight)))
}

func TestBusinessDateHandlesOtherZones(t *testing.T) {
	// 06:15 UTC is 11:45 IST, past the boundary.
	utc := time.Date(2025, 6, 1, 6, 15, 0, 0, time.UTC)
	require.Equal(t, "2025-06-01", FormatBusinessDate(BusinessDate(utc)))

	// 05:45 UTC is 11:15 IST, before the boundary.
	utcEarly := time.Date(2025, 6, 1, 5, 45, 0, 0, time.UTC)
	require.Equal(t, "2025-05-31", FormatBusinessDate(BusinessDate(utcEarly)))
}

func TestDatesBetween(t *testing.T) {
	from, _ := ParseBusinessDate("2025-01-30")
	to, _ := ParseBusinessDate("2025-02-02")
	dates := DatesBetween(from, to)
	require.Len(t, dates, 4)
	require.Equal(t, "2025-01-30", FormatBusinessDate(dates[0]))
	require.Equal(t, "2025-02-02", FormatBusinessDate(dates[3]))

	require.Nil(t, DatesBetween(to, from))
}
