package shared

import "time"

// IST is the shop timezone. Liquor shops settle their day against Indian
// Standard Time regardless of where the server runs.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// rolloverHour/rolloverMinute define the business-day boundary. A shop's
// operating day starts at 11:30 IST, so sales recorded at 11:29 still belong
// to the previous calendar date.
const (
	rolloverHour   = 11
	rolloverMinute = 30
)

// BusinessDate maps a wall-clock instant to the shop's operating date.
// The result is a midnight-UTC date value, suitable for DATE columns.
func BusinessDate(t time.Time) time.Time {
	local := t.In(IST)
	y, m, d := local.Date()
	boundary := time.Date(y, m, d, rolloverHour, rolloverMinute, 0, 0, IST)
	if local.Before(boundary) {
		y, m, d = local.AddDate(0, 0, -1).Date()
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CurrentBusinessDate returns the operating date for time.Now().
func CurrentBusinessDate() time.Time {
	return BusinessDate(time.Now())
}

// ParseBusinessDate parses a YYYY-MM-DD date string into a midnight-UTC date.
func ParseBusinessDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// FormatBusinessDate renders a date value as YYYY-MM-DD.
func FormatBusinessDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DatesBetween returns every date from from to to inclusive. Returns nil when
// to precedes from.
func DatesBetween(from, to time.Time) []time.Time {
	if to.Before(from) {
		return nil
	}
	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
