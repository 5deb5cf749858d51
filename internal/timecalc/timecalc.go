package timecalc

import (
	"fmt"
	"time"
)

// TimestampLayout is the zone-less layout used in snapshot files.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the layout of period bounds and --from/--to flags.
const DateLayout = "2006-01-02"

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatTimestamp renders t in local time using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.In(time.Local).Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout (interpreted in local time) as well
// as RFC 3339 with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{TimestampLayout, "2006-01-02T15:04:05", DateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", s)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// CurrentMonth returns the first day of t's month through t.
func CurrentMonth(t time.Time) (time.Time, time.Time) {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()), t
}

// PreviousMonth returns the first and the last second of the month before t.
func PreviousMonth(t time.Time) (time.Time, time.Time) {
	firstOfThis := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	from := firstOfThis.AddDate(0, -1, 0)
	to := firstOfThis.Add(-time.Second)
	return from, to
}

// Lookback returns the range ending at t that starts the given number of
// months and days earlier.
func Lookback(t time.Time, months, days int) (time.Time, time.Time) {
	return t.AddDate(0, -months, -days), t
}

// DateRange parses inclusive YYYY-MM-DD bounds. An empty to means today.
func DateRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	f, err := time.ParseInLocation(DateLayout, from, now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q: %w", from, err)
	}
	end := now
	if to != "" {
		end, err = time.ParseInLocation(DateLayout, to, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q: %w", to, err)
		}
	}
	if end.Before(f) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date %s is before from date %s", end.Format(DateLayout), from)
	}
	return StartOfDay(f), EndOfDay(end), nil
}
