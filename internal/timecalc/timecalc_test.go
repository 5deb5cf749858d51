package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/trivial-time-reconciler/internal/timecalc"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{90, "1m"},
		{1800, "30m"},
		{3600, "1h 0m"},
		{3661, "1h 1m"},
		{5400, "1h 30m"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDuration(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		wantDay string
		wantErr bool
	}{
		{"2025-06-23 10:15:00", "2025-06-23", false},
		{"2025-06-23T10:15:00Z", "2025-06-23", false},
		{"2025-06-23T10:15:00.123+02:00", "2025-06-23", false},
		{"2025-06-23T10:15:00", "2025-06-23", false},
		{"2025-06-23", "2025-06-23", false},
		{"", "", true},
		{"yesterday", "", true},
	}
	for _, tt := range tests {
		got, err := timecalc.ParseTimestamp(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimestamp(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got.Format("2006-01-02") != tt.wantDay {
			t.Errorf("ParseTimestamp(%q) day = %s, want %s", tt.in, got.Format("2006-01-02"), tt.wantDay)
		}
	}
}

func TestFormatTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 23, 10, 15, 0, 0, time.Local)
	got, err := timecalc.ParseTimestamp(timecalc.FormatTimestamp(ts))
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if !got.Equal(ts) {
		t.Errorf("round trip = %v, want %v", got, ts)
	}
}

func TestCurrentMonth(t *testing.T) {
	now := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	from, to := timecalc.CurrentMonth(now)
	if want := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("CurrentMonth from = %v, want %v", from, want)
	}
	if !to.Equal(now) {
		t.Errorf("CurrentMonth to = %v, want %v", to, now)
	}
}

func TestPreviousMonth(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	from, to := timecalc.PreviousMonth(now)
	if want := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("PreviousMonth from = %v, want %v", from, want)
	}
	if want := time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC); !to.Equal(want) {
		t.Errorf("PreviousMonth to = %v, want %v", to, want)
	}

	// January rolls back into the previous year.
	from, _ = timecalc.PreviousMonth(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	if want := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("PreviousMonth(January) from = %v, want %v", from, want)
	}
}

func TestLookback(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	from, to := timecalc.Lookback(now, 1, 5)
	if want := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("Lookback from = %v, want %v", from, want)
	}
	if !to.Equal(now) {
		t.Errorf("Lookback to = %v, want %v", to, now)
	}
}

func TestDateRange(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	from, to, err := timecalc.DateRange("2026-03-01", "2026-03-10", now)
	if err != nil {
		t.Fatalf("DateRange: %v", err)
	}
	if want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("from = %v, want %v", from, want)
	}
	if want := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC); !to.Equal(want) {
		t.Errorf("to = %v, want %v", to, want)
	}

	_, to, err = timecalc.DateRange("2026-03-01", "", now)
	if err != nil {
		t.Fatalf("DateRange open end: %v", err)
	}
	if want := time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC); !to.Equal(want) {
		t.Errorf("open end to = %v, want %v", to, want)
	}

	if _, _, err := timecalc.DateRange("2026-03-10", "2026-03-01", now); err == nil {
		t.Error("expected error for reversed range")
	}
	if _, _, err := timecalc.DateRange("03/01/2026", "", now); err == nil {
		t.Error("expected error for bad layout")
	}
}

func TestStartEndOfDay(t *testing.T) {
	ts := time.Date(2026, 2, 27, 13, 45, 10, 0, time.UTC)
	if got := timecalc.StartOfDay(ts); !got.Equal(time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartOfDay = %v", got)
	}
	if got := timecalc.EndOfDay(ts); !got.Equal(time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("EndOfDay = %v", got)
	}
}
