package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueStandardFrequencies(t *testing.T) {
	base := date(2024, time.March, 10)

	tests := []struct {
		frequency string
		want      time.Time
	}{
		{Weekly, date(2024, time.March, 17)},
		{Monthly, date(2024, time.April, 10)},
		{Quarterly, date(2024, time.June, 10)},
		{Biannual, date(2024, time.September, 10)},
		{Annual, date(2025, time.March, 10)},
		{Seasonal, date(2024, time.June, 10)},
		{AsNeeded, date(2024, time.September, 10)},
	}

	for _, tt := range tests {
		got := NextDue(tt.frequency, nil, base)
		if !got.Equal(tt.want) {
			t.Errorf("NextDue(%s) = %v, want %v", tt.frequency, got, tt.want)
		}
	}
}

func TestNextDueUnknownFrequencyFallsBackToMonth(t *testing.T) {
	base := date(2024, time.March, 10)
	got := NextDue("FORTNIGHTLY", nil, base)
	want := date(2024, time.April, 10)
	if !got.Equal(want) {
		t.Errorf("NextDue(unknown) = %v, want %v", got, want)
	}
}

func TestNextDueCustomTakesPrecedence(t *testing.T) {
	base := date(2024, time.March, 10)
	got := NextDue(Annual, &Custom{Interval: 10, Unit: UnitDays}, base)
	want := date(2024, time.March, 20)
	if !got.Equal(want) {
		t.Errorf("custom over annual = %v, want %v", got, want)
	}
}

func TestNextDueCustomUnits(t *testing.T) {
	base := date(2024, time.March, 10)

	tests := []struct {
		interval int
		unit     string
		want     time.Time
	}{
		{3, UnitDays, date(2024, time.March, 13)},
		{2, UnitWeeks, date(2024, time.March, 24)},
		{4, UnitMonths, date(2024, time.July, 10)},
	}

	for _, tt := range tests {
		got := NextDue(Monthly, &Custom{Interval: tt.interval, Unit: tt.unit}, base)
		if !got.Equal(tt.want) {
			t.Errorf("custom %d %s = %v, want %v", tt.interval, tt.unit, got, tt.want)
		}
	}
}

func TestNextDueCustomYearRollover(t *testing.T) {
	base := date(2024, time.December, 15)
	got := NextDue("", &Custom{Interval: 2, Unit: UnitMonths}, base)
	want := date(2025, time.February, 15)
	if !got.Equal(want) {
		t.Errorf("year rollover = %v, want %v", got, want)
	}
}

func TestNextDueCustomInvalidUnitFallsBackToFrequency(t *testing.T) {
	base := date(2024, time.March, 10)
	got := NextDue(Weekly, &Custom{Interval: 5, Unit: "hours"}, base)
	want := date(2024, time.March, 17)
	if !got.Equal(want) {
		t.Errorf("invalid unit = %v, want %v", got, want)
	}
}

func TestNextDueAlwaysAfterBase(t *testing.T) {
	base := date(2023, time.January, 31)
	for _, f := range []string{Weekly, Monthly, Quarterly, Biannual, Annual, Seasonal, AsNeeded, "???"} {
		got := NextDue(f, nil, base)
		if !got.After(base) {
			t.Errorf("NextDue(%s) = %v, not after base %v", f, got, base)
		}
	}
	for _, u := range []string{UnitDays, UnitWeeks, UnitMonths} {
		for interval := 1; interval <= 24; interval++ {
			got := NextDue("", &Custom{Interval: interval, Unit: u}, base)
			if !got.After(base) {
				t.Errorf("NextDue(custom %d %s) = %v, not after base %v", interval, u, got, base)
			}
		}
	}
}
