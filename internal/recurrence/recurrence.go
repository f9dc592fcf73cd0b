package recurrence

import "time"

// Standard task frequencies.
const (
	Weekly    = "WEEKLY"
	Monthly   = "MONTHLY"
	Quarterly = "QUARTERLY"
	Biannual  = "BIANNUAL"
	Annual    = "ANNUAL"
	Seasonal  = "SEASONAL"
	AsNeeded  = "AS_NEEDED"
)

// Custom recurrence units.
const (
	UnitDays   = "days"
	UnitWeeks  = "weeks"
	UnitMonths = "months"
)

// Custom is a user-specified {interval, unit} override of the standard
// frequency.
type Custom struct {
	Interval int
	Unit     string
}

// ValidFrequency reports whether f is one of the standard frequencies.
func ValidFrequency(f string) bool {
	switch f {
	case Weekly, Monthly, Quarterly, Biannual, Annual, Seasonal, AsNeeded:
		return true
	}
	return false
}

// ValidUnit reports whether u is a known custom recurrence unit.
func ValidUnit(u string) bool {
	switch u {
	case UnitDays, UnitWeeks, UnitMonths:
		return true
	}
	return false
}

// NextDue returns the next due date after base. A custom recurrence takes
// precedence over the frequency; an unrecognized frequency falls back to one
// month. Month and year offsets use calendar arithmetic, so day-of-month is
// preserved across year rollover (2024-12-15 + 2 months = 2025-02-15).
func NextDue(frequency string, custom *Custom, base time.Time) time.Time {
	if custom != nil && custom.Interval > 0 {
		switch custom.Unit {
		case UnitDays:
			return base.AddDate(0, 0, custom.Interval)
		case UnitWeeks:
			return base.AddDate(0, 0, 7*custom.Interval)
		case UnitMonths:
			return base.AddDate(0, custom.Interval, 0)
		}
	}

	switch frequency {
	case Weekly:
		return base.AddDate(0, 0, 7)
	case Quarterly, Seasonal:
		return base.AddDate(0, 3, 0)
	case Biannual, AsNeeded:
		return base.AddDate(0, 6, 0)
	case Annual:
		return base.AddDate(1, 0, 0)
	case Monthly:
		return base.AddDate(0, 1, 0)
	default:
		return base.AddDate(0, 1, 0)
	}
}
