package eligibility

import "time"

// QuietWindow is a recipient-local time-of-day window during which SMS
// delivery is deferred rather than sent or discarded. Windows may wrap
// midnight (e.g. 22:00–07:00).
type QuietWindow struct {
	// StartHour/StartMinute and EndHour/EndMinute bound the window in the
	// recipient's local time. The window is [start, end).
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int

	// Location is the recipient's time zone. Nil means UTC.
	Location *time.Location
}

// loc returns the window's time zone, defaulting to UTC.
func (w QuietWindow) loc() *time.Location {
	if w.Location != nil {
		return w.Location
	}
	return time.UTC
}

// minutesOfDay converts a clock time to minutes since local midnight.
func minutesOfDay(hour, minute int) int {
	return hour*60 + minute
}

// Contains reports whether now falls inside the quiet window, handling
// windows that wrap midnight.
func (w QuietWindow) Contains(now time.Time) bool {
	local := now.In(w.loc())
	cur := minutesOfDay(local.Hour(), local.Minute())
	start := minutesOfDay(w.StartHour, w.StartMinute)
	end := minutesOfDay(w.EndHour, w.EndMinute)

	if start == end {
		return false
	}
	if start < end {
		return cur >= start && cur < end
	}
	// Wraps midnight: inside if after start or before end.
	return cur >= start || cur < end
}

// NextEligibleAt computes the earliest time at or after now that falls
// outside the quiet window. When now is already outside the window it returns
// now unchanged. This replaces blind periodic re-checking: the retry
// scheduler stamps the returned time onto the deferred operation so the
// processing pass naturally skips it until the window ends.
func (w QuietWindow) NextEligibleAt(now time.Time) time.Time {
	if !w.Contains(now) {
		return now
	}

	local := now.In(w.loc())
	end := time.Date(local.Year(), local.Month(), local.Day(),
		w.EndHour, w.EndMinute, 0, 0, w.loc())

	// For a wrapping window evaluated after the start, or any window whose
	// end already passed today, the nearest end is tomorrow's.
	if !end.After(local) {
		end = end.AddDate(0, 0, 1)
	}
	return end
}
