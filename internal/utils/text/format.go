// Package text provides stateless string-formatting primitives for
// notification copy: date ranges, location summaries, display-name truncation,
// and the parenthesized trip context suffix.
//
// Every function in this package fails open: malformed dates, missing names,
// and empty inputs degrade to an empty string or a fallback label, never an
// error. Producing slightly-degraded copy is preferable to failing to notify.
package text

import (
	"fmt"
	"strings"
	"time"
)

// Ellipsis is the marker appended to truncated strings.
const Ellipsis = "…"

// maxTripNameLength is the display ceiling for trip names in copy.
const maxTripNameLength = 50

// dateLayouts are the accepted input formats for trip dates, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// parseDate parses a trip date string. The second return value is false when
// the input is empty or matches no accepted layout.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDateRange renders a start/end date pair as human-readable copy.
//
//	FormatDateRange("2026-06-10", "")           // "Jun 10, 2026"
//	FormatDateRange("2026-06-10", "2026-06-25") // "Jun 10–Jun 25, 2026"
//	FormatDateRange("2025-12-28", "2026-01-05") // "Dec 28, 2025–Jan 5, 2026"
//
// An absent or unparsable start yields "". An unparsable end falls back to
// single-date formatting of the start. Same-calendar-day ranges collapse to
// the single-date form.
func FormatDateRange(start, end string) string {
	startDate, ok := parseDate(start)
	if !ok {
		return ""
	}

	endDate, ok := parseDate(end)
	if !ok {
		return formatSingleDate(startDate)
	}

	if sameDay(startDate, endDate) {
		return formatSingleDate(startDate)
	}

	if startDate.Year() == endDate.Year() {
		return fmt.Sprintf("%s–%s", startDate.Format("Jan 2"), endDate.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("%s–%s", startDate.Format("Jan 2, 2006"), endDate.Format("Jan 2, 2006"))
}

func formatSingleDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// FormatLocationSummary summarizes an ordered location list. Up to three
// locations are comma-joined; longer lists show the first two plus a
// "+N more" suffix. Empty input yields "".
func FormatLocationSummary(locations []string) string {
	if len(locations) == 0 {
		return ""
	}
	if len(locations) <= 3 {
		return strings.Join(locations, ", ")
	}
	return fmt.Sprintf("%s +%d more", strings.Join(locations[:2], ", "), len(locations)-2)
}

// FormatTripDisplayName returns the trip name suitable for copy, falling back
// to "your trip" when absent. Names longer than 50 characters are truncated
// to 47 characters plus an ellipsis marker.
func FormatTripDisplayName(name string) string {
	if name == "" {
		return "your trip"
	}
	return Truncate(name, maxTripNameLength)
}

// Truncate shortens text to at most maxLength characters, replacing the tail
// with an ellipsis marker. Character counts are rune-based so multi-byte
// names truncate cleanly. At least one character of the original is retained.
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	keep := maxLength - 3
	if keep < 1 {
		keep = 1
	}
	return string(runes[:keep]) + Ellipsis
}

// BuildTripContext composes the parenthesized context suffix appended to
// notification copy, e.g. " (Tokyo, Kyoto • Jun 10–Jun 25, 2026)". Only the
// non-empty parts are joined with a middle-dot separator; when both the
// location summary and the date range are empty it returns "".
func BuildTripContext(trip TripFacts) string {
	location := FormatLocationSummary(trip.Locations)
	dates := FormatDateRange(trip.StartDate, trip.EndDate)

	var parts []string
	if location != "" {
		parts = append(parts, location)
	}
	if dates != "" {
		parts = append(parts, dates)
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s)", strings.Join(parts, " • "))
}

// TripFacts is the subset of trip context this package formats. It mirrors
// the domain TripContext without importing the entity package, keeping the
// formatters dependency-free.
type TripFacts struct {
	Locations []string
	StartDate string
	EndDate   string
}
