// Package pathutil normalizes URL paths for metrics labels.
package pathutil

import "regexp"

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// idSegment matches a numeric ID or a UUID path segment.
const idSegment = `(\d+|[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})`

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/notifications/` + idSegment + `$`), Template: "/notifications/:id"},
	{Pattern: regexp.MustCompile(`^/notifications/` + idSegment + `/deliveries$`), Template: "/notifications/:id/deliveries"},
	{Pattern: regexp.MustCompile(`^/trips/` + idSegment + `$`), Template: "/trips/:id"},
	{Pattern: regexp.MustCompile(`^/trips/` + idSegment + `/recipients$`), Template: "/trips/:id/recipients"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label
// cardinality explosion. It converts paths containing IDs (numeric or UUID)
// to template form; static paths are returned unchanged.
//
// Examples:
//
//	NormalizePath("/notifications/123")      // "/notifications/:id"
//	NormalizePath("/notifications/dispatch") // "/notifications/dispatch" (unchanged)
//	NormalizePath("/healthz")                // "/healthz" (unchanged)
func NormalizePath(path string) string {
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}
