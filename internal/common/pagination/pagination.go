// Package pagination implements offset pagination for the delivery history
// endpoint: query parameter parsing with configurable bounds, the
// offset/total-pages arithmetic, and the paginated response envelope.
package pagination

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
)

// Config bounds what a client may request per page.
type Config struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns the built-in bounds: page 1, 20 records per page,
// 100 records at most.
func DefaultConfig() Config {
	return Config{DefaultPage: 1, DefaultLimit: 20, MaxLimit: 100}
}

// LoadFromEnv reads PAGINATION_DEFAULT_PAGE, PAGINATION_DEFAULT_LIMIT and
// PAGINATION_MAX_LIMIT, keeping the DefaultConfig value for any variable
// that is unset or not an integer.
func LoadFromEnv() Config {
	cfg := DefaultConfig()
	cfg.DefaultPage = envInt("PAGINATION_DEFAULT_PAGE", cfg.DefaultPage)
	cfg.DefaultLimit = envInt("PAGINATION_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.MaxLimit = envInt("PAGINATION_MAX_LIMIT", cfg.MaxLimit)
	return cfg
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// Params is the page selection a client asked for. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// ParseQueryParams reads the "page" and "limit" query parameters, falling
// back to the configured defaults when absent. A present-but-invalid value
// is an error rather than a silent fallback so clients learn about typos.
func ParseQueryParams(r *http.Request, cfg Config) (Params, error) {
	params := Params{Page: cfg.DefaultPage, Limit: cfg.DefaultLimit}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		params.Page = page
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > cfg.MaxLimit {
			return params, fmt.Errorf("invalid query parameter: limit must be between 1 and %d", cfg.MaxLimit)
		}
		params.Limit = limit
	}
	return params, nil
}
