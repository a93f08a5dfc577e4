package handlers

import (
	"fmt"
	"time"
)

// parseDate accepts the date-only wire format used by the forms, with a
// fallback to RFC 3339 for clients that send full timestamps. An empty
// string means "not set".
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid date: %q", value)
}
