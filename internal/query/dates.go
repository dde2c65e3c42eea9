package query

import (
	"strings"
	"time"
)

const (
	dayStart = "T00:00:00Z"
	dayEnd   = "T23:59:59Z"
)

// NormalizeDate converts a caller-supplied date string into the
// upstream's timestamp format. A bare calendar date (YYYY-MM-DD) gets a
// start-of-day or end-of-day time appended; a full RFC 3339 timestamp
// passes through unchanged. Anything else reports false and the caller
// drops the bound.
func NormalizeDate(in string, endOfDay bool) (string, bool) {
	in = strings.TrimSpace(in)
	if in == "" {
		return "", false
	}

	if len(in) == 10 {
		if _, err := time.Parse("2006-01-02", in); err == nil {
			if endOfDay {
				return in + dayEnd, true
			}
			return in + dayStart, true
		}
	}

	if _, err := time.Parse(time.RFC3339, in); err == nil {
		return in, true
	}

	return "", false
}
