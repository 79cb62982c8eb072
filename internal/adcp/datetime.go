package adcp

import (
	"fmt"
	"time"
)

// AsapLiteral is the only non-ISO8601 value accepted for start_time on
// create/update media buy.
const AsapLiteral = "asap"

// ParseWireTime parses a *_time / *_after / *_before field. allowAsap
// permits the literal "asap" (only valid for create/update start_time).
// Naive datetimes (no explicit offset) are rejected by name per the
// spec's timezone-aware invariant.
func ParseWireTime(field, value string, allowAsap bool) (time.Time, bool, error) {
	if value == AsapLiteral {
		if !allowAsap {
			return time.Time{}, false, fmt.Errorf(`field %q: "asap" is not accepted here`, field)
		}
		return time.Time{}, true, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("field %q: must be ISO-8601 with an explicit timezone%s: %w",
			field, asapHint(allowAsap), err)
	}
	return t, false, nil
}

func asapHint(allowAsap bool) string {
	if allowAsap {
		return ` or the literal "asap"`
	}
	return ""
}

// CoerceLegacyDateOnly promotes a date-only legacy field (start_date /
// end_date, e.g. "2099-02-01") to a UTC midnight timezone-aware
// datetime, per the §4.2 legacy-alias rule.
func CoerceLegacyDateOnly(field, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %q: legacy date-only value must be YYYY-MM-DD: %w", field, err)
	}
	return t.UTC(), nil
}
