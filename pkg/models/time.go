package models

import (
	"fmt"
	"strings"
	"time"
)

// wireTimeLayout is the ISO-8601 form the service uses for message
// timestamps, e.g. 2020-08-28T00:21:32.024Z.
const wireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// WireTime marshals as an ISO-8601 string with millisecond precision.
type WireTime time.Time

func (t WireTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(wireTimeLayout) + `"`), nil
}

func (t *WireTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*t = WireTime(time.Time{})
		return nil
	}
	// RFC3339 parsing accepts any fractional-second precision.
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	*t = WireTime(parsed)
	return nil
}
