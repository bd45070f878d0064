package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp accepts the date formats the hospital API emits: RFC 3339,
// zone-less date-times and bare dates. Zone-less values keep their wall
// clock and are placed in a zone only by Anchor.
type Timestamp struct {
	time.Time
	naive bool
}

// naiveLayout is used to write zone-less values back out unchanged.
const naiveLayout = "2006-01-02T15:04:05.999999999"

var timestampLayouts = []string{
	naiveLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

// ParseTimestamp parses s using the accepted layouts. Values without a
// zone are held as a UTC wall clock and marked naive.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{Time: t, naive: true}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Naive reports whether the value carried no zone offset.
func (ts Timestamp) Naive() bool { return ts.naive }

// Anchor returns the instant ts denotes in loc. A naive value is read as
// a wall clock in loc; any other value is returned unchanged.
func (ts Timestamp) Anchor(loc *time.Location) time.Time {
	if !ts.naive || ts.IsZero() {
		return ts.Time
	}
	if loc == nil {
		loc = time.Local
	}
	t := ts.Time
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	if ts.naive {
		return json.Marshal(ts.Format(naiveLayout))
	}
	return json.Marshal(ts.Format(time.RFC3339Nano))
}
