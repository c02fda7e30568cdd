package finance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date used on the wire.
const DateLayout = "2006-01-02"

// Date is a calendar date. It unmarshals from "2006-01-02" or RFC 3339 and
// marshals to "2006-01-02".
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DatePtr is NewDate returning a pointer, handy for optional fields.
func DatePtr(t time.Time) *Date {
	d := NewDate(t)
	return &d
}

// ParseDate parses "2006-01-02" or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return NewDate(t), nil
}

// OrZero returns the underlying time, or the zero time for a nil date.
func (d *Date) OrZero() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// daysBetween is the signed calendar-day difference end - start.
func daysBetween(start, end time.Time) int {
	s := NewDate(start).Time
	e := NewDate(end).Time
	return int(e.Sub(s).Hours() / 24)
}
