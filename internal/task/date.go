package task

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date kept in its ISO YYYY-MM-DD form. The zero value
// means "no due date". It carries no timezone.
type Date string

// ParseDate validates s and returns it as a Date. An empty string is the zero Date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date(s), nil
}

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dateLayout))
}

// Today returns the current local calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// IsZero reports whether no date is set.
func (d Date) IsZero() bool { return d == "" }

// Valid reports whether d is empty or a well-formed ISO date.
func (d Date) Valid() bool {
	_, err := ParseDate(string(d))
	return err == nil
}

// String returns the ISO form, or "" when unset.
func (d Date) String() string { return string(d) }

// Before reports whether d falls strictly before other. Unset dates are never before anything.
func (d Date) Before(other Date) bool {
	if d.IsZero() || other.IsZero() {
		return false
	}
	// ISO dates order lexically.
	return d < other
}
