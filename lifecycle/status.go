// Package lifecycle derives a proposal's review status from the age of its
// creation date and writes it into the document header.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Status is a proposal lifecycle stage.
type Status string

// Lifecycle stages in order.
const (
	StatusDraft    Status = "draft"
	StatusLastCall Status = "last call"
	StatusAccepted Status = "accepted"
	StatusFinal    Status = "final"
)

// Age thresholds in days. Intervals are closed below and open above.
const (
	LastCallAfterDays = 14
	AcceptedAfterDays = 28
	FinalAfterDays    = 42
)

const day = 24 * time.Hour

var (
	// ErrMissingDate is returned when the header has no date.
	ErrMissingDate = errors.New("missing date")

	// ErrInvalidDate is returned when the date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
)

// Statuses returns every stage in lifecycle order.
func Statuses() []Status {
	return []Status{StatusDraft, StatusLastCall, StatusAccepted, StatusFinal}
}

// IsStatus reports whether s names a lifecycle stage.
func IsStatus(s string) bool {
	return rank(Status(s)) >= 0
}

// rank is the position of s in the lifecycle, -1 when unknown.
func rank(s Status) int {
	for i, st := range Statuses() {
		if st == s {
			return i
		}
	}
	return -1
}

// StatusForAge maps an age in days to a stage.
func StatusForAge(days float64) Status {
	switch {
	case days >= FinalAfterDays:
		return StatusFinal
	case days >= AcceptedAfterDays:
		return StatusAccepted
	case days >= LastCallAfterDays:
		return StatusLastCall
	default:
		return StatusDraft
	}
}

// AgeInDays returns the fractional number of days between created and ref.
// No calendar rounding is applied.
func AgeInDays(created, ref time.Time) float64 {
	return float64(ref.Sub(created)) / float64(day)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDate parses a header date. Values without a zone are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
