package services

import (
	"strings"
	"time"

	"github.com/ukydev/weather-history/internal/apperrors"
	"github.com/ukydev/weather-history/internal/models"
)

// DefaultWindowDays is the span filled in when one or both range bounds are missing.
const DefaultWindowDays = 30

// DateRange is an inclusive range of calendar days, each at UTC midnight.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDay accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the UTC
// calendar day it falls on.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(models.DateLayout, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperrors.BadRequest("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return truncateDay(ts), nil
}

// parseOptionalDay returns nil for an empty string.
func parseOptionalDay(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := ParseDay(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ResolveRange fills in missing bounds:
//
//	neither given  -> [today-30, today]
//	only start     -> [start, start+30]
//	only end       -> [end-30, end]
//	both given     -> as is, even when start is after end
func ResolveRange(start, end *time.Time, today time.Time) DateRange {
	var r DateRange
	switch {
	case start == nil && end == nil:
		r.To = truncateDay(today)
		r.From = r.To.AddDate(0, 0, -DefaultWindowDays)
	case end == nil:
		r.From = truncateDay(*start)
		r.To = r.From.AddDate(0, 0, DefaultWindowDays)
	case start == nil:
		r.To = truncateDay(*end)
		r.From = r.To.AddDate(0, 0, -DefaultWindowDays)
	default:
		r.From = truncateDay(*start)
		r.To = truncateDay(*end)
	}
	return r
}

// resolveStrings parses both optional bounds and resolves the range.
func resolveStrings(start, end string, today time.Time) (DateRange, error) {
	from, err := parseOptionalDay(start)
	if err != nil {
		return DateRange{}, err
	}
	to, err := parseOptionalDay(end)
	if err != nil {
		return DateRange{}, err
	}
	return ResolveRange(from, to, today), nil
}
