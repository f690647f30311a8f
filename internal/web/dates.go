package web

import (
	"strings"
	"time"
)

// DateFormatMessage is the validation message for ParseDate failures.
const DateFormatMessage = "must be an RFC3339 timestamp or YYYY-MM-DD"

// ParseDate accepts RFC3339 or a bare YYYY-MM-DD (UTC). With endOfDay a bare
// date is moved to the last instant of that day so range ends are inclusive.
func ParseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// DateRange reads the optional startDate/endDate query parameters.
func DateRange(q interface{ Get(string) string }) (from, to *time.Time, errs []FieldError) {
	if s := q.Get("startDate"); s != "" {
		t, err := ParseDate(s, false)
		if err != nil {
			errs = append(errs, FieldError{Field: "startDate", Message: DateFormatMessage})
		} else {
			from = &t
		}
	}
	if s := q.Get("endDate"); s != "" {
		t, err := ParseDate(s, true)
		if err != nil {
			errs = append(errs, FieldError{Field: "endDate", Message: DateFormatMessage})
		} else {
			to = &t
		}
	}
	if from != nil && to != nil && to.Before(*from) {
		errs = append(errs, FieldError{Field: "endDate", Message: "must not be before startDate"})
	}
	return from, to, errs
}
