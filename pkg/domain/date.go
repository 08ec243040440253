package domain

import (
	"time"

	dErrors "comphub/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form. Date columns carry no time or
// zone component, and the string form is the canonical one that appears in
// audit diffs.
type Date string

// ParseDate validates s as a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid date %q, want YYYY-MM-DD", s)
	}
	return Date(s), nil
}

// DateOf converts a time to its calendar date.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// Time returns the date at midnight UTC. Invalid dates return the zero time;
// construct dates through ParseDate to avoid that.
func (d Date) Time() time.Time {
	t, _ := time.Parse(dateLayout, string(d))
	return t
}

// EndOfMonth snaps the date to the last day of its month. Lease end dates are
// stored month-granular, so any day within the month means the same term.
func (d Date) EndOfMonth() Date {
	t := d.Time()
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return DateOf(firstOfNext.AddDate(0, 0, -1))
}
