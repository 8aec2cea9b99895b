// Package reporting derives meeting rosters and time-windowed invitation
// counts. Every calendar boundary is computed by Buckets in one fixed
// reporting zone.
package reporting

import (
	"time"

	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
)

// Window names a reporting range.
type Window string

const (
	WindowAllTime     Window = "all"
	WindowLast15Days  Window = "last15days"
	WindowLast3Months Window = "last3months"
	WindowLast6Months Window = "last6months"
)

const fortnight = 15

// ErrUnknownWindow is returned for window names ParseWindow does not know.
var ErrUnknownWindow = apperr.Validation("window must be one of all, last15days, last3months, last6months")

// ParseWindow parses a window name. Empty means all time.
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case "":
		return WindowAllTime, nil
	case WindowAllTime, WindowLast15Days, WindowLast3Months, WindowLast6Months:
		return w, nil
	}
	return "", ErrUnknownWindow
}

// Bucket is the half-open range [Start, End). A zero Start is unbounded.
type Bucket struct {
	Label string
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the bucket.
func (b Bucket) Contains(t time.Time) bool {
	return (b.Start.IsZero() || !t.Before(b.Start)) && t.Before(b.End)
}

// Buckets splits w into its reporting buckets, oldest first. Day boundaries
// are midnights in loc, and the newest bucket always ends at the start of the
// day after now:
//
//	all          one unbounded bucket
//	last15days   15 daily buckets, today included
//	last3months  6 buckets of 15 days
//	last6months  6 calendar months, the current one included
func Buckets(w Window, now time.Time, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	tomorrow := today.AddDate(0, 0, 1)

	switch w {
	case WindowLast15Days:
		out := make([]Bucket, 0, fortnight)
		for i := fortnight - 1; i >= 0; i-- {
			start := today.AddDate(0, 0, -i)
			out = append(out, Bucket{Label: start.Format(time.DateOnly), Start: start, End: start.AddDate(0, 0, 1)})
		}
		return out

	case WindowLast3Months:
		const n = 6
		out := make([]Bucket, 0, n)
		for i := n; i > 0; i-- {
			start := tomorrow.AddDate(0, 0, -fortnight*i)
			end := start.AddDate(0, 0, fortnight)
			out = append(out, Bucket{Label: start.Format(time.DateOnly), Start: start, End: end})
		}
		return out

	case WindowLast6Months:
		const n = 6
		month := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		out := make([]Bucket, 0, n)
		for i := n - 1; i >= 0; i-- {
			start := month.AddDate(0, -i, 0)
			end := start.AddDate(0, 1, 0)
			if i == 0 {
				end = tomorrow
			}
			out = append(out, Bucket{Label: start.Format("2006-01"), Start: start, End: end})
		}
		return out

	default:
		return []Bucket{{Label: string(WindowAllTime), End: tomorrow}}
	}
}

// Span returns the range covered by buckets.
func Span(buckets []Bucket) Bucket {
	if len(buckets) == 0 {
		return Bucket{}
	}
	return Bucket{Start: buckets[0].Start, End: buckets[len(buckets)-1].End}
}
