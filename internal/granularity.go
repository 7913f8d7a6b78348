package internal

import (
	"fmt"
	"time"
)

type Granularity struct {
	value string
}

func NewGranularity(value string) (Granularity, error) {
	if value == "" {
		return Granularity{}, fmt.Errorf("granularity is required")
	}

	switch value {
	case "week", "month", "quarter", "year":
		// Valid
	default:
		return Granularity{}, fmt.Errorf("invalid granularity: %q", value)
	}

	return Granularity{value: value}, nil
}

func (g Granularity) ToString() string {
	return g.value
}

func (g Granularity) IsWeek() bool {
	return g.value == "week"
}

func (g Granularity) IsMonth() bool {
	return g.value == "month"
}

func (g Granularity) IsQuarter() bool {
	return g.value == "quarter"
}

func (g Granularity) IsYear() bool {
	return g.value == "year"
}

// BucketStart returns the first date of the bucket containing d.
// A date exactly on a bucket boundary belongs to the bucket starting on that
// date: a Monday belongs to the week beginning that Monday.
func (g Granularity) BucketStart(d time.Time) time.Time {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

	switch g.value {
	case "week":
		// ISO week, Monday start. Sunday counts as day 7 of the prior Monday's week.
		weekday := int(d.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return d.AddDate(0, 0, -(weekday - 1))

	case "month":
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)

	case "quarter":
		quarterMonth := time.Month((int(d.Month())-1)/3*3 + 1)
		return time.Date(d.Year(), quarterMonth, 1, 0, 0, 0, 0, time.UTC)

	default: // year
		return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

// NextBucketStart returns the first date of the bucket following the one
// starting at start.
func (g Granularity) NextBucketStart(start time.Time) time.Time {
	switch g.value {
	case "week":
		return start.AddDate(0, 0, 7)
	case "month":
		return start.AddDate(0, 1, 0)
	case "quarter":
		return start.AddDate(0, 3, 0)
	default: // year
		return start.AddDate(1, 0, 0)
	}
}

// Label renders the human-readable identifier for a bucket starting at start.
// Presentation-only; grouping always uses the start date.
func (g Granularity) Label(start time.Time) string {
	switch g.value {
	case "week":
		return "Week of " + start.Format("2006-01-02")
	case "month":
		return start.Format("2006-01")
	case "quarter":
		quarter := (int(start.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", start.Year(), quarter)
	default: // year
		return start.Format("2006")
	}
}
