package internal

import (
	"fmt"
	"time"

	specs "github.com/growthops/rollup/specs"
)

type DateRange struct {
	start DateRangeStart
	end   DateRangeEnd
}

func NewDateRange(spec specs.DateRangeSpec) (DateRange, error) {
	start, err := NewDateRangeStart(spec.Start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start: %w", err)
	}

	end, err := NewDateRangeEnd(spec.End)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end: %w", err)
	}

	if end.ToTime().Before(start.ToTime()) {
		return DateRange{}, fmt.Errorf("end must not precede start")
	}

	return DateRange{
		start: start,
		end:   end,
	}, nil
}

func (r DateRange) Start() DateRangeStart {
	return r.start
}

func (r DateRange) End() DateRangeEnd {
	return r.end
}

// Days returns the inclusive day count of the range. A single-day range is 1.
func (r DateRange) Days() int {
	return int(r.end.ToTime().Sub(r.start.ToTime())/(24*time.Hour)) + 1
}

// Contains reports whether d falls on or between the range bounds.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.start.ToTime()) && !d.After(r.end.ToTime())
}

// ToSpec converts DateRange to specs.DateRangeSpec.
func (r DateRange) ToSpec() specs.DateRangeSpec {
	return specs.DateRangeSpec{
		Start: r.start.ToTime(),
		End:   r.end.ToTime(),
	}
}

type DateRangeStart struct {
	value time.Time
}

func NewDateRangeStart(value time.Time) (DateRangeStart, error) {
	if value.IsZero() {
		return DateRangeStart{}, fmt.Errorf("start is required")
	}
	return DateRangeStart{value: truncateToDate(value)}, nil
}

func (t DateRangeStart) ToTime() time.Time {
	return t.value
}

type DateRangeEnd struct {
	value time.Time
}

func NewDateRangeEnd(value time.Time) (DateRangeEnd, error) {
	if value.IsZero() {
		return DateRangeEnd{}, fmt.Errorf("end is required")
	}
	return DateRangeEnd{value: truncateToDate(value)}, nil
}

func (t DateRangeEnd) ToTime() time.Time {
	return t.value
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
