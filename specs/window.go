package specs

import (
	"context"
	"fmt"
	"time"
)

// PlanWindows splits a requested date range into the minimum number of
// contiguous fetch windows, each spanning at most maxSpanDays calendar days.
//
// Several upstream analytics APIs cap the queryable date range per request
// (RD Station Analytics: 40 days). The planned windows cover the full range
// with no gaps and no overlaps, ordered oldest to newest; adjacent windows
// meet on consecutive dates. Both bounds of every window are inclusive, so a
// window of maxSpanDays days satisfies End = Start + (maxSpanDays − 1) days.
//
// Returns an error when the range is invalid or maxSpanDays is not positive,
// before any fetch is attempted.
//
// This is the spec-level interface using only primitive types.
// See internal.PlanWindows for the reference implementation.
type PlanWindows func(r DateRangeSpec, maxSpanDays int) ([]FetchWindowSpec, error)

// FetchPage retrieves one page of rows for one fetch window.
//
// Implementations wrap a provider's HTTP pagination: page numbers start at 1
// and HasMore reports whether another page should be requested for the same
// window. Each call must honor ctx cancellation and deadlines — a single
// unresponsive provider must not hang a report indefinitely.
type FetchPage func(ctx context.Context, window FetchWindowSpec, page int) (PageSpec, error)

// FetchWindowSpec describes one sub-range query against a range-limited source.
type FetchWindowSpec struct {
	// Inclusive first date of the window.
	Start time.Time `json:"start"`

	// Inclusive last date of the window.
	//
	// End − Start never exceeds the source's maximum allowed span.
	End time.Time `json:"end"`
}

// PageSpec is one page of provider rows plus a continuation flag.
type PageSpec struct {
	// Rows returned for this page, in provider order.
	Rows []RawRowSpec `json:"rows"`

	// Whether another page should be requested for the same window.
	HasMore bool `json:"hasMore"`
}

// NewDateRange builds an inclusive date range, validating its bounds.
//
// Both bounds are truncated to their calendar date in UTC. Returns an error
// when either bound is the zero time or End precedes Start.
func NewDateRange(start, end time.Time) (DateRangeSpec, error) {
	if start.IsZero() {
		return DateRangeSpec{}, fmt.Errorf("date range: start is required")
	}
	if end.IsZero() {
		return DateRangeSpec{}, fmt.Errorf("date range: end is required")
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return DateRangeSpec{}, fmt.Errorf("date range: end %s precedes start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return DateRangeSpec{Start: start, End: end}, nil
}

// NewSingleDayRange builds a range covering exactly one calendar date.
func NewSingleDayRange(day time.Time) (DateRangeSpec, error) {
	return NewDateRange(day, day)
}
