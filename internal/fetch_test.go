package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthops/rollup/internal/infra"
	specs "github.com/growthops/rollup/specs"
)

func TestPlanWindows(t *testing.T) {
	t.Run("splits a range wider than the span cap", func(t *testing.T) {
		windows, err := PlanWindows(specs.DateRangeSpec{
			Start: date(2024, time.January, 1),
			End:   date(2024, time.March, 15),
		}, 40)

		require.NoError(t, err)
		require.Len(t, windows, 2)
		assert.Equal(t, date(2024, time.January, 1), windows[0].Start)
		assert.Equal(t, date(2024, time.February, 9), windows[0].End, "40 inclusive days")
		assert.Equal(t, date(2024, time.February, 10), windows[1].Start)
		assert.Equal(t, date(2024, time.March, 15), windows[1].End)
	})

	t.Run("range within the cap yields one window", func(t *testing.T) {
		windows, err := PlanWindows(specs.DateRangeSpec{
			Start: date(2024, time.January, 1),
			End:   date(2024, time.January, 31),
		}, 40)

		require.NoError(t, err)
		require.Len(t, windows, 1)
		assert.Equal(t, date(2024, time.January, 1), windows[0].Start)
		assert.Equal(t, date(2024, time.January, 31), windows[0].End)
	})

	t.Run("windows are contiguous with no gaps or overlaps", func(t *testing.T) {
		windows, err := PlanWindows(specs.DateRangeSpec{
			Start: date(2024, time.January, 1),
			End:   date(2024, time.December, 31),
		}, 30)

		require.NoError(t, err)
		for i := 1; i < len(windows); i++ {
			assert.Equal(t, windows[i-1].End.AddDate(0, 0, 1), windows[i].Start)
		}
		assert.Equal(t, date(2024, time.December, 31), windows[len(windows)-1].End)
	})

	t.Run("single day range yields a single day window", func(t *testing.T) {
		day := date(2024, time.June, 1)
		windows, err := PlanWindows(specs.DateRangeSpec{Start: day, End: day}, 40)

		require.NoError(t, err)
		require.Len(t, windows, 1)
		assert.Equal(t, day, windows[0].Start)
		assert.Equal(t, day, windows[0].End)
	})

	t.Run("with non-positive span returns error", func(t *testing.T) {
		_, err := PlanWindows(specs.DateRangeSpec{
			Start: date(2024, time.January, 1),
			End:   date(2024, time.January, 31),
		}, 0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})

	t.Run("with end before start returns error", func(t *testing.T) {
		_, err := PlanWindows(specs.DateRangeSpec{
			Start: date(2024, time.February, 1),
			End:   date(2024, time.January, 1),
		}, 40)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid range")
	})
}

// fakeSource scripts a provider: per window start date, a list of pages, plus
// optional errors injected per call count.
type fakeSource struct {
	pages map[time.Time][]specs.PageSpec
	errs  []error
	calls int
}

func (f *fakeSource) fetch(ctx context.Context, window specs.FetchWindowSpec, page int) (specs.PageSpec, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return specs.PageSpec{}, err
		}
	}
	windowPages := f.pages[window.Start]
	if page > len(windowPages) {
		return specs.PageSpec{}, nil
	}
	return windowPages[page-1], nil
}

func rowsNamed(names ...string) []specs.RawRowSpec {
	rows := make([]specs.RawRowSpec, len(names))
	for i, name := range names {
		rows[i] = specs.RawRowSpec{"id": name}
	}
	return rows
}

func testCoordinator(cfg CoordinatorConfig) *Coordinator {
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = time.Millisecond
	}
	return NewCoordinator(cfg)
}

func TestCoordinatorFetchAll(t *testing.T) {
	windowA := specs.FetchWindowSpec{Start: date(2024, time.January, 1), End: date(2024, time.February, 9)}
	windowB := specs.FetchWindowSpec{Start: date(2024, time.February, 10), End: date(2024, time.March, 15)}

	t.Run("concatenates pages in window order", func(t *testing.T) {
		source := &fakeSource{pages: map[time.Time][]specs.PageSpec{
			windowA.Start: {
				{Rows: rowsNamed("a1", "a2"), HasMore: true},
				{Rows: rowsNamed("a3"), HasMore: false},
			},
			windowB.Start: {
				{Rows: rowsNamed("b1"), HasMore: false},
			},
		}}

		rows, err := testCoordinator(CoordinatorConfig{}).FetchAll(
			context.Background(), []specs.FetchWindowSpec{windowA, windowB}, source.fetch)

		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "a1", rows[0]["id"])
		assert.Equal(t, "a2", rows[1]["id"])
		assert.Equal(t, "a3", rows[2]["id"])
		assert.Equal(t, "b1", rows[3]["id"])
	})

	t.Run("retries transient provider errors", func(t *testing.T) {
		source := &fakeSource{
			pages: map[time.Time][]specs.PageSpec{
				windowA.Start: {{Rows: rowsNamed("a1")}},
			},
			errs: []error{&StatusError{Code: 503}, &StatusError{Code: 429}},
		}

		rows, err := testCoordinator(CoordinatorConfig{MaxAttempts: 3}).FetchAll(
			context.Background(), []specs.FetchWindowSpec{windowA}, source.fetch)

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 3, source.calls, "two transient failures then success")
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		source := &fakeSource{
			errs: []error{&StatusError{Code: 500}, &StatusError{Code: 500}, &StatusError{Code: 500}},
		}

		_, err := testCoordinator(CoordinatorConfig{MaxAttempts: 3}).FetchAll(
			context.Background(), []specs.FetchWindowSpec{windowA}, source.fetch)

		require.Error(t, err)
		assert.Equal(t, 3, source.calls)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, 500, statusErr.Code)
	})

	t.Run("client errors fail immediately without retry", func(t *testing.T) {
		source := &fakeSource{errs: []error{&StatusError{Code: 401}}}

		_, err := testCoordinator(CoordinatorConfig{MaxAttempts: 3}).FetchAll(
			context.Background(), []specs.FetchWindowSpec{windowA}, source.fetch)

		require.Error(t, err)
		assert.Equal(t, 1, source.calls, "a 401 never succeeds on retry")
	})

	t.Run("failure returns rows fetched so far", func(t *testing.T) {
		source := &fakeSource{
			pages: map[time.Time][]specs.PageSpec{
				windowA.Start: {{Rows: rowsNamed("a1", "a2")}},
			},
			errs: []error{nil, &StatusError{Code: 403}},
		}

		rows, err := testCoordinator(CoordinatorConfig{}).FetchAll(
			context.Background(), []specs.FetchWindowSpec{windowA, windowB}, source.fetch)

		require.Error(t, err)
		assert.Len(t, rows, 2, "partial data is returned, not discarded")

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, windowB.Start, fetchErr.Window.Start)
		assert.Equal(t, 1, fetchErr.Page)
		assert.Len(t, fetchErr.Rows, 2)
	})

	t.Run("page cap stops pagination and publishes event", func(t *testing.T) {
		// Provider always reports more pages.
		endless := func(ctx context.Context, window specs.FetchWindowSpec, page int) (specs.PageSpec, error) {
			return specs.PageSpec{Rows: rowsNamed("row"), HasMore: true}, nil
		}

		bus := infra.NewBus()
		capped := 0
		bus.Subscribe(infra.PageCapReached, func(e infra.Event) { capped++ })

		rows, err := testCoordinator(CoordinatorConfig{MaxPagesPerWindow: 3, Bus: bus}).FetchAll(
			context.Background(), []specs.FetchWindowSpec{windowA}, endless)

		require.NoError(t, err, "hitting the cap is reported, not an error")
		assert.Len(t, rows, 3)
		assert.Equal(t, 1, capped)
	})

	t.Run("cancellation stops before the next window", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		source := func(ctx context.Context, window specs.FetchWindowSpec, page int) (specs.PageSpec, error) {
			cancel()
			return specs.PageSpec{Rows: rowsNamed("a1")}, nil
		}

		rows, err := testCoordinator(CoordinatorConfig{}).FetchAll(
			ctx, []specs.FetchWindowSpec{windowA, windowB}, source)

		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Len(t, rows, 1, "the completed window's rows survive cancellation")
	})

	t.Run("cancelled context is not retried", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		source := func(ctx context.Context, window specs.FetchWindowSpec, page int) (specs.PageSpec, error) {
			calls++
			cancel()
			return specs.PageSpec{}, ctx.Err()
		}

		_, err := testCoordinator(CoordinatorConfig{MaxAttempts: 5}).FetchAll(
			ctx, []specs.FetchWindowSpec{windowA}, source)

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestIsTransient(t *testing.T) {
	t.Run("server errors and throttling are transient", func(t *testing.T) {
		assert.True(t, isTransient(&StatusError{Code: 500}))
		assert.True(t, isTransient(&StatusError{Code: 503}))
		assert.True(t, isTransient(&StatusError{Code: 429}))
		assert.True(t, isTransient(context.DeadlineExceeded))
	})

	t.Run("client errors and cancellation are permanent", func(t *testing.T) {
		assert.False(t, isTransient(&StatusError{Code: 400}))
		assert.False(t, isTransient(&StatusError{Code: 401}))
		assert.False(t, isTransient(&StatusError{Code: 404}))
		assert.False(t, isTransient(context.Canceled))
		assert.False(t, isTransient(errors.New("decode page 1: unexpected EOF")))
	})
}
