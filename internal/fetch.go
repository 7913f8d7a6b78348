package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/growthops/rollup/internal/infra"
	specs "github.com/growthops/rollup/specs"
)

// PlanWindows implements specs.PlanWindows.
// Splits the requested range into the minimum number of contiguous windows,
// each at most maxSpanDays calendar days, ordered oldest to newest.
func PlanWindows(rangeSpec specs.DateRangeSpec, maxSpanDays int) ([]specs.FetchWindowSpec, error) {
	if maxSpanDays <= 0 {
		return nil, fmt.Errorf("max span days must be positive, got %d", maxSpanDays)
	}

	dateRange, err := NewDateRange(rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("invalid range: %w", err)
	}

	var windows []specs.FetchWindowSpec
	rangeEnd := dateRange.End().ToTime()
	for start := dateRange.Start().ToTime(); !start.After(rangeEnd); {
		// Inclusive bounds: a window of maxSpanDays days ends maxSpanDays-1
		// days after it starts.
		end := start.AddDate(0, 0, maxSpanDays-1)
		if end.After(rangeEnd) {
			end = rangeEnd
		}
		windows = append(windows, specs.FetchWindowSpec{Start: start, End: end})
		start = end.AddDate(0, 0, 1)
	}
	return windows, nil
}

// FetchError reports a failed window fetch together with every row fetched
// before the failure. Callers decide whether the partial result is acceptable;
// collapsing an outage to an empty row list would make it indistinguishable
// from a period with no activity.
type FetchError struct {
	Window specs.FetchWindowSpec
	Page   int
	Rows   []specs.RawRowSpec
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch window %s..%s page %d: %v",
		e.Window.Start.Format("2006-01-02"), e.Window.End.Format("2006-01-02"), e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx HTTP response from a provider.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d", e.Code)
}

// Transient reports whether the status is worth retrying. Auth and config
// mistakes (4xx) never are; retrying them only delays the real failure.
func (e *StatusError) Transient() bool {
	return e.Code >= 500 || e.Code == 429
}

// CoordinatorConfig tunes one Coordinator. Zero values select the defaults
// noted per field.
type CoordinatorConfig struct {
	// Hard cap on pages requested per window; terminates pagination against
	// a provider that always reports more pages. Default 10.
	MaxPagesPerWindow int

	// Attempts per page for transient failures. Default 3.
	MaxAttempts int

	// Deadline per page request, so one unresponsive provider cannot hang a
	// report indefinitely. Default 20s.
	PageTimeout time.Duration

	// First retry delay; doubles per attempt. Default 500ms.
	BackoffBase time.Duration

	// Upstream request budget per second against this source. Providers
	// throttle aggressively, so unbounded request rates get whole reports
	// rejected. Zero means no limit.
	RequestsPerSecond float64

	Logger  *zap.Logger
	Bus     *infra.Bus
	Metrics *CoordinatorMetrics
}

// Coordinator fetches all pages of all planned windows from one
// range-limited source, sequentially and in planned window order.
type Coordinator struct {
	maxPages    int
	maxAttempts int
	pageTimeout time.Duration
	backoffBase time.Duration
	limiter     *rate.Limiter
	logger      *zap.Logger
	bus         *infra.Bus
	metrics     *CoordinatorMetrics
}

func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	if cfg.MaxPagesPerWindow <= 0 {
		cfg.MaxPagesPerWindow = 10
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 20 * time.Second
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Coordinator{
		maxPages:    cfg.MaxPagesPerWindow,
		maxAttempts: cfg.MaxAttempts,
		pageTimeout: cfg.PageTimeout,
		backoffBase: cfg.BackoffBase,
		limiter:     limiter,
		logger:      cfg.Logger,
		bus:         cfg.Bus,
		metrics:     cfg.Metrics,
	}
}

// FetchAll retrieves every page of every window, concatenating rows in
// planned window order. On an irrecoverable failure it returns the rows
// fetched so far wrapped in a *FetchError naming the failing window.
// Cancellation is honored between windows and between pages.
func (c *Coordinator) FetchAll(ctx context.Context, windows []specs.FetchWindowSpec, fetchPage specs.FetchPage) ([]specs.RawRowSpec, error) {
	var rows []specs.RawRowSpec

	for _, window := range windows {
		if err := ctx.Err(); err != nil {
			return rows, &FetchError{Window: window, Rows: rows, Err: err}
		}

		for page := 1; page <= c.maxPages; page++ {
			pageSpec, err := c.fetchPageWithRetry(ctx, window, page, fetchPage)
			if err != nil {
				c.logger.Warn("window fetch failed",
					zap.Time("windowStart", window.Start),
					zap.Time("windowEnd", window.End),
					zap.Int("page", page),
					zap.Error(err))
				if c.metrics != nil {
					c.metrics.WindowsFailed.Inc()
				}
				if c.bus != nil {
					c.bus.Publish(WindowFailedEvent{Window: window, Page: page, Err: err})
				}
				return rows, &FetchError{Window: window, Page: page, Rows: rows, Err: err}
			}

			rows = append(rows, pageSpec.Rows...)
			if c.metrics != nil {
				c.metrics.PagesFetched.Inc()
			}
			if c.bus != nil {
				c.bus.Publish(PageFetchedEvent{Window: window, Page: page, RowCount: len(pageSpec.Rows)})
			}

			if !pageSpec.HasMore {
				break
			}
			if page == c.maxPages {
				// Safety bound, not silent truncation: the cap is reported.
				c.logger.Warn("page cap reached with more pages available",
					zap.Time("windowStart", window.Start),
					zap.Time("windowEnd", window.End),
					zap.Int("maxPages", c.maxPages))
				if c.metrics != nil {
					c.metrics.PageCapHits.Inc()
				}
				if c.bus != nil {
					c.bus.Publish(PageCapReachedEvent{Window: window, MaxPages: c.maxPages})
				}
			}
		}
	}

	return rows, nil
}

func (c *Coordinator) fetchPageWithRetry(ctx context.Context, window specs.FetchWindowSpec, page int, fetchPage specs.FetchPage) (specs.PageSpec, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return specs.PageSpec{}, err
			}
		}

		pageCtx, cancel := context.WithTimeout(ctx, c.pageTimeout)
		pageSpec, err := fetchPage(pageCtx, window, page)
		cancel()
		if err == nil {
			return pageSpec, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isTransient(err) || attempt == c.maxAttempts {
			break
		}

		delay := c.backoffBase << (attempt - 1)
		c.logger.Info("retrying page fetch",
			zap.Time("windowStart", window.Start),
			zap.Int("page", page),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		if c.metrics != nil {
			c.metrics.Retries.Inc()
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return specs.PageSpec{}, ctx.Err()
		case <-timer.C:
		}
	}

	return specs.PageSpec{}, lastErr
}

// isTransient reports whether an error is worth retrying: provider 5xx/429,
// network timeouts, and per-page deadline expiry. Permanent errors (4xx auth
// or config mistakes, cancellation) fail immediately.
func isTransient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// CoordinatorMetrics are the coordinator's Prometheus counters.
type CoordinatorMetrics struct {
	PagesFetched  prometheus.Counter
	Retries       prometheus.Counter
	WindowsFailed prometheus.Counter
	PageCapHits   prometheus.Counter
}

func NewCoordinatorMetrics(reg prometheus.Registerer) *CoordinatorMetrics {
	factory := promauto.With(reg)
	return &CoordinatorMetrics{
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "rollup_fetch_pages_total",
			Help: "Count of provider pages fetched successfully",
		}),
		Retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "rollup_fetch_retries_total",
			Help: "Count of page fetches retried after transient failures",
		}),
		WindowsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "rollup_fetch_windows_failed_total",
			Help: "Count of windows abandoned after an irrecoverable failure",
		}),
		PageCapHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "rollup_fetch_page_cap_hits_total",
			Help: "Count of windows that hit the per-window page cap with more data available",
		}),
	}
}

// Pipeline event wrappers published on the infra bus.

type PageFetchedEvent struct {
	Window   specs.FetchWindowSpec
	Page     int
	RowCount int
}

func (e PageFetchedEvent) EventType() infra.EventType { return infra.PageFetched }

type PageCapReachedEvent struct {
	Window   specs.FetchWindowSpec
	MaxPages int
}

func (e PageCapReachedEvent) EventType() infra.EventType { return infra.PageCapReached }

type WindowFailedEvent struct {
	Window specs.FetchWindowSpec
	Page   int
	Err    error
}

func (e WindowFailedEvent) EventType() infra.EventType { return infra.WindowFailed }

type RowsExcludedEvent struct {
	Source   string
	Excluded int
}

func (e RowsExcludedEvent) EventType() infra.EventType { return infra.RowsExcluded }

type ReportAggregatedEvent struct {
	Granularity string
	Buckets     int
	Records     int
}

func (e ReportAggregatedEvent) EventType() infra.EventType { return infra.ReportAggregated }
