package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/growthops/rollup/internal"
	specs "github.com/growthops/rollup/specs"
)

// ClientConfig configures one provider endpoint.
type ClientConfig struct {
	// Endpoint URL the date range and page parameters are appended to.
	BaseURL string

	// Bearer token sent as the Authorization header. Optional; some local
	// store endpoints are unauthenticated.
	Token string

	// JSON key holding the row array in responses, e.g. "items" (RD Station)
	// or "rows" (GA4 report proxies). Default "items".
	RowsKey string

	// Rows requested per page; a short page ends pagination. Default 100.
	PageSize int

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client pages through a provider's JSON row listings. Its FetchPage method
// satisfies specs.FetchPage, so a Client plugs straight into the coordinator.
type Client struct {
	baseURL    string
	token      string
	rowsKey    string
	pageSize   int
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if cfg.RowsKey == "" {
		cfg.RowsKey = "items"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		rowsKey:    cfg.RowsKey,
		pageSize:   cfg.PageSize,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}, nil
}

// FetchPage implements specs.FetchPage against the configured endpoint.
func (c *Client) FetchPage(ctx context.Context, window specs.FetchWindowSpec, page int) (specs.PageSpec, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return specs.PageSpec{}, fmt.Errorf("invalid base URL: %w", err)
	}

	query := u.Query()
	query.Set("start_date", window.Start.Format("2006-01-02"))
	query.Set("end_date", window.End.Format("2006-01-02"))
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(c.pageSize))
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return specs.PageSpec{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return specs.PageSpec{}, fmt.Errorf("request page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return specs.PageSpec{}, &internal.StatusError{Code: resp.StatusCode}
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return specs.PageSpec{}, fmt.Errorf("decode page %d: %w", page, err)
	}

	items, ok := body[c.rowsKey].([]any)
	if !ok {
		return specs.PageSpec{}, fmt.Errorf("response has no %q row array", c.rowsKey)
	}

	rows := make([]specs.RawRowSpec, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		row := make(specs.RawRowSpec, len(obj))
		for key, value := range obj {
			row[key] = stringifyValue(value)
		}
		rows = append(rows, row)
	}

	c.logger.Debug("fetched page",
		zap.Time("windowStart", window.Start),
		zap.Int("page", page),
		zap.Int("rows", len(rows)))

	// A full page means the provider may have more; a short page ends the window.
	return specs.PageSpec{
		Rows:    rows,
		HasMore: len(rows) == c.pageSize,
	}, nil
}

// stringifyValue renders a decoded JSON value as the string form the
// normalizer expects. Nested structures are flattened to JSON text; the
// normalizer treats them as unparseable and coerces to zero.
func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
