package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "valuationcli/internal/errors"
	"valuationcli/pkg/contracts/domain"
)

// FREDMissingValue is how FRED marks an observation with no value
const FREDMissingValue = "."

// FREDOptions configures a FREDClient
type FREDOptions struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Burst     int
}

// FREDClient reads series observations from the FRED API
type FREDClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type fredObservationsResponse struct {
	Count        int               `json:"count"`
	Observations []fredObservation `json:"observations"`
}

type fredErrorResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// NewFREDClient creates a client. A missing API key is a configuration
// error reported before any request is made.
func NewFREDClient(opts FREDOptions, logger *slog.Logger) (*FREDClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, apperrors.NewConfigError("FRED API key is not set: export FRED_API_KEY", nil)
	}
	if opts.BaseURL == "" {
		return nil, apperrors.NewConfigError("FRED base URL is empty", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	return &FREDClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.With(slog.String("component", "fred_client")),
	}, nil
}

// FetchSeries returns the observations of seriesID as a two column table
// with headers "date" and seriesID. Missing values keep FRED's "." marker.
func (c *FREDClient) FetchSeries(ctx context.Context, seriesID string) (domain.RawTable, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.RawTable{}, apperrors.NewFetchError("rate limiter", err)
	}

	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	endpoint := c.baseURL + "/fred/series/observations?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.RawTable{}, apperrors.NewConfigError("invalid FRED base URL", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.RawTable{}, apperrors.NewFetchError("FRED request failed", unwrapURLError(err)).
			WithContext("series_id", seriesID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return domain.RawTable{}, apperrors.NewFetchError("read FRED response", err).WithContext("series_id", seriesID)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("FRED returned status %d for series %s", resp.StatusCode, seriesID)
		var apiErr fredErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.ErrorMessage != "" {
			msg += ": " + apiErr.ErrorMessage
		}
		return domain.RawTable{}, apperrors.NewFetchError(msg, nil).
			WithContext("series_id", seriesID).
			WithContext("status", resp.StatusCode)
	}

	var payload fredObservationsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.RawTable{}, apperrors.NewFetchError("decode FRED observations", err).WithContext("series_id", seriesID)
	}

	table := domain.RawTable{
		Source:  "FRED " + seriesID,
		Headers: []string{"date", seriesID},
		Rows:    make([][]string, 0, len(payload.Observations)),
	}
	missing := 0
	for _, obs := range payload.Observations {
		if strings.TrimSpace(obs.Value) == FREDMissingValue {
			missing++
		}
		table.Rows = append(table.Rows, []string{obs.Date, obs.Value})
	}

	c.logger.InfoContext(ctx, "Fetched FRED series",
		slog.String("series_id", seriesID),
		slog.Int("observations", len(table.Rows)),
		slog.Int("missing", missing),
		slog.Duration("elapsed", time.Since(start)))
	return table, nil
}

// FREDSeriesFetcher adapts one FRED series to TableFetcher
type FREDSeriesFetcher struct {
	Client   *FREDClient
	SeriesID string
}

// FetchTable implements TableFetcher
func (f FREDSeriesFetcher) FetchTable(ctx context.Context) (domain.RawTable, error) {
	return f.Client.FetchSeries(ctx, f.SeriesID)
}

// Describe implements TableFetcher
func (f FREDSeriesFetcher) Describe() string {
	return "FRED " + f.SeriesID
}
