package fetcher

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	apperrors "valuationcli/internal/errors"
	"valuationcli/pkg/contracts/domain"
)

// maxPageBytes bounds how much of a response body is read
const maxPageBytes = 16 << 20

// HTTPTableFetcher downloads an HTML page and extracts one table from it
type HTTPTableFetcher struct {
	URL       string
	TableID   string
	UserAgent string
	client    *http.Client
	logger    *slog.Logger
}

// NewHTTPTableFetcher creates a fetcher with a single fixed request timeout
func NewHTTPTableFetcher(pageURL, tableID string, timeout time.Duration, logger *slog.Logger) *HTTPTableFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPTableFetcher{
		URL:       pageURL,
		TableID:   tableID,
		UserAgent: DefaultUserAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    logger.With(slog.String("component", "http_fetcher")),
	}
}

// Describe implements TableFetcher
func (f *HTTPTableFetcher) Describe() string {
	return f.URL
}

// FetchTable implements TableFetcher
func (f *HTTPTableFetcher) FetchTable(ctx context.Context) (domain.RawTable, error) {
	start := time.Now()
	body, err := getPage(ctx, f.client, f.URL, f.UserAgent)
	if err != nil {
		return domain.RawTable{}, err
	}
	defer body.Close()

	table, err := ParseHTMLTable(io.LimitReader(body, maxPageBytes), f.TableID, f.URL)
	if err != nil {
		return domain.RawTable{}, err
	}

	f.logger.InfoContext(ctx, "Fetched HTML table",
		slog.String("url", f.URL),
		slog.Int("columns", len(table.Headers)),
		slog.Int("rows", len(table.Rows)),
		slog.Duration("elapsed", time.Since(start)))
	return table, nil
}

// getPage issues a GET and returns the body of a 2xx response. The caller
// closes the body.
func getPage(ctx context.Context, client *http.Client, rawURL, userAgent string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid source URL", err).WithContext("url", rawURL)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.NewFetchError("request failed", unwrapURLError(err)).WithContext("url", redactURL(rawURL))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, apperrors.NewFetchError(
			fmt.Sprintf("unexpected status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)), nil).
			WithContext("url", redactURL(rawURL)).
			WithContext("status", resp.StatusCode)
	}
	return resp.Body, nil
}

// unwrapURLError drops the *url.Error wrapper, whose message embeds the
// full request URL including any credentials in the query.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// redactURL strips the query string
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return u.String()
}
