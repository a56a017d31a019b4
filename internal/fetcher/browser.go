package fetcher

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	apperrors "valuationcli/internal/errors"
	"valuationcli/pkg/contracts/domain"
)

// BrowserTableFetcher renders a page in headless Chrome and extracts one
// table from the resulting DOM
type BrowserTableFetcher struct {
	URL      string
	TableID  string
	Timeout  time.Duration
	Headless bool
	logger   *slog.Logger
}

// NewBrowserTableFetcher creates a headless browser fetcher
func NewBrowserTableFetcher(pageURL, tableID string, timeout time.Duration, logger *slog.Logger) *BrowserTableFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserTableFetcher{
		URL:      pageURL,
		TableID:  tableID,
		Timeout:  timeout,
		Headless: true,
		logger:   logger.With(slog.String("component", "browser_fetcher")),
	}
}

// Describe implements TableFetcher
func (f *BrowserTableFetcher) Describe() string {
	return f.URL + " (browser)"
}

// FetchTable implements TableFetcher
func (f *BrowserTableFetcher) FetchTable(ctx context.Context) (domain.RawTable, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.Headless),
		chromedp.UserAgent(DefaultUserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		browserCtx, cancel = context.WithTimeout(browserCtx, f.Timeout)
		defer cancel()
	}

	start := time.Now()
	selector := tableSelector(f.TableID)
	var outer string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(f.URL),
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.OuterHTML(selector, &outer, chromedp.ByQuery),
	)
	if err != nil {
		return domain.RawTable{}, apperrors.NewFetchError("render page in browser", err).
			WithContext("url", f.URL).
			WithContext("selector", selector)
	}

	table, err := ParseHTMLTable(strings.NewReader(outer), f.TableID, f.URL)
	if err != nil {
		return domain.RawTable{}, err
	}

	f.logger.InfoContext(ctx, "Fetched rendered table",
		slog.String("url", f.URL),
		slog.Int("rows", len(table.Rows)),
		slog.Duration("elapsed", time.Since(start)))
	return table, nil
}

// tableSelector is the CSS selector for the table with id, or the first
// table when id is empty
func tableSelector(id string) string {
	if id == "" {
		return "table"
	}
	return "table#" + id
}
