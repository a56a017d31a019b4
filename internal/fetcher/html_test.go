package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "valuationcli/internal/errors"
	"valuationcli/internal/shared/testutil"
)

const multplPage = `<!DOCTYPE html>
<html><head><title>Shiller PE Ratio by Month</title></head>
<body>
<table class="nav"><tr><td>menu</td></tr></table>
<table id="datatable">
  <thead><tr><th>Date</th><th>Value</th></tr></thead>
  <tbody>
    <tr><td>Nov 1, 2025</td><td>&#x2002;
39.51
</td></tr>
    <tr class="odd"><td>Oct 1, 2025</td><td>
39.00
</td></tr>
    <tr><td>Sep 1, 2025</td><td><abbr title="estimate">38.73</abbr></td></tr>
  </tbody>
</table>
</body></html>`

func TestParseHTMLTable(t *testing.T) {
	table, err := ParseHTMLTable(strings.NewReader(multplPage), "datatable", "multpl")
	require.NoError(t, err)

	assert.Equal(t, "multpl", table.Source)
	assert.Equal(t, []string{"Date", "Value"}, table.Headers)
	assert.Equal(t, [][]string{
		{"Nov 1, 2025", "39.51"},
		{"Oct 1, 2025", "39.00"},
		{"Sep 1, 2025", "38.73"},
	}, table.Rows)
}

func TestParseHTMLTable_FirstTable(t *testing.T) {
	table, err := ParseHTMLTable(strings.NewReader(multplPage), "", "multpl")
	require.NoError(t, err)
	assert.Equal(t, []string{"menu"}, table.Headers)
	assert.Empty(t, table.Rows)
}

func TestParseHTMLTable_HeaderWithoutTh(t *testing.T) {
	page := `<table><tr><td>Date</td><td>Value</td></tr><tr><td>Jan 1, 1871</td><td>11.1</td></tr></table>`

	table, err := ParseHTMLTable(strings.NewReader(page), "", "inline")
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Value"}, table.Headers)
	assert.Equal(t, [][]string{{"Jan 1, 1871", "11.1"}}, table.Rows)
}

func TestParseHTMLTable_NestedTableIgnored(t *testing.T) {
	page := `<table id="outer"><tr><th>A</th></tr><tr><td>1<table><tr><td>inner</td></tr></table></td></tr></table>`

	table, err := ParseHTMLTable(strings.NewReader(page), "outer", "nested")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "1 inner", table.Rows[0][0])
}

func TestParseHTMLTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		tableID string
	}{
		{name: "no table", page: `<p>maintenance</p>`},
		{name: "id not found", page: multplPage, tableID: "missing"},
		{name: "empty table", page: `<table></table>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHTMLTable(strings.NewReader(tt.page), tt.tableID, "test")
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFetch))
		})
	}
}

func TestHTTPTableFetcher(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(multplPage))
	}))
	defer srv.Close()

	logger, handler := testutil.NewTestLogger(t)
	f := NewHTTPTableFetcher(srv.URL+"/shiller-pe/table/by-month", "datatable", 5*time.Second, logger)

	table, err := f.FetchTable(context.Background())
	require.NoError(t, err)
	assert.Len(t, table.Rows, 3)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.True(t, handler.ContainsMessage("Fetched HTML table"))
	assert.Equal(t, srv.URL+"/shiller-pe/table/by-month", f.Describe())
}

func TestHTTPTableFetcher_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPTableFetcher(srv.URL, "", 5*time.Second, nil)
	_, err := f.FetchTable(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFetch))
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPTableFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewHTTPTableFetcher(srv.URL, "", 50*time.Millisecond, nil)
	_, err := f.FetchTable(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFetch))
}

func TestTableSelector(t *testing.T) {
	assert.Equal(t, "table", tableSelector(""))
	assert.Equal(t, "table#datatable", tableSelector("datatable"))

	f := NewBrowserTableFetcher("https://example.com", "datatable", time.Second, nil)
	assert.True(t, f.Headless)
	assert.Equal(t, "https://example.com (browser)", f.Describe())
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://api.stlouisfed.org/fred/series/observations",
		redactURL("https://api.stlouisfed.org/fred/series/observations?api_key=secret&series_id=GDP"))
}
