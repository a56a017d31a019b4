package fetcher

import (
	"context"

	"valuationcli/pkg/contracts/domain"
)

// TableFetcher retrieves one raw table from a source
type TableFetcher interface {
	FetchTable(ctx context.Context) (domain.RawTable, error)
	// Describe names the source for logs and error messages
	Describe() string
}

// DefaultUserAgent identifies the tool to the sites it scrapes
const DefaultUserAgent = "Mozilla/5.0 (compatible; valuationcli/1.0)"
