package fetcher

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "valuationcli/internal/errors"
	"valuationcli/pkg/contracts/domain"
)

// SpreadsheetReader reads one sheet of an .xlsx workbook. Row HeaderRow
// (0-based) holds the labels and every non-empty row after it is data.
type SpreadsheetReader struct {
	Path      string
	Sheet     string
	HeaderRow int
	logger    *slog.Logger
}

// NewSpreadsheetReader creates a reader for sheet of the workbook at path
func NewSpreadsheetReader(path, sheet string, headerRow int, logger *slog.Logger) *SpreadsheetReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpreadsheetReader{
		Path:      path,
		Sheet:     sheet,
		HeaderRow: headerRow,
		logger:    logger.With(slog.String("component", "spreadsheet_reader")),
	}
}

// Describe implements TableFetcher
func (r *SpreadsheetReader) Describe() string {
	return fmt.Sprintf("%s[%s]", r.Path, r.Sheet)
}

// FetchTable implements TableFetcher. Cells are read unformatted so that a
// date stored as the number 2020.1 surfaces as "2020.1", not "2020.10".
func (r *SpreadsheetReader) FetchTable(ctx context.Context) (domain.RawTable, error) {
	if _, err := os.Stat(r.Path); stderrors.Is(err, fs.ErrNotExist) {
		return domain.RawTable{}, apperrors.NewAppError(apperrors.ErrTypeMissingDependency,
			fmt.Sprintf("workbook %s not found: download the Shiller ie_data workbook, save it as .xlsx at that path", r.Path), err).
			WithContext("path", r.Path)
	}

	f, err := excelize.OpenFile(r.Path)
	if err != nil {
		return domain.RawTable{}, apperrors.NewFetchError("open workbook", err).WithContext("path", r.Path)
	}
	defer f.Close()

	sheet, ok := findSheet(f.GetSheetList(), r.Sheet)
	if !ok {
		return domain.RawTable{}, apperrors.NewConfigError(fmt.Sprintf("sheet %q not found", r.Sheet), nil).
			WithContext("path", r.Path).
			WithContext("sheets", f.GetSheetList())
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.RawTable{}, apperrors.NewFetchError("read sheet rows", err).WithContext("sheet", sheet)
	}
	if r.HeaderRow < 0 || r.HeaderRow >= len(rows) {
		return domain.RawTable{}, apperrors.NewConfigError(
			fmt.Sprintf("header row %d is beyond the %d rows of sheet %q", r.HeaderRow, len(rows), sheet), nil)
	}

	table := domain.RawTable{
		Source:  r.Describe(),
		Headers: uniqueLabels(rows[r.HeaderRow]),
	}
	for _, row := range rows[r.HeaderRow+1:] {
		if blankRow(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	r.logger.InfoContext(ctx, "Read worksheet",
		slog.String("path", r.Path),
		slog.String("sheet", sheet),
		slog.Int("columns", len(table.Headers)),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}

func findSheet(sheets []string, want string) (string, bool) {
	for _, sh := range sheets {
		if strings.EqualFold(strings.TrimSpace(sh), strings.TrimSpace(want)) {
			return sh, true
		}
	}
	return "", false
}

// uniqueLabels names blank labels "Unnamed: <i>" and suffixes repeated
// labels ".1", ".2", ... so that every column is addressable.
func uniqueLabels(labels []string) []string {
	out := make([]string, len(labels))
	seen := make(map[string]int, len(labels))
	for i, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			label = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[label]; dup {
			seen[label] = n + 1
			label = fmt.Sprintf("%s.%d", label, n+1)
		} else {
			seen[label] = 0
		}
		out[i] = label
	}
	return out
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
