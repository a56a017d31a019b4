package exporter

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"valuationcli/internal/config"
	"valuationcli/internal/dataprocessing"
	apperrors "valuationcli/internal/errors"
	"valuationcli/pkg/contracts/domain"
)

// DateColumn is the first column of every series CSV
const DateColumn = "date"

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger

	// BOMPrefix makes WriteSeries start every file with a UTF-8 BOM
	BOMPrefix bool
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file, replacing any previous content. The
// directory is created when absent.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", apperrors.NewStorageError("create output directory", err).WithContext("path", fullPath)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", apperrors.NewStorageError("create CSV file", err).WithContext("path", fullPath)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return "", apperrors.NewStorageError("write BOM", err).WithContext("path", fullPath)
		}
	}

	writer := csv.NewWriter(file)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return "", apperrors.NewStorageError("write CSV header", err).WithContext("path", fullPath)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return "", apperrors.NewStorageError(fmt.Sprintf("write record %d", i), err).WithContext("path", fullPath)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", apperrors.NewStorageError("flush CSV", err).WithContext("path", fullPath)
	}
	if err := file.Close(); err != nil {
		return "", apperrors.NewStorageError("close CSV file", err).WithContext("path", fullPath)
	}
	return fullPath, nil
}

// WriteSeries writes s as "date,<name>[,derived...]" in ascending date
// order and returns the written path. Every derived column must have one
// entry per point; undefined entries become empty cells.
func (w *CSVWriter) WriteSeries(filePath string, s domain.Series, derived ...domain.DerivedColumn) (string, error) {
	headers := make([]string, 0, 2+len(derived))
	headers = append(headers, DateColumn, s.Name)
	for _, col := range derived {
		if len(col.Values) != s.Len() {
			return "", apperrors.NewStorageError(
				fmt.Sprintf("derived column %q has %d values for %d points", col.Name, len(col.Values), s.Len()), nil)
		}
		headers = append(headers, col.Name)
	}

	records := make([][]string, s.Len())
	for i, p := range s.Points {
		record := make([]string, 0, len(headers))
		record = append(record, p.Date.Format(dataprocessing.LayoutISO), FormatValue(p.Value))
		for _, col := range derived {
			record = append(record, formatOptional(col.Values[i]))
		}
		records[i] = record
	}

	return w.WriteCSV(filePath, WriteOptions{Headers: headers, Records: records, BOMPrefix: w.BOMPrefix})
}

// ReadSeries loads the column named column from a CSV written by
// WriteSeries and labels it with freq. A missing file is a missing
// dependency naming producer, the command that creates it. Rows whose value
// is empty are skipped.
func ReadSeries(path, column, producer string, freq domain.Frequency) (domain.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return domain.Series{}, apperrors.NewMissingDependencyError(path, producer)
		}
		return domain.Series{}, apperrors.NewStorageError("open CSV", err).WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return domain.Series{}, apperrors.NewStorageError("CSV is empty", nil).WithContext("path", path)
		}
		return domain.Series{}, apperrors.NewStorageError("read CSV header", err).WithContext("path", path)
	}
	if len(headers) > 0 {
		headers[0] = trimBOM(headers[0])
	}

	dateIdx, err := dataprocessing.RequireColumn(headers, DateColumn)
	if err != nil {
		return domain.Series{}, err
	}
	valueIdx, err := dataprocessing.RequireColumn(headers, column)
	if err != nil {
		return domain.Series{}, err
	}

	var points []domain.TimeSeriesPoint
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.Series{}, apperrors.NewStorageError("read CSV record", err).WithContext("line", line)
		}
		if valueIdx >= len(record) || dateIdx >= len(record) || record[valueIdx] == "" {
			continue
		}
		date, err := dataprocessing.ParseMonthDate(record[dateIdx], dataprocessing.LayoutISO)
		if err != nil {
			return domain.Series{}, apperrors.NewStorageError(fmt.Sprintf("line %d", line), err).WithContext("path", path)
		}
		value, err := strconv.ParseFloat(record[valueIdx], 64)
		if err != nil {
			return domain.Series{}, apperrors.NewStorageError(fmt.Sprintf("line %d: invalid %s", line, column), err).WithContext("path", path)
		}
		points = append(points, domain.TimeSeriesPoint{Date: date, Value: value})
	}

	return domain.NewSeries(column, freq, points), nil
}

// resolvePath returns absolute paths as-is and places relative ones in the
// data directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetDataPath(filePath)
}

func trimBOM(s string) string {
	if len(s) >= 3 && s[0] == 0xEF && s[1] == 0xBB && s[2] == 0xBF {
		return s[3:]
	}
	return s
}
