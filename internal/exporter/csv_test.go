package exporter

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuationcli/internal/config"
	apperrors "valuationcli/internal/errors"
	"valuationcli/internal/shared/testutil"
	"valuationcli/pkg/contracts/domain"
)

// setupTestEnv creates a writer whose data directory is a fresh temp dir
func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()

	tempDir := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{BaseDir: tempDir, DataDir: "data"})
	return NewCSVWriter(paths, nil), tempDir
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(content)), "\n")
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		validate func(t *testing.T, fullPath string)
	}{
		{
			name:     "basic write with headers",
			filePath: "test_basic.csv",
			options: WriteOptions{
				Headers: []string{"date", "shiller_pe"},
				Records: [][]string{{"2020-01-01", "31.2"}, {"2020-02-01", "30.9"}},
			},
			validate: func(t *testing.T, fullPath string) {
				lines := readLines(t, fullPath)
				assert.Equal(t, []string{"date,shiller_pe", "2020-01-01,31.2", "2020-02-01,30.9"}, lines)
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "test_bom.csv",
			options: WriteOptions{
				Headers:   []string{"date", "value"},
				Records:   [][]string{{"2020-01-01", "1"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, fullPath string) {
				content, err := os.ReadFile(fullPath)
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
			},
		},
		{
			name:     "nested directory is created",
			filePath: filepath.Join("nested", "deeper", "out.csv"),
			options:  WriteOptions{Headers: []string{"a"}},
			validate: func(t *testing.T, fullPath string) {
				assert.Equal(t, filepath.Join(tempDir, "data", "nested", "deeper", "out.csv"), fullPath)
				assert.Equal(t, []string{"a"}, readLines(t, fullPath))
			},
		},
		{
			name:     "absolute path kept",
			filePath: filepath.Join(tempDir, "elsewhere", "abs.csv"),
			options:  WriteOptions{Headers: []string{"a"}, Records: [][]string{{"1"}}},
			validate: func(t *testing.T, fullPath string) {
				assert.Equal(t, filepath.Join(tempDir, "elsewhere", "abs.csv"), fullPath)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fullPath, err := writer.WriteCSV(tt.filePath, tt.options)
			require.NoError(t, err)
			tt.validate(t, fullPath)
		})
	}
}

func TestCSVWriter_WriteCSV_Overwrites(t *testing.T) {
	writer, _ := setupTestEnv(t)

	_, err := writer.WriteCSV("out.csv", WriteOptions{Headers: []string{"a"}, Records: [][]string{{"1"}, {"2"}}})
	require.NoError(t, err)
	fullPath, err := writer.WriteCSV("out.csv", WriteOptions{Headers: []string{"a"}, Records: [][]string{{"3"}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "3"}, readLines(t, fullPath))
}

func TestCSVWriter_WriteSeries(t *testing.T) {
	writer, _ := setupTestEnv(t)
	s := testutil.MonthlySeries("shiller_pe", testutil.Month(2020, time.January), 31.2, 30.25, 24.8)
	derived := domain.DerivedColumn{
		Name:   "rolling_mean_2",
		Values: []domain.OptionalFloat{domain.None(), domain.Some(30.725), domain.Some(27.525)},
	}

	fullPath, err := writer.WriteSeries("shiller_cape_series.csv", s, derived)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"date,shiller_pe,rolling_mean_2",
		"2020-01-01,31.2,",
		"2020-02-01,30.25,30.725",
		"2020-03-01,24.8,27.525",
	}, readLines(t, fullPath))
}

func TestCSVWriter_WriteSeries_MisalignedColumn(t *testing.T) {
	writer, _ := setupTestEnv(t)
	s := testutil.MonthlySeries("x", testutil.Month(2020, time.January), 1, 2)

	_, err := writer.WriteSeries("x.csv", s, domain.DerivedColumn{Name: "bad", Values: []domain.OptionalFloat{domain.Some(1)}})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestCSVWriter_WriteSeries_ExcelBOM(t *testing.T) {
	writer, _ := setupTestEnv(t)
	writer.BOMPrefix = true
	s := testutil.MonthlySeries("shiller_pe", testutil.Month(2020, time.January), 31.2, 30.25)

	fullPath, err := writer.WriteSeries("excel.csv", s)
	require.NoError(t, err)

	content, err := os.ReadFile(fullPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "\xEF\xBB\xBFdate,shiller_pe\n"))

	got, err := ReadSeries(fullPath, "shiller_pe", "cape-source", domain.FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, s.Values(), got.Values())
}

func TestSeriesRoundTrip(t *testing.T) {
	writer, _ := setupTestEnv(t)
	values := []float64{4.44, 1.0 / 3.0, 38.516841210331, 1e-7, 123456789.125, -0.1, math.Pi}
	s := testutil.MonthlySeries("shiller_pe", testutil.Month(1871, time.January), values...)

	fullPath, err := writer.WriteSeries("roundtrip.csv", s,
		domain.DerivedColumn{Name: "extra", Values: make([]domain.OptionalFloat, len(values))})
	require.NoError(t, err)

	got, err := ReadSeries(fullPath, "shiller_pe", "cape-source", domain.FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, s.Dates(), got.Dates())
	assert.Equal(t, s.Values(), got.Values(), "values must survive the round trip bit for bit")
	assert.Equal(t, "shiller_pe", got.Name)
}

func TestReadSeries(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		return p
	}

	t.Run("unsorted input is sorted", func(t *testing.T) {
		p := write("unsorted.csv", "date,shiller_pe\n2020-03-01,3\n2020-01-01,1\n2020-02-01,2\n")
		s, err := ReadSeries(p, "shiller_pe", "cape-source", domain.FrequencyMonthly)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3}, s.Values())
	})

	t.Run("bom and empty values", func(t *testing.T) {
		p := write("bom.csv", "\xEF\xBB\xBFdate,shiller_pe,other\n2020-01-01,,9\n2020-02-01,2,9\n")
		s, err := ReadSeries(p, "shiller_pe", "cape-source", domain.FrequencyMonthly)
		require.NoError(t, err)
		assert.Equal(t, []float64{2}, s.Values())
	})

	t.Run("frequency comes from the caller", func(t *testing.T) {
		p := write("quarterly.csv", "date,buffett_indicator\n1947-01-01,50\n1947-04-01,51\n")
		s, err := ReadSeries(p, "buffett_indicator", "buffett", domain.FrequencyQuarterly)
		require.NoError(t, err)
		assert.Equal(t, domain.FrequencyQuarterly, s.Frequency)
		assert.Equal(t, []float64{50, 51}, s.Values())
	})

	t.Run("missing column", func(t *testing.T) {
		p := write("nocol.csv", "date,value\n2020-01-01,1\n")
		_, err := ReadSeries(p, "shiller_pe", "cape-source", domain.FrequencyMonthly)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	})

	t.Run("bad value", func(t *testing.T) {
		p := write("bad.csv", "date,shiller_pe\n2020-01-01,abc\n")
		_, err := ReadSeries(p, "shiller_pe", "cape-source", domain.FrequencyMonthly)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})

	t.Run("empty file", func(t *testing.T) {
		p := write("empty.csv", "")
		_, err := ReadSeries(p, "shiller_pe", "cape-source", domain.FrequencyMonthly)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})
}

func TestReadSeries_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "shiller_cape_series.csv")

	_, err := ReadSeries(path, "shiller_pe", "cape-source", domain.FrequencyMonthly)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingDependency))
	assert.Contains(t, err.Error(), `run "cape-source" first`)
	assert.Contains(t, err.Error(), path)
}
