package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "valuationcli/internal/errors"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("test"), 0644))
	return path
}

func TestFileValidator_ValidateWorkbook(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantType      apperrors.ErrorType
		errorContains string
	}{
		{
			name:      "xlsx workbook",
			setupFunc: func(t *testing.T) string { return writeFile(t, t.TempDir(), "ie_data.xlsx") },
		},
		{
			name:      "upper case extension",
			setupFunc: func(t *testing.T) string { return writeFile(t, t.TempDir(), "IE_DATA.XLSX") },
		},
		{
			name:          "missing workbook",
			setupFunc:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "ie_data.xlsx") },
			wantType:      apperrors.ErrTypeMissingDependency,
			errorContains: "save it as .xlsx",
		},
		{
			name:          "legacy xls",
			setupFunc:     func(t *testing.T) string { return writeFile(t, t.TempDir(), "ie_data.xls") },
			wantType:      apperrors.ErrTypeConfig,
			errorContains: "save as .xlsx",
		},
		{
			name:          "lock file",
			setupFunc:     func(t *testing.T) string { return writeFile(t, t.TempDir(), "~$ie_data.xlsx") },
			wantType:      apperrors.ErrTypeConfig,
			errorContains: "lock file",
		},
		{
			name:          "not a workbook",
			setupFunc:     func(t *testing.T) string { return writeFile(t, t.TempDir(), "ie_data.csv") },
			wantType:      apperrors.ErrTypeConfig,
			errorContains: "not an Excel workbook",
		},
		{
			name:          "directory",
			setupFunc:     func(t *testing.T) string { return t.TempDir() },
			wantType:      apperrors.ErrTypeConfig,
			errorContains: "is a directory",
		},
	}

	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateWorkbook(tt.setupFunc(t))
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), err.Error())
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileValidator_ValidateSeriesCSV(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	assert.NoError(t, v.ValidateSeriesCSV(writeFile(t, dir, "shiller_cape_series.csv"), "cape-source"))

	err := v.ValidateSeriesCSV(filepath.Join(dir, "missing.csv"), "cape-scrape")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingDependency))
	assert.Contains(t, err.Error(), `run "cape-scrape" first`)

	err = v.ValidateSeriesCSV(writeFile(t, dir, "series.txt"), "cape-source")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "data", "nested")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary write file must be removed")

	// a regular file where the directory should be
	blocked := writeFile(t, t.TempDir(), "charts")
	err = v.ValidateOutputDirectory(blocked)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	v := NewFileValidator(nil)
	path := filepath.Join(t.TempDir(), "figures", "shiller_pe_history.png")
	require.NoError(t, v.ValidateOutputFile(path))
	assert.DirExists(t, filepath.Dir(path))
	assert.NoFileExists(t, path)
}
