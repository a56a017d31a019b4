package fetcher

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "valuationcli/internal/errors"
)

// writeShillerWorkbook creates a workbook shaped like ie_data: seven rows of
// preamble, labels on row 8, numeric data after it.
func writeShillerWorkbook(t *testing.T, sheet string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	require.NoError(t, err)
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}

	require.NoError(t, f.SetCellValue(sheet, "A1", "Stock Market Data Used in Irrational Exuberance"))
	require.NoError(t, f.SetSheetRow(sheet, "A8", &[]interface{}{"Date", "P", "D", "E", "", "CAPE", "CAPE"}))

	data := [][]interface{}{
		{1871.01, 4.44, 0.26, 0.4, nil, nil, nil},
		{2020.1, 3500.0, nil, nil, nil, 31.2, 1.5},
		{2020.12, 3700.0, nil, nil, nil, 33.7, 1.6},
	}
	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, 9+i)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "ie_data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestSpreadsheetReader(t *testing.T) {
	path := writeShillerWorkbook(t, "Data")

	r := NewSpreadsheetReader(path, "data", 7, nil)
	table, err := r.FetchTable(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "P", "D", "E", "Unnamed: 4", "CAPE", "CAPE.1"}, table.Headers)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "1871.01", table.Rows[0][0])
	assert.Equal(t, "2020.1", table.Rows[1][0], "numeric dates are read unformatted")
	assert.Equal(t, "31.2", table.Rows[1][5])
	assert.Equal(t, "2020.12", table.Rows[2][0])
	assert.Equal(t, path+"[Data]", table.Source)
}

func TestSpreadsheetReader_Errors(t *testing.T) {
	path := writeShillerWorkbook(t, "Data")

	tests := []struct {
		name      string
		path      string
		sheet     string
		headerRow int
		wantType  apperrors.ErrorType
	}{
		{name: "missing file", path: filepath.Join(t.TempDir(), "ie_data.xlsx"), sheet: "Data", headerRow: 7, wantType: apperrors.ErrTypeMissingDependency},
		{name: "missing sheet", path: path, sheet: "Monthly", headerRow: 7, wantType: apperrors.ErrTypeConfig},
		{name: "header beyond sheet", path: path, sheet: "Data", headerRow: 50, wantType: apperrors.ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSpreadsheetReader(tt.path, tt.sheet, tt.headerRow, nil)
			_, err := r.FetchTable(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
		})
	}
}

func TestUniqueLabels(t *testing.T) {
	got := uniqueLabels([]string{"Date", " CAPE ", "", "CAPE", "CAPE", "Date"})
	assert.Equal(t, []string{"Date", "CAPE", "Unnamed: 2", "CAPE.1", "CAPE.2", "Date.1"}, got)
}
