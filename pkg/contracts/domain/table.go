package domain

// RawTable is tabular source data before normalization: one header row and
// string cells, exactly as the source produced them.
type RawTable struct {
	Source  string     `json:"source"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Cell returns the cell at row i, column j, or "" when the row is short
func (t RawTable) Cell(i, j int) string {
	if i < 0 || i >= len(t.Rows) || j < 0 || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}
