package models

// Row is a single normalized table row: a plain mapping from column
// name to value. A row's key set is always a subset of its table's
// Columns; columns the row did not originate from are absent, not nil.
type Row map[string]interface{}

// Table is the ingestion pipeline's output: an ordered column list and
// a sequence of row maps.
type Table struct {
	// Columns lists column names in order. Names are unique; duplicates
	// and empties are disambiguated deterministically by the builder.
	Columns []string `json:"columns"`
	// Rows holds one map per data row (header row excluded).
	Rows []Row `json:"rows"`
	// SourceLabel identifies where the table came from (sheet name,
	// file name, or URL).
	SourceLabel string `json:"source_label,omitempty"`
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
