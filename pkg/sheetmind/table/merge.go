package table

import "github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"

// SourceSheetColumn is the provenance column the merger prepends.
const SourceSheetColumn = "_sourceSheet"

// Merge unions several built tables into one. The column set is the
// union of all input columns in first-seen order, behind a leading
// provenance column; rows are concatenated in caller order. A row
// never gains keys for columns it didn't originate from.
func Merge(tables []*models.Table) *models.Table {
	merged := &models.Table{
		Columns:     []string{SourceSheetColumn},
		Rows:        []models.Row{},
		SourceLabel: "merged",
	}
	seen := map[string]bool{SourceSheetColumn: true}

	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, col := range t.Columns {
			if !seen[col] {
				seen[col] = true
				merged.Columns = append(merged.Columns, col)
			}
		}
		for _, row := range t.Rows {
			out := make(models.Row, len(row)+1)
			for k, v := range row {
				out[k] = v
			}
			out[SourceSheetColumn] = t.SourceLabel
			merged.Rows = append(merged.Rows, out)
		}
	}
	return merged
}
