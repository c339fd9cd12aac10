// Package sheetmind ingests spreadsheet-shaped sources (remote Google
// Sheets documents, workbook files, pasted HTML) and normalizes them
// into a single tabular model.
package sheetmind

import "github.com/sheetmind/sheetmind-go/pkg/sheetmind/fetch"

// Options configures one ingestion run.
type Options struct {
	// Sheet selects a single sheet by name. Empty selects the first
	// sheet, or every sheet when MergeSheets is set.
	Sheet string
	// MergeSheets unions all sheets into one table with a leading
	// _sourceSheet provenance column.
	MergeSheets bool
	// ChunkSize is rows per tick for the cooperative table builder.
	// Zero uses the builder default.
	ChunkSize int
	// RawAbove overrides the row threshold above which per-cell
	// preprocessing is skipped. Zero uses the builder default.
	RawAbove int
	// Progress receives load progress for remote sources. May be nil.
	Progress fetch.ProgressFunc
}
