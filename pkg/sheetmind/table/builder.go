// Package table converts sheets into normalized tables and merges
// tables across sheets.
package table

import (
	"context"
	"strconv"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"
	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/parser"
)

const (
	// DefaultChunkSize is the number of rows processed per tick by the
	// chunked builder.
	DefaultChunkSize = 2000

	// RawPassThroughRows is the row count above which per-cell formula
	// and date preprocessing is skipped and raw values pass through.
	// Deliberate fidelity-for-responsiveness trade on huge sheets.
	RawPassThroughRows = 100000
)

// YieldFunc is called between chunks by the chunked builder. Returning
// an error (typically ctx.Err) aborts the build.
type YieldFunc func(ctx context.Context) error

// BuildOptions configures table building.
type BuildOptions struct {
	// ChunkSize is rows per tick for BuildChunked. Zero means
	// DefaultChunkSize.
	ChunkSize int
	// Yield runs between chunks. Nil means a context check only.
	Yield YieldFunc
	// RawAbove overrides RawPassThroughRows when positive.
	RawAbove int
}

func (o BuildOptions) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return DefaultChunkSize
}

func (o BuildOptions) rawAbove() int {
	if o.RawAbove > 0 {
		return o.RawAbove
	}
	return RawPassThroughRows
}

// Build converts a sheet into a table in one pass. The first row
// supplies column names; remaining rows become row maps.
func Build(sheet *models.Sheet, opts BuildOptions) *models.Table {
	t, _ := build(context.Background(), sheet, opts, 0, nil)
	return t
}

// BuildChunked is the cooperative variant of Build: it processes a
// bounded number of rows per tick and yields control between chunks so
// a caller is never blocked for more than one chunk's worth of work.
// Output is identical to Build for any chunk size.
func BuildChunked(ctx context.Context, sheet *models.Sheet, opts BuildOptions) (*models.Table, error) {
	return build(ctx, sheet, opts, opts.chunkSize(), opts.Yield)
}

func build(ctx context.Context, sheet *models.Sheet, opts BuildOptions, chunkSize int, yield YieldFunc) (*models.Table, error) {
	columns := Headers(sheet)
	t := &models.Table{
		Columns:     columns,
		Rows:        []models.Row{},
		SourceLabel: sheet.Name,
	}

	dataRows := sheet.Extent.Rows - 1
	if dataRows < 0 {
		dataRows = 0
	}
	rawOnly := sheet.Extent.Rows > opts.rawAbove()

	processed := 0
	for row := 1; row <= dataRows; row++ {
		t.Rows = append(t.Rows, buildRow(sheet, row, columns, rawOnly))
		processed++
		if chunkSize > 0 && processed%chunkSize == 0 && row < dataRows {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if yield != nil {
				if err := yield(ctx); err != nil {
					return nil, err
				}
			}
		}
	}
	return t, nil
}

// buildRow materializes one data row. Cells absent from the sheet stay
// absent from the row map; consumers distinguish missing keys from
// explicit empty strings.
func buildRow(sheet *models.Sheet, row int, columns []string, rawOnly bool) models.Row {
	out := make(models.Row)
	for col, name := range columns {
		cell, ok := sheet.Cells[models.CellRef{Row: row, Col: col}]
		if !ok {
			continue
		}
		if rawOnly {
			out[name] = cell.Value
			continue
		}
		out[name] = normalizeCell(cell, name)
	}
	return out
}

// normalizeCell applies the image classifier and the date heuristic to
// a single cell value.
func normalizeCell(cell models.Cell, header string) interface{} {
	if cell.Formula != "" && parser.IsImageFormula(cell.Formula) {
		// The computed value of an image formula is a blank or a
		// number; the formula text is what downstream rendering needs.
		return cell.Formula
	}
	if cell.Type == models.TypeNumber {
		if v, ok := cell.Value.(float64); ok {
			if display, ok := parser.ConvertDateSerial(v, header, cell.NumberFormat); ok {
				return display
			}
		}
	}
	return cell.Value
}

// Headers reads the first sheet row and disambiguates column names:
// empty headers become __EMPTY, __EMPTY_1, ...; a repeated name X
// becomes X, X_1, X_2, ... Disambiguation is deterministic and
// collision-free.
func Headers(sheet *models.Sheet) []string {
	cols := sheet.Extent.Cols
	columns := make([]string, 0, cols)
	used := make(map[string]bool, cols)
	empties := 0

	for col := 0; col < cols; col++ {
		name := headerText(sheet.Cell(0, col))
		if name == "" {
			name = "__EMPTY"
			if empties > 0 {
				name = "__EMPTY_" + strconv.Itoa(empties)
			}
			empties++
		}
		if used[name] {
			base := name
			for i := 1; ; i++ {
				name = base + "_" + strconv.Itoa(i)
				if !used[name] {
					break
				}
			}
		}
		used[name] = true
		columns = append(columns, name)
	}
	return columns
}

func headerText(cell models.Cell) string {
	switch v := cell.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
