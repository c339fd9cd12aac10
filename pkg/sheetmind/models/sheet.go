package models

// Extent is the declared size of a sheet in rows and columns.
type Extent struct {
	// Rows is the declared row count, including any header row.
	Rows int `json:"rows"`
	// Cols is the declared column count.
	Cols int `json:"cols"`
}

// Sheet is a sparsely stored grid of cells. Cells are keyed by
// (row, col) so that wide-but-sparse sheets stay cheap; the extent
// grows to cover every cell ever set.
type Sheet struct {
	// Name is the sheet name, unique within its workbook after sanitization.
	Name string `json:"name"`
	// Cells maps (row, col) to the cell stored there. Empty cells are absent.
	Cells map[CellRef]Cell `json:"-"`
	// Extent is the declared or observed size of the sheet.
	Extent Extent `json:"extent"`
}

// NewSheet creates an empty sheet with a sanitized name.
func NewSheet(name string) *Sheet {
	return &Sheet{
		Name:  SanitizeSheetName(name),
		Cells: make(map[CellRef]Cell),
	}
}

// SetCell stores a cell, growing the extent as needed. Empty cells are
// not stored but still grow the extent, so a trailing blank row that the
// source declares is preserved in the row count.
func (s *Sheet) SetCell(row, col int, c Cell) {
	if row < 0 || col < 0 {
		return
	}
	if row+1 > s.Extent.Rows {
		s.Extent.Rows = row + 1
	}
	if col+1 > s.Extent.Cols {
		s.Extent.Cols = col + 1
	}
	if c.IsEmpty() {
		return
	}
	s.Cells[CellRef{Row: row, Col: col}] = c
}

// Cell returns the cell at (row, col). Missing cells read as empty.
func (s *Sheet) Cell(row, col int) Cell {
	if c, ok := s.Cells[CellRef{Row: row, Col: col}]; ok {
		return c
	}
	return Cell{Type: TypeEmpty}
}

// IsEmpty reports whether the sheet holds no cells at all.
func (s *Sheet) IsEmpty() bool {
	return len(s.Cells) == 0
}
