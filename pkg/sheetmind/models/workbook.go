package models

import "strconv"

// CrossReference records a formula-level dependency on another
// spreadsheet document, found while scanning a workbook.
type CrossReference struct {
	// TargetSpreadsheetID is the referenced document's identifier.
	TargetSpreadsheetID string `json:"target_spreadsheet_id"`
	// TargetRange is the cited range, e.g. "Sheet1!A:Z".
	TargetRange string `json:"target_range"`
	// FoundInSheet is the sheet containing the referencing formula.
	FoundInSheet string `json:"found_in_sheet"`
	// FoundInCell is the "A1"-style address of the referencing cell.
	FoundInCell string `json:"found_in_cell"`
}

// Workbook is an ordered collection of sheets. SheetNames preserves the
// source order and drives default table selection.
type Workbook struct {
	// Title is the document title when the source supplies one.
	Title string `json:"title,omitempty"`
	// SheetNames lists sheet names in source order.
	SheetNames []string `json:"sheet_names"`
	// Sheets maps sheet name to its sheet.
	Sheets map[string]*Sheet `json:"-"`
	// CrossReferences lists detected references to other spreadsheets,
	// deduplicated by target spreadsheet id.
	CrossReferences []CrossReference `json:"cross_references,omitempty"`
}

// NewWorkbook creates an empty workbook.
func NewWorkbook(title string) *Workbook {
	return &Workbook{
		Title:  title,
		Sheets: make(map[string]*Sheet),
	}
}

// AddSheet appends a sheet, disambiguating name collisions with a
// numeric suffix so that SheetNames stays collision-free.
func (w *Workbook) AddSheet(s *Sheet) {
	name := s.Name
	for i := 1; ; i++ {
		if _, taken := w.Sheets[name]; !taken {
			break
		}
		name = s.Name + "_" + strconv.Itoa(i)
	}
	s.Name = name
	w.SheetNames = append(w.SheetNames, name)
	w.Sheets[name] = s
}

// Sheet returns the named sheet, or nil.
func (w *Workbook) Sheet(name string) *Sheet {
	return w.Sheets[name]
}

// FirstSheet returns the first sheet in source order, or nil for an
// empty workbook.
func (w *Workbook) FirstSheet() *Sheet {
	if len(w.SheetNames) == 0 {
		return nil
	}
	return w.Sheets[w.SheetNames[0]]
}
