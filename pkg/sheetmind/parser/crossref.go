package parser

import (
	"regexp"
	"sort"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"
)

// IMPORTRANGE's first argument is either a full spreadsheet URL or a
// bare document id; the second is the cited range.
var (
	reImportRange   = regexp.MustCompile(`(?i)IMPORTRANGE\s*\(\s*["']([^"']+)["']\s*,\s*["']([^"']+)["']`)
	reSpreadsheetID = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	reBareID        = regexp.MustCompile(`^[a-zA-Z0-9-_]{10,}$`)
)

// SpreadsheetIDFromURL extracts the document id from a Google Sheets
// URL, or returns the input unchanged when it already looks like a bare
// id. Returns "" for strings that are neither.
func SpreadsheetIDFromURL(s string) string {
	if m := reSpreadsheetID.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if reBareID.MatchString(s) {
		return s
	}
	return ""
}

// DetectCrossReferences scans every formula-bearing cell of a workbook
// for IMPORTRANGE calls and returns the referenced documents,
// deduplicated by target spreadsheet id. Detection is informational
// only; nothing here fetches the referenced documents.
func DetectCrossReferences(wb *models.Workbook) []models.CrossReference {
	var refs []models.CrossReference
	seen := make(map[string]bool)

	for _, name := range wb.SheetNames {
		sheet := wb.Sheets[name]
		if sheet == nil {
			continue
		}
		for _, ref := range sortedRefs(sheet) {
			cell := sheet.Cells[ref]
			if cell.Formula == "" {
				continue
			}
			m := reImportRange.FindStringSubmatch(cell.Formula)
			if m == nil {
				continue
			}
			id := SpreadsheetIDFromURL(m[1])
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			refs = append(refs, models.CrossReference{
				TargetSpreadsheetID: id,
				TargetRange:         m[2],
				FoundInSheet:        sheet.Name,
				FoundInCell:         ref.A1(),
			})
		}
	}
	return refs
}

// sortedRefs walks the sparse cell map in row-major order so detection
// output is deterministic across runs.
func sortedRefs(s *models.Sheet) []models.CellRef {
	refs := make([]models.CellRef, 0, len(s.Cells))
	for ref := range s.Cells {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Row != refs[j].Row {
			return refs[i].Row < refs[j].Row
		}
		return refs[i].Col < refs[j].Col
	})
	return refs
}
