package parser

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"
)

// ParseXLSX reads a binary workbook into the ingestion model. Every
// sheet is materialized; per-cell formulas are fetched so the image
// classifier can preserve image-bearing cells, and number formats ride
// along for the date heuristic.
func ParseXLSX(r io.Reader) (*models.Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, ErrEmptyWorkbook
	}

	wb := models.NewWorkbook("")
	for _, sheetName := range sheetList {
		sheet, err := parseXLSXSheet(f, sheetName)
		if err != nil {
			// A broken sheet becomes an empty placeholder so sheet
			// indices stay stable for the caller.
			sheet = models.NewSheet(sheetName)
		}
		wb.AddSheet(sheet)
	}
	wb.CrossReferences = DetectCrossReferences(wb)
	return wb, nil
}

func parseXLSXSheet(f *excelize.File, sheetName string) (*models.Sheet, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	sheet := models.NewSheet(sheetName)
	for rowIdx, row := range rows {
		for colIdx, raw := range row {
			cellName, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)

			// An unevaluated formula cell can carry an empty cached
			// value, so formulas are checked even for blank cells.
			formula, _ := f.GetCellFormula(sheetName, cellName)
			if raw == "" && formula == "" {
				continue
			}
			cell := models.NewCell(coerceScalar(raw))
			if formula != "" {
				cell.Formula = "=" + formula
				if IsImageFormula(cell.Formula) {
					cell.Value = cell.Formula
					cell.Type = models.TypeString
				}
			}
			if styleID, err := f.GetCellStyle(sheetName, cellName); err == nil && styleID != 0 {
				if style, err := f.GetStyle(styleID); err == nil && style != nil && style.CustomNumFmt != nil {
					cell.NumberFormat = *style.CustomNumFmt
				}
			}
			sheet.SetCell(rowIdx, colIdx, cell)
		}
	}
	return sheet, nil
}
