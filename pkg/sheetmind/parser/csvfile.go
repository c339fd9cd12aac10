package parser

import (
	"bytes"
	"encoding/csv"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads CSV content into a single-sheet workbook. Exports are
// not always UTF-8: content that fails UTF-8 validation is re-decoded
// as Windows-1252 before parsing.
func ParseCSV(r io.Reader, sheetName string) (*models.Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		if decoded, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
			data = decoded
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	sheet := models.NewSheet(sheetName)
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for col, field := range record {
			if field == "" {
				continue
			}
			sheet.SetCell(row, col, models.NewCell(coerceScalar(field)))
		}
		row++
	}

	wb := models.NewWorkbook("")
	wb.AddSheet(sheet)
	return wb, nil
}
