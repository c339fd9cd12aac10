package parser

import (
	"testing"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"
)

func TestDetectCrossReferences(t *testing.T) {
	sheet := models.NewSheet("Data")
	sheet.SetCell(0, 0, models.NewCell("header"))

	importCell := models.NewCell(42.0)
	importCell.Formula = `=IMPORTRANGE("https://docs.google.com/spreadsheets/d/XYZ1234567","Sheet1!A:Z")`
	sheet.SetCell(6, 1, importCell) // B7

	dup := models.NewCell(7.0)
	dup.Formula = `=IMPORTRANGE("https://docs.google.com/spreadsheets/d/XYZ1234567","Sheet1!A:Z")`
	sheet.SetCell(10, 3, dup)

	other := models.NewCell(nil)
	other.Formula = `=importrange("ABCDEFGHIJ1234", "Prices!B2:C9")`
	sheet.SetCell(12, 0, other)

	plain := models.NewCell(3.0)
	plain.Formula = "=SUM(A1:A3)"
	sheet.SetCell(13, 0, plain)

	wb := models.NewWorkbook("")
	wb.AddSheet(sheet)

	refs := DetectCrossReferences(wb)
	if len(refs) != 2 {
		t.Fatalf("expected 2 cross references, got %d: %v", len(refs), refs)
	}

	first := refs[0]
	if first.TargetSpreadsheetID != "XYZ1234567" {
		t.Errorf("TargetSpreadsheetID = %q, want XYZ1234567", first.TargetSpreadsheetID)
	}
	if first.TargetRange != "Sheet1!A:Z" {
		t.Errorf("TargetRange = %q, want Sheet1!A:Z", first.TargetRange)
	}
	if first.FoundInSheet != "Data" {
		t.Errorf("FoundInSheet = %q, want Data", first.FoundInSheet)
	}
	if first.FoundInCell != "B7" {
		t.Errorf("FoundInCell = %q, want B7", first.FoundInCell)
	}

	second := refs[1]
	if second.TargetSpreadsheetID != "ABCDEFGHIJ1234" {
		t.Errorf("bare id target = %q, want ABCDEFGHIJ1234", second.TargetSpreadsheetID)
	}
}

func TestSpreadsheetIDFromURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://docs.google.com/spreadsheets/d/1aBcD_e-F2g/edit#gid=0", "1aBcD_e-F2g"},
		{"1aBcD_e-F2gHiJkLm", "1aBcD_e-F2gHiJkLm"},
		{"https://example.com/not-a-sheet", ""},
		{"short", ""},
	}
	for _, tt := range tests {
		if got := SpreadsheetIDFromURL(tt.input); got != tt.want {
			t.Errorf("SpreadsheetIDFromURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
