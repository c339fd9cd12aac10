package parser

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "Header1")
	f.SetCellValue(sheetName, "B1", "Header2")
	f.SetCellValue(sheetName, "A2", 100)
	f.SetCellValue(sheetName, "B2", "Text")
	f.SetCellFormula(sheetName, "A3", `IMAGE("https://example.com/logo.png")`)

	tmpFile := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("failed to save test file: %v", err)
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		t.Fatalf("failed to read test file: %v", err)
	}
	wb, err := ParseXLSX(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseXLSX failed: %v", err)
	}

	sheet := wb.FirstSheet()
	if sheet == nil {
		t.Fatal("expected one sheet")
	}
	if got := sheet.Cell(0, 0).Value; got != "Header1" {
		t.Errorf("A1 = %v, want Header1", got)
	}
	if got := sheet.Cell(1, 0).Value; got != 100.0 {
		t.Errorf("A2 = %v (%T), want 100", got, got)
	}

	img := sheet.Cell(2, 0)
	if img.Formula == "" {
		t.Fatal("A3 formula missing")
	}
	if !IsImageFormula(img.Formula) {
		t.Errorf("A3 formula %q not classified as image", img.Formula)
	}
	if img.Value != img.Formula {
		t.Errorf("image formula not promoted: %v", img.Value)
	}
}

func TestParseCSV(t *testing.T) {
	csv := "name,likes,date\nalice,12000,2023-01-01\nbob,7,2023-01-02\n"
	wb, err := ParseCSV(bytes.NewReader([]byte(csv)), "export")
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	sheet := wb.FirstSheet()
	if sheet.Name != "export" {
		t.Errorf("sheet name = %q, want export", sheet.Name)
	}
	if sheet.Extent.Rows != 3 {
		t.Errorf("rows = %d, want 3", sheet.Extent.Rows)
	}
	if got := sheet.Cell(1, 1).Value; got != 12000.0 {
		t.Errorf("likes cell = %v (%T), want 12000", got, got)
	}
	if got := sheet.Cell(2, 0).Value; got != "bob" {
		t.Errorf("name cell = %v, want bob", got)
	}
}

func TestParseCSVWindows1252(t *testing.T) {
	// "café" with an 0xE9 latin-1 e-acute, invalid as UTF-8.
	raw := []byte("name\ncaf\xe9\n")
	wb, err := ParseCSV(bytes.NewReader(raw), "latin")
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if got := wb.FirstSheet().Cell(1, 0).Value; got != "café" {
		t.Errorf("decoded cell = %q, want café", got)
	}
}
