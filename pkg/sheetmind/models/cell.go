// Package models defines data structures for spreadsheet ingestion.
package models

import (
	"strconv"
	"strings"
)

// CellType classifies the inferred type of a cell value.
type CellType string

const (
	// TypeString is a textual cell value.
	TypeString CellType = "string"
	// TypeNumber is a numeric cell value (stored as float64).
	TypeNumber CellType = "number"
	// TypeBool is a boolean cell value.
	TypeBool CellType = "boolean"
	// TypeEmpty is an empty cell.
	TypeEmpty CellType = "empty"
)

// Cell is the atomic unit of a sheet.
type Cell struct {
	// Value is the last computed/display value: string, float64, bool or nil.
	// When Formula is set, Value never holds the formula text, unless the
	// image classifier promoted an image-bearing formula into the value slot.
	Value interface{} `json:"value"`
	// Formula is the raw formula text including the leading "=", or "".
	Formula string `json:"formula,omitempty"`
	// NumberFormat is the stored number format string (e.g. "yyyy-mm-dd"), or "".
	NumberFormat string `json:"number_format,omitempty"`
	// Type is the inferred type of Value.
	Type CellType `json:"type"`
}

// NewCell builds a Cell from a raw value, inferring its type.
// Integer-typed values are widened to float64 so that numeric cells
// compare uniformly regardless of their source parser.
func NewCell(value interface{}) Cell {
	switch v := value.(type) {
	case nil:
		return Cell{Type: TypeEmpty}
	case bool:
		return Cell{Value: v, Type: TypeBool}
	case float64:
		return Cell{Value: v, Type: TypeNumber}
	case float32:
		return Cell{Value: float64(v), Type: TypeNumber}
	case int:
		return Cell{Value: float64(v), Type: TypeNumber}
	case int64:
		return Cell{Value: float64(v), Type: TypeNumber}
	case string:
		if v == "" {
			return Cell{Type: TypeEmpty}
		}
		return Cell{Value: v, Type: TypeString}
	default:
		return Cell{Value: value, Type: TypeString}
	}
}

// IsEmpty reports whether the cell carries no value and no formula.
func (c Cell) IsEmpty() bool {
	return c.Type == TypeEmpty && c.Formula == ""
}

// CellRef addresses a cell by zero-based row and column.
type CellRef struct {
	Row int
	Col int
}

// A1 returns the "A1"-style address for the reference.
func (r CellRef) A1() string {
	return ColumnName(r.Col) + strconv.Itoa(r.Row+1)
}

// ColumnName converts a zero-based column index to its letter name
// (0 → "A", 25 → "Z", 26 → "AA").
func ColumnName(col int) string {
	name := make([]byte, 0, 3)
	n := col + 1
	for n > 0 {
		n--
		name = append(name, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(name)-1; i < j; i, j = i+1, j-1 {
		name[i], name[j] = name[j], name[i]
	}
	return string(name)
}

// ColumnIndex converts a column letter name to its zero-based index
// ("A" → 0, "ZZ" → 701). Returns -1 for an invalid name.
func ColumnIndex(name string) int {
	if name == "" {
		return -1
	}
	n := 0
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		if ch < 'A' || ch > 'Z' {
			return -1
		}
		n = n*26 + int(ch-'A') + 1
	}
	return n - 1
}

// ParseA1 splits an "A1"-style address into a CellRef.
// Returns false for malformed addresses.
func ParseA1(addr string) (CellRef, bool) {
	i := 0
	for i < len(addr) {
		ch := addr[i]
		if (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') {
			i++
			continue
		}
		break
	}
	if i == 0 || i == len(addr) {
		return CellRef{}, false
	}
	col := ColumnIndex(addr[:i])
	row, err := strconv.Atoi(addr[i:])
	if col < 0 || err != nil || row < 1 {
		return CellRef{}, false
	}
	return CellRef{Row: row - 1, Col: col}, true
}

var sheetNameReplacer = strings.NewReplacer(
	"[", "(", "]", ")", "*", "", "?", "", ":", "-", "/", "-", "\\", "-", "'", "",
)

// SanitizeSheetName replaces characters that are illegal in sheet names.
func SanitizeSheetName(name string) string {
	name = strings.TrimSpace(sheetNameReplacer.Replace(name))
	if name == "" {
		return "Sheet"
	}
	return name
}
