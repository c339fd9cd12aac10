package sheetmind

import "errors"

// ErrNoSheets indicates an ingested workbook held no usable sheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// ErrSheetNotFound indicates the selected sheet name is absent.
var ErrSheetNotFound = errors.New("selected sheet not found")

// ErrUnsupportedSource indicates pasted text was neither an image URL,
// an image formula, nor parseable tabular content.
var ErrUnsupportedSource = errors.New("unsupported source content")
