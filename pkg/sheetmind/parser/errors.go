package parser

import "errors"

// ErrNoTable indicates pasted HTML contained no <table> element.
var ErrNoTable = errors.New("no table found in pasted content")

// ErrEmptyWorkbook indicates a workbook file parsed but held no sheets.
var ErrEmptyWorkbook = errors.New("workbook contains no sheets")
