package parser

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"
)

// ParseHTMLTable parses pasted HTML (clipboard content) into a
// single-sheet workbook. The first <table> element wins. Google Sheets
// annotates copied cells with data-sheets-formula and
// data-sheets-hyperlink attributes; both are honored, and image-bearing
// formulas are promoted into the value slot so downstream rendering
// keeps the image.
func ParseHTMLTable(src string) (*models.Workbook, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	table := findFirst(doc, "table")
	if table == nil {
		return nil, ErrNoTable
	}

	sheet := models.NewSheet("Pasted")
	row := 0
	walkRows(table, func(tr *html.Node) {
		col := 0
		for td := tr.FirstChild; td != nil; td = td.NextSibling {
			if td.Type != html.ElementNode || (td.Data != "td" && td.Data != "th") {
				continue
			}
			sheet.SetCell(row, col, htmlCell(td))
			col++
		}
		row++
	})

	wb := models.NewWorkbook("")
	wb.AddSheet(sheet)
	wb.CrossReferences = DetectCrossReferences(wb)
	return wb, nil
}

// htmlCell converts one <td>/<th> into a Cell.
func htmlCell(td *html.Node) models.Cell {
	formula := attr(td, "data-sheets-formula")
	hyperlink := attr(td, "data-sheets-hyperlink")
	text := strings.TrimSpace(textContent(td))

	cell := models.NewCell(coerceScalar(text))
	if formula != "" {
		cell.Formula = formula
		if IsImageFormula(formula) {
			cell.Value = formula
			cell.Type = models.TypeString
		}
	} else if hyperlink != "" && LooksLikeImageURL(hyperlink) {
		cell.Value = hyperlink
		cell.Type = models.TypeString
	}
	return cell
}

// coerceScalar turns numeric- and boolean-looking text into typed
// values the way spreadsheet cells carry them.
func coerceScalar(text string) interface{} {
	if text == "" {
		return nil
	}
	switch strings.ToUpper(text) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	plain := strings.ReplaceAll(text, ",", "")
	if f, err := strconv.ParseFloat(plain, 64); err == nil {
		return f
	}
	return text
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// walkRows visits every <tr> under a table, including those nested in
// <thead>/<tbody>/<tfoot>.
func walkRows(n *html.Node, visit func(tr *html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "tr":
			visit(c)
		case "thead", "tbody", "tfoot":
			walkRows(c, visit)
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
