package fetch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"
)

// fakeSheetsAPI is an httptest-backed stand-in for the spreadsheet API.
// It serves metadata and values for a single document and records
// every range request so tests can assert pagination behavior.
type fakeSheetsAPI struct {
	t *testing.T

	mu sync.Mutex
	// requests records "render:range" in arrival order.
	requests []string

	spreadsheetID string
	title         string
	sheets        []fakeSheet

	// metadataStatusForKey forces a status on API-key metadata calls.
	metadataStatusForKey int
	// acceptToken is the bearer token the fake accepts; "" accepts none.
	acceptToken string
	// rateLimitFirst makes the first N value requests respond 429.
	rateLimitFirst int

	server *httptest.Server
}

type fakeSheet struct {
	id   int
	name string
	rows int
	cols int
	// values and formulas are keyed by zero-based {row, col}.
	values   map[[2]int]interface{}
	formulas map[[2]int]string
}

func newFakeSheetsAPI(t *testing.T) *fakeSheetsAPI {
	f := &fakeSheetsAPI{t: t, spreadsheetID: "FAKE-DOC-0001", title: "Fake Doc"}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSheetsAPI) config() Config {
	return Config{
		APIBaseURL:          f.server.URL,
		ExportBaseURL:       f.server.URL + "/export-base",
		HTTPClient:          f.server.Client(),
		ServiceAccountEmail: "reader@fake-tool.iam.example.com",
	}
}

func (f *fakeSheetsAPI) handle(w http.ResponseWriter, r *http.Request) {
	hasKey := r.URL.Query().Get("key") != ""
	bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	authorized := false
	switch {
	case hasKey && f.metadataStatusForKey == 0:
		authorized = true
	case bearer != "" && bearer == f.acceptToken:
		authorized = true
	}

	path := strings.TrimPrefix(r.URL.Path, "/")
	switch {
	case path == f.spreadsheetID:
		if !authorized {
			status := f.metadataStatusForKey
			if status == 0 || !hasKey {
				status = http.StatusForbidden
			}
			http.Error(w, `{"error":{"status":"PERMISSION_DENIED"}}`, status)
			return
		}
		f.writeMetadata(w)
	case strings.HasPrefix(path, f.spreadsheetID+"/values/"):
		if !authorized {
			http.Error(w, `{"error":{"status":"PERMISSION_DENIED"}}`, http.StatusForbidden)
			return
		}
		f.mu.Lock()
		limited := f.rateLimitFirst > 0
		if limited {
			f.rateLimitFirst--
		}
		f.mu.Unlock()
		if limited {
			http.Error(w, `{"error":{"status":"RESOURCE_EXHAUSTED"}}`, http.StatusTooManyRequests)
			return
		}
		f.writeValues(w, r, strings.TrimPrefix(path, f.spreadsheetID+"/values/"))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSheetsAPI) writeMetadata(w http.ResponseWriter) {
	var meta spreadsheetMeta
	meta.Properties.Title = f.title
	for _, s := range f.sheets {
		var sm sheetMeta
		sm.Properties.SheetID = s.id
		sm.Properties.Title = s.name
		sm.Properties.Grid.RowCount = s.rows
		sm.Properties.Grid.ColumnCount = s.cols
		meta.Sheets = append(meta.Sheets, sm)
	}
	json.NewEncoder(w).Encode(meta)
}

// writeValues serves a rectangular slice of the first matching sheet.
func (f *fakeSheetsAPI) writeValues(w http.ResponseWriter, r *http.Request, rangeA1 string) {
	render := r.URL.Query().Get("valueRenderOption")

	f.mu.Lock()
	f.requests = append(f.requests, render+":"+rangeA1)
	f.mu.Unlock()

	sheetName, startRow, endRow, startCol, endCol, err := parseTestRange(rangeA1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var sheet *fakeSheet
	for i := range f.sheets {
		if f.sheets[i].name == sheetName {
			sheet = &f.sheets[i]
			break
		}
	}
	if sheet == nil {
		http.Error(w, "no such sheet", http.StatusBadRequest)
		return
	}

	var vr valueRange
	vr.Range = rangeA1
	for row := startRow; row <= endRow && row < sheet.rows; row++ {
		var out []interface{}
		for col := startCol; col <= endCol && col < sheet.cols; col++ {
			key := [2]int{row, col}
			if render == renderFormulas {
				if formula, ok := sheet.formulas[key]; ok {
					out = append(out, formula)
					continue
				}
			}
			if v, ok := sheet.values[key]; ok {
				out = append(out, v)
			} else {
				out = append(out, "")
			}
		}
		vr.Values = append(vr.Values, out)
	}
	// The real service omits trailing blank cells and rows from value
	// responses even when the declared grid is larger.
	for i, row := range vr.Values {
		end := len(row)
		for end > 0 && row[end-1] == "" {
			end--
		}
		vr.Values[i] = row[:end]
	}
	for len(vr.Values) > 0 && len(vr.Values[len(vr.Values)-1]) == 0 {
		vr.Values = vr.Values[:len(vr.Values)-1]
	}
	json.NewEncoder(w).Encode(vr)
}

// parseTestRange understands 'Name'!A{r1}:{COL}{r2} as produced by the
// batch reader, returning zero-based inclusive bounds.
func parseTestRange(rangeA1 string) (name string, startRow, endRow, startCol, endCol int, err error) {
	bang := strings.LastIndex(rangeA1, "!")
	if bang < 0 {
		return "", 0, 0, 0, 0, fmt.Errorf("no sheet in range %q", rangeA1)
	}
	name = strings.Trim(rangeA1[:bang], "'")
	parts := strings.SplitN(rangeA1[bang+1:], ":", 2)
	if len(parts) != 2 {
		return "", 0, 0, 0, 0, fmt.Errorf("bad range %q", rangeA1)
	}
	start, ok1 := models.ParseA1(parts[0])
	end, ok2 := models.ParseA1(parts[1])
	if !ok1 || !ok2 {
		return "", 0, 0, 0, 0, fmt.Errorf("bad cells in range %q", rangeA1)
	}
	return name, start.Row, end.Row, start.Col, end.Col, nil
}
