package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"
	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/parser"
)

// ExportFetcher is the unauthenticated bulk path: it downloads a
// publicly shared document through the export endpoint as a whole
// workbook (xlsx), falling back to per-tab CSV when the workbook
// export is refused.
type ExportFetcher struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewExportFetcher builds an ExportFetcher from config.
func NewExportFetcher(cfg Config, logger *zap.Logger) *ExportFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportFetcher{cfg: cfg, http: cfg.httpClient(), logger: logger}
}

// Fetch downloads and parses the document. Only documents shared as
// "anyone with the link" succeed here; private documents redirect to a
// login page, which is rejected as invalid content.
func (e *ExportFetcher) Fetch(ctx context.Context, ref SheetsURL) (*models.Workbook, error) {
	xlsxURL := fmt.Sprintf("%s/%s/export?format=xlsx", e.cfg.exportBaseURL(), ref.SpreadsheetID)
	data, err := e.download(ctx, xlsxURL)
	if err == nil {
		wb, perr := parser.ParseXLSX(bytes.NewReader(data))
		if perr == nil {
			return wb, nil
		}
		err = wrapError(KindInvalidContent, perr, "export was not a parseable workbook")
	}
	e.logger.Debug("xlsx export failed, trying csv", zap.Error(err))

	gid := ref.GID
	if gid < 0 {
		gid = 0
	}
	csvURL := fmt.Sprintf("%s/%s/export?format=csv&gid=%d", e.cfg.exportBaseURL(), ref.SpreadsheetID, gid)
	data, csvErr := e.download(ctx, csvURL)
	if csvErr != nil {
		return nil, err
	}
	wb, perr := parser.ParseCSV(bytes.NewReader(data), "Sheet1")
	if perr != nil {
		return nil, wrapError(KindInvalidContent, perr, "csv export was not parseable")
	}
	return wb, nil
}

func (e *ExportFetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, wrapError(KindInvalidURL, err, "building export request")
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return nil, wrapError(KindNetwork, err, "requesting export")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(classifyStatus(resp.StatusCode), "export responded %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(KindNetwork, err, "reading export body")
	}
	if looksLikeHTML(resp.Header.Get("Content-Type"), data) {
		// Private documents serve a login page with status 200.
		return nil, newError(KindForbidden, "export returned a sign-in page; the document is private")
	}
	return data, nil
}

func looksLikeHTML(contentType string, data []byte) bool {
	if strings.Contains(contentType, "html") {
		return true
	}
	head := bytes.TrimSpace(data)
	if len(head) > 64 {
		head = head[:64]
	}
	lower := bytes.ToLower(head)
	return bytes.HasPrefix(lower, []byte("<!doctype")) || bytes.HasPrefix(lower, []byte("<html"))
}
