package sheetmind

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/fetch"
	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"
	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/parser"
	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/table"
)

// Result is the output of one ingestion run.
type Result struct {
	// Table is the normalized table.
	Table *models.Table
	// Workbook is the source workbook, including detected
	// cross-spreadsheet references.
	Workbook *models.Workbook
}

// Ingestor ties the fetch strategies, local parsers and the table
// builder together. Each run owns its own workbook and table; the
// Ingestor itself holds only read-only configuration.
type Ingestor struct {
	cfg      fetch.Config
	selector *fetch.Selector
	proxy    *fetch.ProxyFetcher
	logger   *zap.Logger
}

// New builds an Ingestor. A nil logger is replaced with a nop logger.
func New(cfg fetch.Config, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		cfg:      cfg,
		selector: fetch.NewSelector(cfg, logger),
		proxy:    fetch.NewProxyFetcher(cfg, logger),
		logger:   logger,
	}
}

// IngestURL fetches and normalizes a remote spreadsheet. tokenSource
// may be nil when no OAuth session exists.
func (in *Ingestor) IngestURL(ctx context.Context, rawURL string, tokenSource oauth2.TokenSource, opts Options) (*Result, error) {
	wb, err := in.selector.Fetch(ctx, rawURL, tokenSource, opts.Progress)
	if err != nil {
		return nil, err
	}
	return in.normalize(ctx, wb, opts)
}

// IngestFile parses and normalizes a local workbook file. CSV files
// are detected by extension; everything else goes through the binary
// workbook parser.
func (in *Ingestor) IngestFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return in.IngestReader(ctx, f, filepath.Base(path), opts)
}

// IngestReader parses and normalizes workbook content from a reader.
// name supplies the source label and drives format detection.
func (in *Ingestor) IngestReader(ctx context.Context, r io.Reader, name string, opts Options) (*Result, error) {
	var (
		wb  *models.Workbook
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		wb, err = parser.ParseCSV(r, base)
	} else {
		wb, err = parser.ParseXLSX(r)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return in.normalize(ctx, wb, opts)
}

// IngestHTML parses and normalizes pasted HTML clipboard content.
func (in *Ingestor) IngestHTML(ctx context.Context, src string, opts Options) (*Result, error) {
	wb, err := parser.ParseHTMLTable(src)
	if err != nil {
		return nil, err
	}
	return in.normalize(ctx, wb, opts)
}

// IngestText handles plain pasted text: a bare image URL or an
// =IMAGE(...) formula becomes a one-column, one-row table. A URL the
// classifier cannot place is probed through the proxy chain and
// accepted when it actually serves image content.
func (in *Ingestor) IngestText(ctx context.Context, text string, opts Options) (*Result, error) {
	text = strings.TrimSpace(text)
	if parser.ImageURL(text) == "" {
		if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
			return nil, ErrUnsupportedSource
		}
		_, contentType, err := in.proxy.FetchImage(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
		}
		if !strings.HasPrefix(contentType, "image/") {
			return nil, fmt.Errorf("%w: url serves %s", ErrUnsupportedSource, contentType)
		}
	}
	t := &models.Table{
		Columns:     []string{"image"},
		Rows:        []models.Row{{"image": text}},
		SourceLabel: "pasted",
	}
	return &Result{Table: t}, nil
}

// normalize builds tables for the selected sheets and optionally
// merges them. Sheets are processed one at a time so memory stays
// bounded to a single sheet for huge documents.
func (in *Ingestor) normalize(ctx context.Context, wb *models.Workbook, opts Options) (*Result, error) {
	names, err := in.selectSheets(wb, opts)
	if err != nil {
		return nil, err
	}

	buildOpts := table.BuildOptions{ChunkSize: opts.ChunkSize, RawAbove: opts.RawAbove}
	tables := make([]*models.Table, 0, len(names))
	for _, name := range names {
		sheet := wb.Sheets[name]
		t, err := table.BuildChunked(ctx, sheet, buildOpts)
		if err != nil {
			return nil, err
		}
		in.logger.Debug("built table",
			zap.String("sheet", name), zap.Int("rows", t.RowCount()))
		tables = append(tables, t)
		// The sheet is consumed; release its cells before the next one.
		wb.Sheets[name] = models.NewSheet(name)
	}

	out := tables[0]
	if len(tables) > 1 {
		out = table.Merge(tables)
	}
	for _, ref := range wb.CrossReferences {
		in.logger.Warn("spreadsheet depends on another document",
			zap.String("target", ref.TargetSpreadsheetID),
			zap.String("range", ref.TargetRange),
			zap.String("cell", ref.FoundInSheet+"!"+ref.FoundInCell))
	}
	return &Result{Table: out, Workbook: wb}, nil
}

func (in *Ingestor) selectSheets(wb *models.Workbook, opts Options) ([]string, error) {
	if len(wb.SheetNames) == 0 {
		return nil, ErrNoSheets
	}
	if opts.Sheet != "" {
		if wb.Sheet(opts.Sheet) == nil {
			return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, opts.Sheet)
		}
		return []string{opts.Sheet}, nil
	}
	if opts.MergeSheets {
		return wb.SheetNames, nil
	}
	return wb.SheetNames[:1], nil
}
