package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"
	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/parser"
)

const (
	// BatchRows is the number of rows requested per range read.
	BatchRows = 10000

	// MaxColumns caps the requested column span at column "ZZ" to
	// bound worst-case request size. Sheets declaring more columns are
	// truncated, not failed.
	MaxColumns = 702

	// maxRateLimitRetries bounds retries of a single batch.
	maxRateLimitRetries = 5
)

// rateLimitBackoff is the fixed delay before retrying a rate-limited
// batch. A variable so tests can shorten it.
var rateLimitBackoff = 2 * time.Second

// ProgressFunc receives a monotonic completion fraction in [0, 1],
// scaled across every sheet being loaded.
type ProgressFunc func(fraction float64)

// BatchReader paginates a large sheet into bounded range requests and
// merges computed values with formulas per cell.
type BatchReader struct {
	client   *Client
	cred     credential
	logger   *zap.Logger
	progress ProgressFunc
}

// NewBatchReader builds a reader over an authenticated or API-keyed
// session. progress may be nil.
func NewBatchReader(client *Client, cred credential, progress ProgressFunc, logger *zap.Logger) *BatchReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchReader{client: client, cred: cred, logger: logger, progress: progress}
}

// ReadSheet produces the grid for one sheet. The declared grid size
// drives batch partitioning only; the sheet extent reflects the rows
// the service actually returned, because a default grid declares 1000
// rows regardless of how few hold data. sheetIndex and sheetCount
// scale the progress callback when several sheets load in one run.
// Batches are never skipped or duplicated: a rate-limited batch is
// retried in place after a fixed backoff.
func (b *BatchReader) ReadSheet(ctx context.Context, spreadsheetID string, meta sheetMeta, sheetIndex, sheetCount int) (*models.Sheet, error) {
	name := meta.Properties.Title
	rows := meta.Properties.Grid.RowCount
	cols := meta.Properties.Grid.ColumnCount
	if cols > MaxColumns {
		b.logger.Warn("column count exceeds cap, truncating",
			zap.String("sheet", name), zap.Int("declared", cols), zap.Int("cap", MaxColumns))
		cols = MaxColumns
	}
	if cols < 1 {
		cols = 1
	}

	sheet := models.NewSheet(name)
	if rows < 1 {
		b.report(sheetIndex, sheetCount, 1, 1)
		return sheet, nil
	}

	batches := (rows + BatchRows - 1) / BatchRows
	for batch := 0; batch < batches; batch++ {
		startRow := batch*BatchRows + 1
		endRow := startRow + BatchRows - 1
		if endRow > rows {
			endRow = rows
		}
		rangeA1 := fmt.Sprintf("%s!A%d:%s%d", quoteSheetName(name), startRow,
			models.ColumnName(cols-1), endRow)

		values, formulas, err := b.readBatch(ctx, spreadsheetID, rangeA1)
		if err != nil {
			return nil, err
		}
		mergeBatch(sheet, startRow-1, values, formulas)
		b.report(sheetIndex, sheetCount, batch+1, batches)
	}
	return sheet, nil
}

// readBatch issues the value and formula reads for one range. The two
// requests are read-only and independent, so they run concurrently and
// are both awaited before merging. A rate-limited pair backs off and
// retries the same range.
func (b *BatchReader) readBatch(ctx context.Context, spreadsheetID, rangeA1 string) (*valueRange, *valueRange, error) {
	for attempt := 0; ; attempt++ {
		var values, formulas *valueRange
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			values, err = b.client.Values(gctx, spreadsheetID, rangeA1, renderValues, b.cred)
			return err
		})
		g.Go(func() error {
			var err error
			formulas, err = b.client.Values(gctx, spreadsheetID, rangeA1, renderFormulas, b.cred)
			return err
		})
		err := g.Wait()
		if err == nil {
			return values, formulas, nil
		}
		if !IsKind(err, KindRateLimited) || attempt >= maxRateLimitRetries {
			return nil, nil, err
		}
		b.logger.Info("rate limited, backing off",
			zap.String("range", rangeA1), zap.Int("attempt", attempt+1))
		select {
		case <-time.After(rateLimitBackoff):
		case <-ctx.Done():
			return nil, nil, wrapError(KindNetwork, ctx.Err(), "canceled during backoff")
		}
	}
}

// mergeBatch writes one batch's cells into the sheet. When the formula
// read shows an image-bearing formula, the formula text becomes the
// cell's effective value; otherwise the computed value stands, which
// lets transitive references (IMPORTRANGE and friends) resolve to their
// computed results instead of leaking formula syntax.
func mergeBatch(sheet *models.Sheet, rowOffset int, values, formulas *valueRange) {
	rows := values.Values
	for r, row := range rows {
		for c, raw := range row {
			cell := models.NewCell(raw)
			if f := formulaAt(formulas, r, c); f != "" {
				cell.Formula = f
				if parser.IsImageFormula(f) {
					cell.Value = f
					cell.Type = models.TypeString
				}
			}
			sheet.SetCell(rowOffset+r, c, cell)
		}
	}
	// Formula-only cells whose computed value is blank still matter
	// (an image formula can render over an empty computed value).
	if formulas != nil {
		for r, row := range formulas.Values {
			for c, raw := range row {
				f, ok := raw.(string)
				if !ok || !strings.HasPrefix(f, "=") {
					continue
				}
				if r < len(rows) && c < len(rows[r]) {
					continue
				}
				cell := models.NewCell(nil)
				cell.Formula = f
				if parser.IsImageFormula(f) {
					cell.Value = f
					cell.Type = models.TypeString
				}
				sheet.SetCell(rowOffset+r, c, cell)
			}
		}
	}
}

func formulaAt(vr *valueRange, row, col int) string {
	if vr == nil || row >= len(vr.Values) || col >= len(vr.Values[row]) {
		return ""
	}
	s, ok := vr.Values[row][col].(string)
	if !ok || !strings.HasPrefix(s, "=") {
		return ""
	}
	return s
}

func (b *BatchReader) report(sheetIndex, sheetCount, done, total int) {
	if b.progress == nil || sheetCount <= 0 || total <= 0 {
		return
	}
	frac := (float64(sheetIndex) + float64(done)/float64(total)) / float64(sheetCount)
	b.progress(frac)
}

// quoteSheetName wraps a sheet name in single quotes for an A1 range,
// doubling embedded quotes.
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
