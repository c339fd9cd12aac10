package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"
	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/parser"
)

// SheetsURL identifies the document and optional sheet tab named by a
// Google Sheets URL.
type SheetsURL struct {
	SpreadsheetID string
	// GID is the sheet-tab qualifier, or -1 when the URL names none.
	GID int
}

// ParseSheetsURL extracts the spreadsheet id and optional gid from a
// URL of the /spreadsheets/d/<id> form.
func ParseSheetsURL(rawURL string) (SheetsURL, error) {
	id := parser.SpreadsheetIDFromURL(rawURL)
	if id == "" {
		return SheetsURL{}, newError(KindInvalidURL, "not a spreadsheet url: %s", rawURL)
	}
	out := SheetsURL{SpreadsheetID: id, GID: -1}
	if u, err := url.Parse(rawURL); err == nil {
		qs := u.Query().Get("gid")
		if qs == "" && strings.HasPrefix(u.Fragment, "gid=") {
			qs = strings.TrimPrefix(u.Fragment, "gid=")
		}
		if n, err := strconv.Atoi(qs); err == nil && n >= 0 {
			out.GID = n
		}
	}
	return out, nil
}

// Selector orchestrates the fetch strategies in priority order:
// public API key first, OAuth on a private document, with the
// unauthenticated export path covering keyless configurations. It
// escalates to the caller only after exhausting every strategy, and
// the escalated message enumerates every remaining remediation.
type Selector struct {
	cfg    Config
	client *Client
	export *ExportFetcher
	logger *zap.Logger
}

// NewSelector builds a Selector. A nil logger is replaced with a nop
// logger.
func NewSelector(cfg Config, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := NewClient(cfg, logger)
	return &Selector{
		cfg:    cfg,
		client: client,
		export: NewExportFetcher(cfg, logger),
		logger: logger,
	}
}

// Fetch retrieves the workbook behind a spreadsheet URL. tokenSource
// may be nil when the caller holds no OAuth session. progress may be
// nil.
func (s *Selector) Fetch(ctx context.Context, rawURL string, tokenSource oauth2.TokenSource, progress ProgressFunc) (*models.Workbook, error) {
	ref, err := ParseSheetsURL(rawURL)
	if err != nil {
		return nil, err
	}

	var keyErr error
	if s.cfg.APIKey != "" {
		wb, err := s.readAll(ctx, ref, apiKeyCredential{key: s.cfg.APIKey}, progress)
		if err == nil {
			return wb, nil
		}
		keyErr = err
		if kind, ok := KindOf(err); ok && (kind == KindForbidden || kind == KindNotFound) {
			// A 403/404 from the key path usually means a private
			// document, not a missing one. Reclassified so the OAuth
			// branch runs instead of a raw HTTP error surfacing.
			s.logger.Info("spreadsheet private to api key, trying oauth",
				zap.String("spreadsheet", ref.SpreadsheetID))
		} else {
			s.logger.Warn("api key fetch failed", zap.Error(err))
		}
	} else {
		wb, err := s.export.Fetch(ctx, ref)
		if err == nil {
			return wb, nil
		}
		keyErr = err
		s.logger.Info("export fetch failed, trying oauth", zap.Error(err))
	}

	if tokenSource != nil {
		wb, err := s.readAll(ctx, ref, oauthCredential{source: tokenSource}, progress)
		if err == nil {
			return wb, nil
		}
		switch kind, _ := KindOf(err); kind {
		case KindUnauthorized:
			return nil, wrapError(KindUnauthorized, err,
				"access token rejected; sign in again and retry")
		case KindForbidden:
			return nil, wrapError(KindForbidden, err,
				"your account cannot open this spreadsheet; %s", s.guidance())
		default:
			return nil, wrapError(kind, err, "oauth fetch failed; %s", s.guidance())
		}
	}

	return nil, wrapError(KindForbidden, keyErr, "spreadsheet is not accessible; %s", s.guidance())
}

// guidance enumerates every remediation a user can take. This wording
// is user-facing contract, not just a log line.
func (s *Selector) guidance() string {
	target := s.cfg.ServiceAccountEmail
	if target == "" {
		target = "the tool's service account"
	}
	return fmt.Sprintf("try one of: (1) sign in again with an account that can open the sheet, "+
		"(2) change the sheet's sharing to \"anyone with the link can view\", "+
		"or (3) share the sheet with %s", target)
}

// readAll loads metadata and every selected sheet through the batch
// reader. A sheet that fails mid-load becomes an empty placeholder so
// downstream sheet indices stay stable.
func (s *Selector) readAll(ctx context.Context, ref SheetsURL, cred credential, progress ProgressFunc) (*models.Workbook, error) {
	meta, err := s.client.Metadata(ctx, ref.SpreadsheetID, cred)
	if err != nil {
		return nil, err
	}

	selected := meta.Sheets
	if ref.GID >= 0 {
		for _, sm := range meta.Sheets {
			if sm.Properties.SheetID == ref.GID {
				selected = []sheetMeta{sm}
				break
			}
		}
	}
	if len(selected) == 0 {
		return nil, newError(KindInvalidContent, "spreadsheet %s has no sheets", ref.SpreadsheetID)
	}

	reader := NewBatchReader(s.client, cred, progress, s.logger)
	wb := models.NewWorkbook(meta.Properties.Title)
	for i, sm := range selected {
		sheet, err := reader.ReadSheet(ctx, ref.SpreadsheetID, sm, i, len(selected))
		if err != nil {
			if ctx.Err() != nil {
				return nil, wrapError(KindNetwork, ctx.Err(), "canceled while reading %q", sm.Properties.Title)
			}
			s.logger.Warn("sheet failed to load, keeping placeholder",
				zap.String("sheet", sm.Properties.Title), zap.Error(err))
			sheet = models.NewSheet(sm.Properties.Title)
		}
		wb.AddSheet(sheet)
	}
	wb.CrossReferences = parser.DetectCrossReferences(wb)
	return wb, nil
}
