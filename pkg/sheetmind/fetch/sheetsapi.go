package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// credential attaches authentication to an API request: either the
// public API key as a query parameter, or an OAuth bearer token.
type credential interface {
	apply(req *http.Request) error
	name() string
}

type apiKeyCredential struct {
	key string
}

func (c apiKeyCredential) apply(req *http.Request) error {
	q := req.URL.Query()
	q.Set("key", c.key)
	req.URL.RawQuery = q.Encode()
	return nil
}

func (c apiKeyCredential) name() string { return "api_key" }

type oauthCredential struct {
	source oauth2.TokenSource
}

func (c oauthCredential) apply(req *http.Request) error {
	tok, err := c.source.Token()
	if err != nil {
		return wrapError(KindUnauthorized, err, "obtaining access token")
	}
	tok.SetAuthHeader(req)
	return nil
}

func (c oauthCredential) name() string { return "oauth" }

// sheetMeta is the per-sheet slice of the metadata response.
type sheetMeta struct {
	Properties struct {
		SheetID int    `json:"sheetId"`
		Title   string `json:"title"`
		Grid    struct {
			RowCount    int `json:"rowCount"`
			ColumnCount int `json:"columnCount"`
		} `json:"gridProperties"`
	} `json:"properties"`
}

// spreadsheetMeta is the metadata endpoint response: document title
// plus declared per-sheet row/column counts.
type spreadsheetMeta struct {
	Properties struct {
		Title string `json:"title"`
	} `json:"properties"`
	Sheets []sheetMeta `json:"sheets"`
}

// valueRange is the values endpoint response for one rectangular range.
type valueRange struct {
	Range  string          `json:"range"`
	Values [][]interface{} `json:"values"`
}

// Render options for the values endpoint. The batch reader queries the
// same range once per option and merges per cell.
const (
	renderValues   = "UNFORMATTED_VALUE"
	renderFormulas = "FORMULA"
)

// Client is a thin spreadsheet API client. It classifies its own HTTP
// failures into fetch errors; callers never see raw status codes.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds a Client from config. A nil logger is replaced with
// a nop logger.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, http: cfg.httpClient(), logger: logger}
}

// Metadata fetches the document title and per-sheet grid sizes.
func (c *Client) Metadata(ctx context.Context, spreadsheetID string, cred credential) (*spreadsheetMeta, error) {
	u := fmt.Sprintf("%s/%s?fields=%s", c.cfg.apiBaseURL(), url.PathEscape(spreadsheetID),
		url.QueryEscape("properties.title,sheets.properties"))
	var meta spreadsheetMeta
	if err := c.getJSON(ctx, u, cred, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Values fetches one rectangular range with the given render option.
func (c *Client) Values(ctx context.Context, spreadsheetID, rangeA1, render string, cred credential) (*valueRange, error) {
	u := fmt.Sprintf("%s/%s/values/%s?valueRenderOption=%s", c.cfg.apiBaseURL(),
		url.PathEscape(spreadsheetID), url.PathEscape(rangeA1), render)
	var vr valueRange
	if err := c.getJSON(ctx, u, cred, &vr); err != nil {
		return nil, err
	}
	return &vr, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, cred credential, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return wrapError(KindInvalidURL, err, "building request")
	}
	if cred != nil {
		if err := cred.apply(req); err != nil {
			return err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(KindNetwork, err, "requesting %s", redactURL(rawURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Debug("api request failed",
			zap.String("url", redactURL(rawURL)),
			zap.Int("status", resp.StatusCode))
		return newError(classifyStatus(resp.StatusCode),
			"api responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return wrapError(KindInvalidContent, err, "decoding api response")
	}
	return nil
}

// redactURL strips query parameters (the API key rides there) before a
// URL reaches logs or error messages.
func redactURL(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
