package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// minImagePayload is the smallest body accepted as a real image.
// Tracking pixels and proxy error stubs fall below it.
const minImagePayload = 128

// ProxyFetcher retrieves generic (non-spreadsheet) URLs, typically
// image links. It tries a direct fetch first, then each configured
// CORS-relay proxy in order, stopping at the first success. Domains
// known to block hotlinking are tried proxy-first instead.
type ProxyFetcher struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewProxyFetcher builds a ProxyFetcher from config.
func NewProxyFetcher(cfg Config, logger *zap.Logger) *ProxyFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProxyFetcher{cfg: cfg, http: cfg.httpClient(), logger: logger}
}

// FetchImage downloads the content behind rawURL, returning the body
// and its content type. Responses that are textual or too small to be
// a real image are rejected and the next candidate is tried.
func (p *ProxyFetcher) FetchImage(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, "", newError(KindInvalidURL, "not a fetchable url: %s", rawURL)
	}

	candidates := p.candidates(rawURL, u.Hostname())
	var lastErr error
	for _, candidate := range candidates {
		data, contentType, err := p.attempt(ctx, candidate)
		if err == nil {
			return data, contentType, nil
		}
		lastErr = err
		p.logger.Debug("image fetch candidate failed",
			zap.String("url", redactURL(candidate)), zap.Error(err))
	}
	return nil, "", lastErr
}

// candidates orders the direct URL and proxied variants. Hotlink-
// hostile hosts get the proxies first.
func (p *ProxyFetcher) candidates(rawURL, host string) []string {
	proxied := make([]string, 0, len(p.cfg.proxyURLs()))
	for _, proxy := range p.cfg.proxyURLs() {
		proxied = append(proxied, proxy+url.QueryEscape(rawURL))
	}
	if p.proxyFirst(host) {
		return append(proxied, rawURL)
	}
	return append([]string{rawURL}, proxied...)
}

func (p *ProxyFetcher) proxyFirst(host string) bool {
	host = strings.ToLower(host)
	for _, hostile := range p.cfg.proxyFirstHosts() {
		if host == hostile || strings.HasSuffix(host, "."+hostile) {
			return true
		}
	}
	return false
}

func (p *ProxyFetcher) attempt(ctx context.Context, rawURL string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", wrapError(KindInvalidURL, err, "building request")
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, "", wrapError(KindNetwork, err, "fetching")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", newError(classifyStatus(resp.StatusCode), "fetch responded %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "text/") || strings.Contains(contentType, "html") {
		return nil, "", newError(KindInvalidContent, "response is %s, not an image", contentType)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", wrapError(KindNetwork, err, "reading body")
	}
	if len(data) < minImagePayload {
		return nil, "", newError(KindInvalidContent, "payload of %d bytes is too small to be a real image", len(data))
	}
	return data, contentType, nil
}
