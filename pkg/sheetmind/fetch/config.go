package fetch

import (
	"net/http"
	"time"
)

// Default endpoints and fallback configuration. Everything here can be
// overridden per Config so tests substitute local servers.
const (
	defaultAPIBaseURL    = "https://sheets.googleapis.com/v4/spreadsheets"
	defaultExportBaseURL = "https://docs.google.com/spreadsheets/d"
	defaultTimeout       = 60 * time.Second
)

// defaultProxyURLs are public CORS-relay endpoints, tried in order. The
// target URL is appended query-escaped.
var defaultProxyURLs = []string{
	"https://corsproxy.io/?url=",
	"https://api.allorigins.win/raw?url=",
	"https://api.codetabs.com/v1/proxy?quest=",
}

// defaultProxyFirstHosts are domains known to block hotlinked direct
// fetches; for these the proxy chain is tried before a direct request.
var defaultProxyFirstHosts = []string{
	"pinimg.com",
	"sinaimg.cn",
	"zhimg.com",
	"doubanio.com",
	"csdnimg.cn",
}

// Config is the process-wide fetch configuration, read-only after
// initialization and injected at construction rather than read from
// package globals.
type Config struct {
	// APIKey is the long-lived read-only public API key, or "".
	APIKey string
	// ServiceAccountEmail is the sharing target surfaced in error
	// guidance when every strategy fails.
	ServiceAccountEmail string
	// APIBaseURL overrides the spreadsheet API endpoint (tests).
	APIBaseURL string
	// ExportBaseURL overrides the export endpoint (tests).
	ExportBaseURL string
	// ProxyURLs overrides the CORS-relay proxy list.
	ProxyURLs []string
	// ProxyFirstHosts overrides the hotlink-hostile domain list.
	ProxyFirstHosts []string
	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
	// Timeout bounds each network attempt. Timeout triggers
	// advancement to the next fallback, never a retry of the same
	// strategy.
	Timeout time.Duration
}

func (c Config) apiBaseURL() string {
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	return defaultAPIBaseURL
}

func (c Config) exportBaseURL() string {
	if c.ExportBaseURL != "" {
		return c.ExportBaseURL
	}
	return defaultExportBaseURL
}

func (c Config) proxyURLs() []string {
	if len(c.ProxyURLs) > 0 {
		return c.ProxyURLs
	}
	return defaultProxyURLs
}

func (c Config) proxyFirstHosts() []string {
	if len(c.ProxyFirstHosts) > 0 {
		return c.ProxyFirstHosts
	}
	return defaultProxyFirstHosts
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}
