// Package parser holds the pure parsing and classification functions of
// the ingestion pipeline: image formula detection, date serial
// conversion, cross-spreadsheet reference scanning, and the local
// source parsers (xlsx, csv, pasted HTML).
package parser

import (
	"net/url"
	"regexp"
	"strings"
)

// Image formula shapes, in priority order. A cell's displayed text and
// its formula diverge for image cells, so callers override the computed
// value back to the formula text whenever it is image-bearing.
var (
	reImageQuoted   = regexp.MustCompile(`(?i)=\s*IMAGE\s*\(\s*["']([^"']+)["']`)
	reImageBare     = regexp.MustCompile(`(?i)=\s*IMAGE\s*\(\s*(https?://[^\s,)"']+)`)
	reImageNested   = regexp.MustCompile(`(?i)=\s*IMAGE\s*\(\s*HYPERLINK\s*\(\s*["']([^"']+)["']`)
	reHyperlink     = regexp.MustCompile(`(?i)=\s*HYPERLINK\s*\(\s*["']([^"']+)["']`)
	reBareImageLink = regexp.MustCompile(`(?i)^https?://\S+\.(?:png|jpe?g|gif|webp|bmp|svg|ico|avif)(?:\?\S*)?$`)
)

// imageExtensions are file suffixes accepted as image content.
var imageExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".svg", ".ico", ".avif",
}

// imageHosts is the allowlist of domains that overwhelmingly serve
// image content even without a file extension in the path.
var imageHosts = []string{
	"googleusercontent.com",
	"ggpht.com",
	"gstatic.com",
	"imgur.com",
	"i.redd.it",
	"gyazo.com",
	"prnt.sc",
	"prntscr.com",
	"postimg.cc",
	"ibb.co",
	"imgix.net",
	"cloudinary.com",
	"staticflickr.com",
	"twimg.com",
	"fbcdn.net",
	"cdninstagram.com",
	"wixmp.com",
	"unsplash.com",
	"pexels.com",
	"pixabay.com",
	"githubusercontent.com",
}

// ImageURL decides whether a formula or raw string denotes an
// embeddable image and returns the embedded URL, or "" when it does
// not. Rules are tried in priority order and the first match wins:
//
//  1. =IMAGE("url") / =IMAGE('url')
//  2. =IMAGE(url) with an unquoted URL
//  3. =IMAGE(HYPERLINK("url", ...))
//  4. =HYPERLINK("url", ...) when the URL heuristically looks like an image
//  5. a bare http(s) string with a recognized image extension
func ImageURL(s string) string {
	if s == "" {
		return ""
	}
	s = strings.TrimSpace(s)
	if m := reImageQuoted.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := reImageBare.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := reImageNested.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := reHyperlink.FindStringSubmatch(s); m != nil {
		if LooksLikeImageURL(m[1]) {
			return m[1]
		}
		return ""
	}
	if reBareImageLink.MatchString(s) {
		return s
	}
	return ""
}

// IsImageFormula reports whether ImageURL would classify s as image-bearing.
func IsImageFormula(s string) bool {
	return ImageURL(s) != ""
}

// LooksLikeImageURL reports whether a URL plausibly points at image
// content: either its path carries a known image extension or its host
// is on the image-hosting allowlist.
func LooksLikeImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range imageHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
