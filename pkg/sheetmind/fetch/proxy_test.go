package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeImage(size int) []byte {
	return bytes.Repeat([]byte{0x89}, size)
}

func TestProxyFetcherDirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(fakeImage(512))
	}))
	defer server.Close()

	fetcher := NewProxyFetcher(Config{HTTPClient: server.Client(), ProxyURLs: []string{"http://127.0.0.1:1/?u="}}, nil)
	data, contentType, err := fetcher.FetchImage(context.Background(), server.URL+"/pic.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Len(t, data, 512)
}

func TestProxyFetcherFallsBackToProxy(t *testing.T) {
	// Direct endpoint refuses; the relay serves the image.
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "hotlinking denied", http.StatusForbidden)
	}))
	defer direct.Close()

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, _ := url.QueryUnescape(r.URL.Query().Get("u"))
		assert.Contains(t, target, direct.URL)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(fakeImage(2048))
	}))
	defer relay.Close()

	fetcher := NewProxyFetcher(Config{ProxyURLs: []string{relay.URL + "/?u="}}, nil)
	data, contentType, err := fetcher.FetchImage(context.Background(), direct.URL+"/pic.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Len(t, data, 2048)
}

func TestProxyFetcherRejectsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>an error page that is definitely not image bytes, padded to pass the size floor ........................</html>"))
	}))
	defer server.Close()

	fetcher := NewProxyFetcher(Config{ProxyURLs: []string{server.URL + "/?u="}}, nil)
	_, _, err := fetcher.FetchImage(context.Background(), server.URL+"/pic.png")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidContent), "got %v", err)
}

func TestProxyFetcherRejectsTinyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		w.Write(fakeImage(16))
	}))
	defer server.Close()

	fetcher := NewProxyFetcher(Config{ProxyURLs: []string{server.URL + "/?u="}}, nil)
	_, _, err := fetcher.FetchImage(context.Background(), server.URL+"/pixel.gif")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidContent), "got %v", err)
}

func TestProxyFetcherHostileHostGoesProxyFirst(t *testing.T) {
	fetcher := NewProxyFetcher(Config{
		ProxyURLs:       []string{"https://relay.example/?u="},
		ProxyFirstHosts: []string{"pinimg.com"},
	}, nil)

	direct := "https://i.pinimg.com/a.jpg"
	candidates := fetcher.candidates(direct, "i.pinimg.com")
	require.Len(t, candidates, 2)
	assert.Contains(t, candidates[0], "relay.example")
	assert.Equal(t, direct, candidates[1])

	candidates = fetcher.candidates("https://example.com/a.jpg", "example.com")
	assert.Equal(t, "https://example.com/a.jpg", candidates[0])
}

func TestProxyFetcherInvalidURL(t *testing.T) {
	fetcher := NewProxyFetcher(Config{}, nil)
	_, _, err := fetcher.FetchImage(context.Background(), "ftp://example.com/a.png")
	assert.True(t, IsKind(err, KindInvalidURL), "got %v", err)
}
