package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/wikidoc"
	wikihttp "github.com/fwojciec/wikidoc/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ wikidoc.Fetcher = (*wikihttp.Fetcher)(nil)

// wikiServer imitates the handful of responses a crawl runs into.
func wikiServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/w/aespa", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>에스파</body></html>"))
	})
	mux.HandleFunc("/w/agent", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.UserAgent()))
	})
	mux.HandleFunc("/w/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
	})
	mux.HandleFunc("/w/whoami", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			_, _ = w.Write([]byte(c.Value))
		}
	})
	mux.HandleFunc("/w/busy", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/w/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	srv := wikiServer(t)

	t.Run("returns page body", func(t *testing.T) {
		t.Parallel()

		f := wikihttp.NewFetcher()
		defer f.Close()

		html, err := f.Fetch(context.Background(), srv.URL+"/w/aespa")

		require.NoError(t, err)
		assert.Equal(t, "<html><body>에스파</body></html>", html)
	})

	t.Run("maps missing page to ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		f := wikihttp.NewFetcher()
		defer f.Close()

		_, err := f.Fetch(context.Background(), srv.URL+"/w/nothing-here")

		assert.Equal(t, wikidoc.ENOTFOUND, wikidoc.ErrorCode(err))
	})

	t.Run("reports other statuses as internal errors", func(t *testing.T) {
		t.Parallel()

		f := wikihttp.NewFetcher()
		defer f.Close()

		_, err := f.Fetch(context.Background(), srv.URL+"/w/busy")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
		assert.Equal(t, wikidoc.EINTERNAL, wikidoc.ErrorCode(err))
	})

	t.Run("sends configured user agent", func(t *testing.T) {
		t.Parallel()

		f := wikihttp.NewFetcher(wikihttp.WithUserAgent("wikidoc-test"))
		defer f.Close()

		got, err := f.Fetch(context.Background(), srv.URL+"/w/agent")

		require.NoError(t, err)
		assert.Equal(t, "wikidoc-test", got)
	})

	t.Run("sends default user agent", func(t *testing.T) {
		t.Parallel()

		f := wikihttp.NewFetcher()
		defer f.Close()

		got, err := f.Fetch(context.Background(), srv.URL+"/w/agent")

		require.NoError(t, err)
		assert.Equal(t, wikihttp.DefaultUserAgent, got)
	})

	t.Run("keeps session cookies between pages", func(t *testing.T) {
		t.Parallel()

		f := wikihttp.NewFetcher()
		defer f.Close()

		_, err := f.Fetch(context.Background(), srv.URL+"/w/login")
		require.NoError(t, err)
		got, err := f.Fetch(context.Background(), srv.URL+"/w/whoami")

		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	})

	t.Run("times out slow pages", func(t *testing.T) {
		t.Parallel()

		f := wikihttp.NewFetcher(wikihttp.WithTimeout(20 * time.Millisecond))
		defer f.Close()

		_, err := f.Fetch(context.Background(), srv.URL+"/w/slow")

		assert.Error(t, err)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		t.Parallel()

		f := wikihttp.NewFetcher()
		defer f.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.Fetch(ctx, srv.URL+"/w/aespa")

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects malformed url", func(t *testing.T) {
		t.Parallel()

		f := wikihttp.NewFetcher()
		defer f.Close()

		_, err := f.Fetch(context.Background(), "http://[::1")

		assert.Equal(t, wikidoc.EINVALID, wikidoc.ErrorCode(err))
	})
}
