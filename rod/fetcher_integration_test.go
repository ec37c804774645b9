//go:build integration

package rod_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/wikidoc/goquery"
	"github.com/fwojciec/wikidoc/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fetches a live wiki page and checks that its TOC survives rendering.
func TestFetcher_Integration_LivePageHasTOC(t *testing.T) {
	t.Parallel()

	const pageURL = "https://namu.wiki/w/%EB%82%98%EB%AC%B4%EC%9C%84%ED%82%A4"

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	defer fetcher.Close()

	html, err := fetcher.Fetch(ctx, pageURL)
	require.NoError(t, err)

	page, err := goquery.NewParser().Parse(pageURL, html)
	require.NoError(t, err)

	assert.NotEmpty(t, page.Title())
	assert.NotEmpty(t, page.TOC().Sections())
	t.Logf("%s: %d sections from %d bytes", page.Title(), len(page.TOC().Sections()), len(html))
}
