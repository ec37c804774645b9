// Package customsearch resolves search phrases to wiki pages with the
// Google Custom Search API.
package customsearch

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/wikidoc"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// DefaultSiteSearch restricts results to wiki article pages.
const DefaultSiteSearch = "https://namu.wiki/w/"

// DefaultOrTerms favours artist pages for ambiguous names.
const DefaultOrTerms = "데뷔"

var (
	// Corrected queries come back with the site restriction appended.
	correctedQueryRe = regexp.MustCompile(`^(.*?) site`)

	// English mirror pages are mapped back to the Korean site.
	englishHostRe = regexp.MustCompile(`//en\.`)
)

var _ wikidoc.Resolver = (*Resolver)(nil)

// Resolver resolves search phrases to wiki page URLs. A query without
// results is retried once with the spelling correction the search engine
// suggests.
type Resolver struct {
	cse        *customsearch.CseService
	engineID   string
	siteSearch string
	orTerms    string
	clientOpts []option.ClientOption
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEndpoint sends search requests to endpoint instead of Google.
func WithEndpoint(endpoint string) Option {
	return func(r *Resolver) {
		r.clientOpts = append(r.clientOpts, option.WithEndpoint(endpoint))
	}
}

// WithSiteSearch restricts results to URLs under prefix.
func WithSiteSearch(prefix string) Option {
	return func(r *Resolver) {
		r.siteSearch = prefix
	}
}

// WithOrTerms sets terms of which at least one should appear in results.
// An empty string disables the restriction.
func WithOrTerms(terms string) Option {
	return func(r *Resolver) {
		r.orTerms = terms
	}
}

// NewResolver connects a Resolver to the search engine engineID.
func NewResolver(ctx context.Context, apiKey, engineID string, opts ...Option) (*Resolver, error) {
	if apiKey == "" || engineID == "" {
		return nil, wikidoc.Errorf(wikidoc.EINVALID, "search API key and engine ID required")
	}

	r := &Resolver{
		engineID:   engineID,
		siteSearch: DefaultSiteSearch,
		orTerms:    DefaultOrTerms,
	}
	for _, opt := range opts {
		opt(r)
	}

	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, r.clientOpts...)...)
	if err != nil {
		return nil, err
	}
	r.cse = svc.Cse
	return r, nil
}

// Resolve returns the URL of the top search result for query.
func (r *Resolver) Resolve(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", wikidoc.Errorf(wikidoc.EINVALID, "search query required")
	}

	res, err := r.search(ctx, query)
	if err != nil {
		return "", err
	}

	if totalResults(res) == 0 && res.Spelling != nil {
		if corrected := correctedQuery(res.Spelling.CorrectedQuery); corrected != "" && corrected != query {
			if res, err = r.search(ctx, corrected); err != nil {
				return "", err
			}
		}
	}

	if len(res.Items) == 0 {
		return "", wikidoc.Errorf(wikidoc.ENOTFOUND, "no page found for %q", query)
	}

	link := res.Items[0].Link
	if link == "" {
		link = res.Items[0].FormattedUrl
	}
	return englishHostRe.ReplaceAllString(link, "//"), nil
}

func (r *Resolver) search(ctx context.Context, query string) (*customsearch.Search, error) {
	call := r.cse.List().Q(query).Cx(r.engineID).Cr("countryKR").Hl("ko")
	if r.siteSearch != "" {
		call = call.SiteSearch(r.siteSearch).SiteSearchFilter("i")
	}
	if r.orTerms != "" {
		call = call.OrTerms(r.orTerms)
	}
	return call.Context(ctx).Do()
}

// totalResults reads the reported result count, falling back to the
// number of returned items when the count is missing.
func totalResults(res *customsearch.Search) int {
	if res.SearchInformation != nil {
		if n, err := strconv.Atoi(res.SearchInformation.TotalResults); err == nil && n > 0 {
			return n
		}
	}
	return len(res.Items)
}

// correctedQuery extracts the suggested query, dropping the site
// restriction the engine appends to it.
func correctedQuery(s string) string {
	if m := correctedQueryRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}
