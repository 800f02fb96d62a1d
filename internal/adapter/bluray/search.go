package bluray

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"discspec/internal/domain"
	"discspec/internal/port"
)

const maxSearchResults = 5

// Client resolves titles to release pages via the catalog site's quicksearch
// endpoint.
type Client struct {
	baseURL string
	fetcher port.Fetcher
}

func NewClient(baseURL string, fetcher port.Fetcher) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
	}
}

// SearchURL builds the quicksearch URL for a query.
func (c *Client) SearchURL(query string) string {
	return fmt.Sprintf(
		"%s/search/?quicksearch=1&quicksearch_country=US&quicksearch_keyword=%s&section=bluraymovies",
		c.baseURL,
		url.QueryEscape(query),
	)
}

// Search fetches the search-results page and parses candidate rows, capped
// at maxSearchResults, preserving result order.
func (c *Client) Search(ctx context.Context, title string, year int) ([]domain.Candidate, error) {
	query := title
	if year > 0 {
		query = fmt.Sprintf("%s %d", title, year)
	}

	body, err := c.fetcher.Fetch(ctx, c.SearchURL(query))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", title, err)
	}

	return c.parseResults(string(body)), nil
}

// Result rows vary with the site's markup revisions. Each pattern captures
// (href, title text); patterns are tried in order against every line and the
// first pattern that yields any rows wins. Patterns are never merged.
var searchRowPatterns = []*regexp.Regexp{
	// Anchor with a title attribute, the richest variant.
	regexp.MustCompile(`<a[^>]+href="([^"]*/movies/[^"]+)"[^>]+title="([^"]+)"`),
	// Plain anchor around the link text.
	regexp.MustCompile(`<a[^>]+href="([^"]*/movies/[^"]+)"[^>]*>([^<]+)</a>`),
}

var titleYearRe = regexp.MustCompile(`\((\d{4})[^)]*\)\s*$`)

func (c *Client) parseResults(html string) []domain.Candidate {
	for _, pattern := range searchRowPatterns {
		var candidates []domain.Candidate
		seen := make(map[string]struct{})

		for _, line := range strings.Split(html, "\n") {
			m := pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			href := c.absoluteURL(strings.TrimSpace(m[1]))
			if _, dup := seen[href]; dup {
				continue
			}
			seen[href] = struct{}{}

			text := strings.TrimSpace(m[2])
			candidate := domain.Candidate{URL: href}
			if ym := titleYearRe.FindStringSubmatch(text); ym != nil {
				candidate.Year, _ = strconv.Atoi(ym[1])
				text = strings.TrimSpace(titleYearRe.ReplaceAllString(text, ""))
			}
			candidate.Title = text

			candidates = append(candidates, candidate)
			if len(candidates) == maxSearchResults {
				break
			}
		}

		if len(candidates) > 0 {
			return candidates
		}
	}
	return nil
}

func (c *Client) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return c.baseURL + href
}

var _ port.Searcher = (*Client)(nil)
