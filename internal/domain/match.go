package domain

import "strings"

// Candidate is a search-result entry considered as a possible match for a
// requested title.
type Candidate struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Year  int    `json:"year,omitempty"`
}

// SelectBestMatch picks a candidate for (title, year) from search results.
//
// The rule is greedy and order-preserving: candidates are tested in their
// original order and the first one passing a tier wins. Tiers, in order:
// year within ±1 of the target year (when a year is given), then
// case-insensitive substring/superstring title match, then the first
// candidate as-is. Result order from the search endpoint therefore matters;
// identical input always yields the same answer.
func SelectBestMatch(candidates []Candidate, title string, year int) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, ErrNoResults
	}

	if year > 0 {
		for _, c := range candidates {
			if c.Year != 0 && c.Year >= year-1 && c.Year <= year+1 {
				return c, nil
			}
		}
	}

	target := strings.ToLower(strings.TrimSpace(title))
	for _, c := range candidates {
		got := strings.ToLower(strings.TrimSpace(c.Title))
		if got == "" || target == "" {
			continue
		}
		if strings.Contains(got, target) || strings.Contains(target, got) {
			return c, nil
		}
	}

	return candidates[0], nil
}
