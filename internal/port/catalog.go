package port

import (
	"context"

	"discspec/internal/domain"
)

// Searcher queries the catalog site's search endpoint and returns parsed
// candidate rows in result order, capped by the adapter.
type Searcher interface {
	Search(ctx context.Context, title string, year int) ([]domain.Candidate, error)
}

// Extractor turns release-page HTML into structured records. Extraction is
// best effort and never fails: unrecognized sections simply leave fields
// absent.
type Extractor interface {
	ExtractSpec(html string, title string, year int, sourceURL string) *domain.TechnicalSpecRecord
	ExtractRatings(html string) *domain.RatingRecord
}
