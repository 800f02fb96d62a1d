package port

import (
	"context"

	"discspec/internal/domain"
)

type PageCache interface {
	// Get returns the cached page for a canonical URL, refreshing its
	// last_accessed timestamp. A miss returns (nil, nil).
	Get(ctx context.Context, url string) (*domain.CachedPage, error)
	Put(ctx context.Context, page *domain.CachedPage) error
}
