package port

import "context"

type Fetcher interface {
	// Fetch performs a single GET and returns the response body. Non-2xx
	// statuses and transport failures surface as *domain.FetchError; the
	// fetcher never retries internally.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
