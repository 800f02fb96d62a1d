package port

import (
	"context"

	"discspec/internal/domain"
)

type SpecStore interface {
	// UpsertSpec writes a record keyed by (title, release year, disc format),
	// overwriting any previous record for the same key. The record's ID is
	// assigned on first insert and preserved on overwrite.
	UpsertSpec(ctx context.Context, spec *domain.TechnicalSpecRecord) error
	GetSpec(ctx context.Context, id string) (*domain.TechnicalSpecRecord, error)
	FindSpecsByTitle(ctx context.Context, title string) ([]*domain.TechnicalSpecRecord, error)
	SaveRating(ctx context.Context, rating *domain.RatingRecord) error
	GetRating(ctx context.Context, specID string) (*domain.RatingRecord, error)
	// AttachSpecToItem links a collection item to a spec record. A missing
	// item is not an error; a write failure is.
	AttachSpecToItem(ctx context.Context, itemID, specID string) error
}
