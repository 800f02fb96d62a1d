package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discspec/internal/domain"
)

func sampleSpec() *domain.TechnicalSpecRecord {
	return &domain.TechnicalSpecRecord{
		Title:           "Dune",
		ReleaseYear:     2021,
		DiscFormat:      domain.DiscFormat4K,
		VideoCodec:      "HEVC",
		VideoResolution: "4K UHD",
		HDRFormats:      []string{"HDR10", "Dolby Vision"},
		AudioCodecs:     []string{"Dolby Atmos", "DTS-HD Master Audio"},
		AudioChannels:   []string{"7.1", "5.1"},
		RuntimeMinutes:  155,
		AspectRatio:     "2.39:1",
		Studio:          "Warner Bros.",
		Subtitles:       []string{"English", "French"},
		Region:          "A",
		Packaging:       "SteelBook",
		DiscCount:       2,
		DataQuality:     domain.DataQualityComplete,
		SourceURL:       "https://www.blu-ray.com/movies/Dune-4K-Blu-ray/289291/",
		LastScrapedAt:   time.Now().UTC(),
	}
}

func TestUpsertSpecRoundTrip(t *testing.T) {
	s := NewSpecStore(newTestStore(t))
	ctx := context.Background()

	spec := sampleSpec()
	require.NoError(t, s.UpsertSpec(ctx, spec))
	require.NotEmpty(t, spec.ID)

	got, err := s.GetSpec(ctx, spec.ID)
	require.NoError(t, err)
	assert.Equal(t, spec.Title, got.Title)
	assert.Equal(t, spec.DiscFormat, got.DiscFormat)
	assert.Equal(t, spec.HDRFormats, got.HDRFormats)
	assert.Equal(t, spec.AudioCodecs, got.AudioCodecs)
	assert.Equal(t, spec.AudioChannels, got.AudioChannels)
	assert.Equal(t, spec.Subtitles, got.Subtitles)
	assert.Equal(t, spec.RuntimeMinutes, got.RuntimeMinutes)
	assert.Equal(t, spec.DiscCount, got.DiscCount)
	assert.Equal(t, spec.DataQuality, got.DataQuality)
}

func TestUpsertSpecOverwritesByKey(t *testing.T) {
	s := NewSpecStore(newTestStore(t))
	ctx := context.Background()

	first := sampleSpec()
	require.NoError(t, s.UpsertSpec(ctx, first))

	second := sampleSpec()
	second.VideoCodec = "AVC"
	second.HDRFormats = nil
	second.DataQuality = domain.DataQualityPartial
	require.NoError(t, s.UpsertSpec(ctx, second))

	// Same (title, year, format) key: the row is replaced, the id survives.
	assert.Equal(t, first.ID, second.ID)

	got, err := s.GetSpec(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "AVC", got.VideoCodec)
	assert.Nil(t, got.HDRFormats)
	assert.Equal(t, domain.DataQualityPartial, got.DataQuality)
}

func TestDistinctFormatsAreDistinctRecords(t *testing.T) {
	s := NewSpecStore(newTestStore(t))
	ctx := context.Background()

	uhd := sampleSpec()
	require.NoError(t, s.UpsertSpec(ctx, uhd))

	bd := sampleSpec()
	bd.ID = ""
	bd.DiscFormat = domain.DiscFormatBluray
	require.NoError(t, s.UpsertSpec(ctx, bd))

	assert.NotEqual(t, uhd.ID, bd.ID)

	specs, err := s.FindSpecsByTitle(ctx, "dune")
	require.NoError(t, err)
	assert.Len(t, specs, 2)
}

func TestGetSpecMissing(t *testing.T) {
	s := NewSpecStore(newTestStore(t))

	_, err := s.GetSpec(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRatingsRoundTrip(t *testing.T) {
	s := NewSpecStore(newTestStore(t))
	ctx := context.Background()

	spec := sampleSpec()
	require.NoError(t, s.UpsertSpec(ctx, spec))

	v4k := 4.8
	audio := 5.0
	require.NoError(t, s.SaveRating(ctx, &domain.RatingRecord{
		SpecID:  spec.ID,
		Video4K: &v4k,
		Audio:   &audio,
	}))

	got, err := s.GetRating(ctx, spec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Video4K)
	assert.InDelta(t, 4.8, *got.Video4K, 0.001)
	require.NotNil(t, got.Audio)
	assert.InDelta(t, 5.0, *got.Audio, 0.001)
	assert.Nil(t, got.Video2K)
	assert.Nil(t, got.Extras)
	assert.Nil(t, got.Overall)
}

func TestSaveRatingOverwrites(t *testing.T) {
	s := NewSpecStore(newTestStore(t))
	ctx := context.Background()

	spec := sampleSpec()
	require.NoError(t, s.UpsertSpec(ctx, spec))

	overall := 4.0
	require.NoError(t, s.SaveRating(ctx, &domain.RatingRecord{SpecID: spec.ID, Overall: &overall}))

	updated := 4.5
	require.NoError(t, s.SaveRating(ctx, &domain.RatingRecord{SpecID: spec.ID, Overall: &updated}))

	got, err := s.GetRating(ctx, spec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Overall)
	assert.InDelta(t, 4.5, *got.Overall, 0.001)
}

func TestGetRatingMissing(t *testing.T) {
	s := NewSpecStore(newTestStore(t))

	_, err := s.GetRating(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttachSpecToItem(t *testing.T) {
	store := newTestStore(t)
	s := NewSpecStore(store)
	ctx := context.Background()

	spec := sampleSpec()
	require.NoError(t, s.UpsertSpec(ctx, spec))

	// Missing item: no error, nothing to link.
	require.NoError(t, s.AttachSpecToItem(ctx, "missing-item", spec.ID))

	_, err := store.DB().ExecContext(ctx,
		`INSERT INTO collection_items (id, title) VALUES (?, ?)`, "item-1", "Dune")
	require.NoError(t, err)

	require.NoError(t, s.AttachSpecToItem(ctx, "item-1", spec.ID))

	var linked string
	require.NoError(t, store.DB().QueryRowContext(ctx,
		`SELECT spec_id FROM collection_items WHERE id = ?`, "item-1").Scan(&linked))
	assert.Equal(t, spec.ID, linked)
}
