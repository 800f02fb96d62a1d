package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"discspec/internal/domain"
	"discspec/internal/port"
)

type SpecStore struct {
	db *sql.DB
}

func NewSpecStore(store *Store) *SpecStore {
	return &SpecStore{db: store.db}
}

const specColumns = `id, title, release_year, disc_format, video_codec, video_resolution,
	hdr_formats, audio_codecs, audio_channels, runtime_minutes, aspect_ratio, studio,
	subtitles, region, packaging, disc_count, data_quality, source_url, last_scraped_at`

// UpsertSpec writes a record keyed by (title, release_year, disc_format).
// A conflicting insert overwrites every field except the row's id, which is
// read back into the record so callers always see the stable identifier.
func (s *SpecStore) UpsertSpec(ctx context.Context, spec *domain.TechnicalSpecRecord) error {
	if spec.ID == "" {
		spec.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO technical_specs (`+specColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (title, release_year, disc_format) DO UPDATE SET
			video_codec = excluded.video_codec,
			video_resolution = excluded.video_resolution,
			hdr_formats = excluded.hdr_formats,
			audio_codecs = excluded.audio_codecs,
			audio_channels = excluded.audio_channels,
			runtime_minutes = excluded.runtime_minutes,
			aspect_ratio = excluded.aspect_ratio,
			studio = excluded.studio,
			subtitles = excluded.subtitles,
			region = excluded.region,
			packaging = excluded.packaging,
			disc_count = excluded.disc_count,
			data_quality = excluded.data_quality,
			source_url = excluded.source_url,
			last_scraped_at = excluded.last_scraped_at`,
		spec.ID, spec.Title, spec.ReleaseYear, string(spec.DiscFormat),
		spec.VideoCodec, spec.VideoResolution,
		marshalList(spec.HDRFormats), marshalList(spec.AudioCodecs), marshalList(spec.AudioChannels),
		spec.RuntimeMinutes, spec.AspectRatio, spec.Studio,
		marshalList(spec.Subtitles), spec.Region, spec.Packaging, spec.DiscCount,
		string(spec.DataQuality), spec.SourceURL, spec.LastScrapedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert spec: %w", err)
	}

	return s.db.QueryRowContext(ctx, `
		SELECT id FROM technical_specs WHERE title = ? AND release_year = ? AND disc_format = ?`,
		spec.Title, spec.ReleaseYear, string(spec.DiscFormat),
	).Scan(&spec.ID)
}

func (s *SpecStore) GetSpec(ctx context.Context, id string) (*domain.TechnicalSpecRecord, error) {
	spec, err := scanSpec(s.db.QueryRowContext(ctx,
		`SELECT `+specColumns+` FROM technical_specs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return spec, err
}

func (s *SpecStore) FindSpecsByTitle(ctx context.Context, title string) ([]*domain.TechnicalSpecRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+specColumns+` FROM technical_specs
		WHERE title = ? COLLATE NOCASE
		ORDER BY release_year DESC, disc_format ASC`, title)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var specs []*domain.TechnicalSpecRecord
	for rows.Next() {
		spec, err := scanSpec(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, rows.Err()
}

func (s *SpecStore) SaveRating(ctx context.Context, rating *domain.RatingRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO disc_ratings (spec_id, video_4k, video_2k, video_3d, audio, extras, overall)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (spec_id) DO UPDATE SET
			video_4k = excluded.video_4k,
			video_2k = excluded.video_2k,
			video_3d = excluded.video_3d,
			audio = excluded.audio,
			extras = excluded.extras,
			overall = excluded.overall`,
		rating.SpecID, rating.Video4K, rating.Video2K, rating.Video3D,
		rating.Audio, rating.Extras, rating.Overall,
	)
	if err != nil {
		return fmt.Errorf("save rating: %w", err)
	}
	return nil
}

func (s *SpecStore) GetRating(ctx context.Context, specID string) (*domain.RatingRecord, error) {
	rating := &domain.RatingRecord{SpecID: specID}
	err := s.db.QueryRowContext(ctx, `
		SELECT video_4k, video_2k, video_3d, audio, extras, overall
		FROM disc_ratings WHERE spec_id = ?`, specID,
	).Scan(&rating.Video4K, &rating.Video2K, &rating.Video3D, &rating.Audio, &rating.Extras, &rating.Overall)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rating, nil
}

// AttachSpecToItem links a collection item to a spec record. A missing item
// row is ignored.
func (s *SpecStore) AttachSpecToItem(ctx context.Context, itemID, specID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE collection_items SET spec_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		specID, itemID)
	return err
}

func scanSpec(row rowScanner) (*domain.TechnicalSpecRecord, error) {
	var spec domain.TechnicalSpecRecord
	var format, quality string
	var hdr, audioCodecs, audioChannels, subtitles string
	err := row.Scan(
		&spec.ID,
		&spec.Title,
		&spec.ReleaseYear,
		&format,
		&spec.VideoCodec,
		&spec.VideoResolution,
		&hdr,
		&audioCodecs,
		&audioChannels,
		&spec.RuntimeMinutes,
		&spec.AspectRatio,
		&spec.Studio,
		&subtitles,
		&spec.Region,
		&spec.Packaging,
		&spec.DiscCount,
		&quality,
		&spec.SourceURL,
		&spec.LastScrapedAt,
	)
	if err != nil {
		return nil, err
	}
	spec.DiscFormat = domain.DiscFormat(format)
	spec.DataQuality = domain.DataQuality(quality)
	spec.HDRFormats = unmarshalList(hdr)
	spec.AudioCodecs = unmarshalList(audioCodecs)
	spec.AudioChannels = unmarshalList(audioChannels)
	spec.Subtitles = unmarshalList(subtitles)
	return &spec, nil
}

func marshalList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalList(data string) []string {
	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil || len(list) == 0 {
		return nil
	}
	return list
}

var _ port.SpecStore = (*SpecStore)(nil)
