package domain

import (
	"strings"
	"time"
)

type DiscFormat string

const (
	DiscFormatDVD    DiscFormat = "DVD"
	DiscFormatBluray DiscFormat = "Blu-ray"
	DiscFormat4K     DiscFormat = "4K UHD"
	DiscFormat3D     DiscFormat = "3D Blu-ray"
)

type DataQuality string

const (
	DataQualityComplete DataQuality = "complete"
	DataQualityPartial  DataQuality = "partial"
	DataQualityMinimal  DataQuality = "minimal"
)

// TechnicalSpecRecord holds the structured technical metadata extracted from
// a release page. A record is unique per (title, release year, disc format);
// re-scraping the same key overwrites the previous record.
//
// Missing fields stay zero-valued. Extraction never substitutes placeholder
// strings, so quality scoring can tell absent from present.
type TechnicalSpecRecord struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	ReleaseYear     int         `json:"release_year"`
	DiscFormat      DiscFormat  `json:"disc_format"`
	VideoCodec      string      `json:"video_codec,omitempty"`
	VideoResolution string      `json:"video_resolution,omitempty"`
	HDRFormats      []string    `json:"hdr_formats,omitempty"`
	AudioCodecs     []string    `json:"audio_codecs,omitempty"`
	AudioChannels   []string    `json:"audio_channels,omitempty"`
	RuntimeMinutes  int         `json:"runtime_minutes,omitempty"`
	AspectRatio     string      `json:"aspect_ratio,omitempty"`
	Studio          string      `json:"studio,omitempty"`
	Subtitles       []string    `json:"subtitles,omitempty"`
	Region          string      `json:"region,omitempty"`
	Packaging       string      `json:"packaging,omitempty"`
	DiscCount       int         `json:"disc_count,omitempty"`
	DataQuality     DataQuality `json:"data_quality"`
	SourceURL       string      `json:"source_url"`
	LastScrapedAt   time.Time   `json:"last_scraped_at"`
}

// NormalizeResolution collapses the source site's resolution spellings into
// a small enumerated set. Unrecognized values pass through unchanged.
func NormalizeResolution(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "4k"), strings.Contains(lower, "2160p"):
		return "4K UHD"
	case strings.Contains(lower, "1080p"), strings.Contains(lower, "1080i"):
		return "1080p"
	case strings.Contains(lower, "720p"):
		return "720p"
	default:
		return raw
	}
}
