package service

import "discspec/internal/domain"

// AssessQuality scores a spec record's completeness: one point each for
// video codec, resolution, audio codecs, audio channel layouts, runtime and
// studio. Pure; adding a field never lowers the tier.
func AssessQuality(rec *domain.TechnicalSpecRecord) domain.DataQuality {
	score := 0
	if rec.VideoCodec != "" {
		score++
	}
	if rec.VideoResolution != "" {
		score++
	}
	if len(rec.AudioCodecs) > 0 {
		score++
	}
	if len(rec.AudioChannels) > 0 {
		score++
	}
	if rec.RuntimeMinutes > 0 {
		score++
	}
	if rec.Studio != "" {
		score++
	}

	switch {
	case score >= 5:
		return domain.DataQualityComplete
	case score >= 3:
		return domain.DataQualityPartial
	default:
		return domain.DataQualityMinimal
	}
}
