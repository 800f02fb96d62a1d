package domain

// RatingRecord carries the user ratings scraped from a release page. Each
// category is optional; nil means the page did not publish that rating.
// Values are constrained to [0, 5].
type RatingRecord struct {
	SpecID  string   `json:"spec_id,omitempty"`
	Video4K *float64 `json:"video_4k,omitempty"`
	Video2K *float64 `json:"video_2k,omitempty"`
	Video3D *float64 `json:"video_3d,omitempty"`
	Audio   *float64 `json:"audio,omitempty"`
	Extras  *float64 `json:"extras,omitempty"`
	Overall *float64 `json:"overall,omitempty"`
}

// HasAny reports whether at least one rating category was found.
func (r *RatingRecord) HasAny() bool {
	return r.Video4K != nil || r.Video2K != nil || r.Video3D != nil ||
		r.Audio != nil || r.Extras != nil || r.Overall != nil
}
