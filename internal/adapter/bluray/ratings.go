package bluray

import (
	"regexp"
	"strconv"
	"strings"

	"discspec/internal/domain"
)

// Rating extraction is scoped strictly to the substring between the
// "Blu-ray user rating" heading and the next heading or the "Based on N
// user ratings" marker. Numbers anywhere else on the page must never
// populate a rating; release pages are full of unrelated numerics (prices,
// years, other titles' scores).

var (
	ratingHeadingRe = regexp.MustCompile(`(?i)blu-ray user rating`)
	ratingBasedOnRe = regexp.MustCompile(`(?i)based on \d+ user ratings`)
	headingTagRe    = regexp.MustCompile(`(?i)<h\d[^>]*>`)
	ratingNumberRe  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	ratingTableRow  = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	ratingTableCell = regexp.MustCompile(`(?is)<t[dh][^>]*>(.*?)</t[dh]>`)
)

func (p *Parser) ExtractRatings(page string) *domain.RatingRecord {
	rec := &domain.RatingRecord{}

	region := ratingRegion(page)
	if region == "" {
		return rec
	}

	for label, cells := range ratingRows(region) {
		target := ratingFieldFor(rec, label)
		if target == nil || *target != nil {
			continue
		}
		if v, ok := firstRatingIn(cells); ok {
			*target = &v
		}
	}
	return rec
}

// ratingRegion bounds the ratings block, or returns "" when the page has no
// user-rating section.
func ratingRegion(page string) string {
	// Locate the heading case-insensitively in place. Lowercasing the page
	// first would shift byte offsets for runes whose case folding changes
	// length.
	loc := ratingHeadingRe.FindStringIndex(page)
	if loc == nil {
		return ""
	}

	region := page[loc[1]:]
	end := len(region)
	if m := ratingBasedOnRe.FindStringIndex(region); m != nil {
		end = m[0]
	}
	if m := headingTagRe.FindStringIndex(region); m != nil && m[0] < end {
		end = m[0]
	}
	return region[:end]
}

// ratingRows yields (row label, remaining cell text) pairs. Table markup is
// preferred; plain "Label: value" lines cover the older page revision.
func ratingRows(region string) map[string]string {
	rows := make(map[string]string)

	if strings.Contains(region, "<tr") {
		for _, rowMatch := range ratingTableRow.FindAllStringSubmatch(region, -1) {
			cells := ratingTableCell.FindAllStringSubmatch(rowMatch[1], -1)
			if len(cells) < 2 {
				continue
			}
			label := strings.TrimSpace(stripTags(cells[0][1]))
			var rest []string
			for _, cell := range cells[1:] {
				rest = append(rest, stripTags(cell[1]))
			}
			if label != "" {
				rows[label] = strings.Join(rest, " ")
			}
		}
		return rows
	}

	for _, line := range strings.Split(stripTags(region), "\n") {
		label, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		label = strings.TrimSpace(label)
		if label != "" {
			rows[label] = value
		}
	}
	return rows
}

// ratingFieldFor maps an exact row label to its record field. Unknown labels
// are ignored.
func ratingFieldFor(rec *domain.RatingRecord, label string) **float64 {
	switch {
	case strings.EqualFold(label, "Video 4K"):
		return &rec.Video4K
	case strings.EqualFold(label, "Video"):
		return &rec.Video2K
	case strings.EqualFold(label, "Video 3D"), strings.EqualFold(label, "3D"):
		return &rec.Video3D
	case strings.EqualFold(label, "Audio"):
		return &rec.Audio
	case strings.EqualFold(label, "Extras"):
		return &rec.Extras
	case strings.EqualFold(label, "Overall"):
		return &rec.Overall
	default:
		return nil
	}
}

// firstRatingIn returns the first numeric in [0, 5]; larger numbers in the
// same row (vote counts, percentages) are discarded as false positives.
func firstRatingIn(cells string) (float64, bool) {
	for _, raw := range ratingNumberRe.FindAllString(cells, -1) {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if v >= 0 && v <= 5 {
			return v, true
		}
	}
	return 0, false
}
