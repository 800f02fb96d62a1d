package bluray

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"discspec/internal/domain"
	"discspec/internal/port"
)

// Parser extracts structured records from release-page HTML using pattern
// matching against labeled sections. The source site's markup is
// semi-structured and changes between revisions, so every field is handled
// by its own extractor with an ordered fallback chain; a missing section
// leaves that field absent and never disturbs the others.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) ExtractSpec(page string, title string, year int, sourceURL string) *domain.TechnicalSpecRecord {
	rec := &domain.TechnicalSpecRecord{
		Title:       title,
		ReleaseYear: year,
		SourceURL:   sourceURL,
		DiscFormat:  classifyDiscFormat(sourceURL, page),
	}

	extractVideo(page, rec)
	extractAudio(page, rec)
	rec.Subtitles = extractSubtitles(page)
	rec.DiscCount = extractDiscCount(page)
	rec.Packaging = extractPackaging(page)
	rec.Region = extractRegion(page)
	rec.RuntimeMinutes = extractRuntime(page)
	rec.Studio = extractStudio(page)

	return rec
}

// Section isolation. A labeled block runs from its own label to the next
// known label or a blank-line marker, whichever comes first.

var sectionLabelNames = []string{
	"Video", "Audio", "Subtitles", "Discs", "Packaging", "Playback", "Region", "Runtime", "Studio",
}

var (
	labelStartRes    = map[string]*regexp.Regexp{}
	labelBoundaryRe  *regexp.Regexp
	blankLineMarkers = []string{"\n\n", "\r\n\r\n", "<br><br>", "<br /><br />", "<br/><br/>"}
)

func init() {
	for _, name := range sectionLabelNames {
		labelStartRes[name] = regexp.MustCompile(`(?im)(?:^|>)\s*` + name + `\b\s*:?`)
	}
	labelBoundaryRe = regexp.MustCompile(`(?im)(?:^|>)\s*(?:` + strings.Join(sectionLabelNames, "|") + `)\b\s*:?`)
}

func section(page, label string) string {
	re, ok := labelStartRes[label]
	if !ok {
		return ""
	}
	loc := re.FindStringIndex(page)
	if loc == nil {
		return ""
	}

	rest := page[loc[1]:]
	end := len(rest)
	if m := labelBoundaryRe.FindStringIndex(rest); m != nil {
		end = m[0]
	}
	for _, marker := range blankLineMarkers {
		if i := strings.Index(rest, marker); i >= 0 && i < end {
			end = i
		}
	}
	return rest[:end]
}

var (
	lineBreakTagRe = regexp.MustCompile(`(?i)<(?:br\s*/?|/td|/tr|/div|/p|/li|/h\d|/span)>`)
	tagRe          = regexp.MustCompile(`<[^>]*>`)
)

// stripTags turns an HTML fragment into trimmed plain-text lines.
func stripTags(fragment string) string {
	s := lineBreakTagRe.ReplaceAllString(fragment, "\n")
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// splitList splits a list-valued field on commas and line breaks, trimming
// fragments and discarding empties.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func valueAfterColon(line string) string {
	_, value, found := strings.Cut(line, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(value)
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, value) {
			return list
		}
	}
	return append(list, value)
}

// Disc format.

func classifyDiscFormat(sourceURL, page string) domain.DiscFormat {
	lowerURL := strings.ToLower(sourceURL)
	switch {
	case strings.Contains(lowerURL, "4k"), strings.Contains(lowerURL, "uhd"):
		return domain.DiscFormat4K
	case strings.Contains(lowerURL, "3d"):
		return domain.DiscFormat3D
	case strings.Contains(lowerURL, "dvd") && !strings.Contains(lowerURL, "blu-ray"):
		return domain.DiscFormatDVD
	}

	if strings.Contains(page, "4K Blu-ray") || strings.Contains(page, "Ultra HD Blu-ray") || strings.Contains(page, "4K UHD") {
		return domain.DiscFormat4K
	}
	if strings.Contains(page, "3D Blu-ray") {
		return domain.DiscFormat3D
	}
	return domain.DiscFormatBluray
}

// Video block.

var (
	videoCodecRe      = regexp.MustCompile(`(?i)\b(HEVC|MPEG-4 AVC|AVC|VC-1|MPEG-2|AV1)\b`)
	videoResolutionRe = regexp.MustCompile(`(?i)\b(2160p|1080[pi]|720p|480[pi])\b`)
	hdrTokens         = []string{"Dolby Vision", "HDR10+", "HDR10", "HLG"}
)

func extractVideo(page string, rec *domain.TechnicalSpecRecord) {
	text := stripTags(section(page, "Video"))
	if text == "" {
		return
	}

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "codec"):
			rec.VideoCodec = valueAfterColon(line)
		case strings.HasPrefix(lower, "encoding") && rec.VideoCodec == "":
			rec.VideoCodec = valueAfterColon(line)
		case strings.HasPrefix(lower, "resolution"):
			rec.VideoResolution = domain.NormalizeResolution(valueAfterColon(line))
		case strings.HasPrefix(lower, "hdr"):
			rec.HDRFormats = splitList(valueAfterColon(line))
		case strings.HasPrefix(lower, "aspect ratio"):
			rec.AspectRatio = valueAfterColon(line)
		}
	}

	// The newer markup drops the per-line labels; fall back to bare tokens.
	if rec.VideoCodec == "" {
		if m := videoCodecRe.FindString(text); m != "" {
			rec.VideoCodec = m
		}
	}
	if rec.VideoResolution == "" {
		if m := videoResolutionRe.FindString(text); m != "" {
			rec.VideoResolution = domain.NormalizeResolution(m)
		}
	}
	if len(rec.HDRFormats) == 0 {
		for _, token := range hdrTokens {
			if strings.Contains(text, token) {
				rec.HDRFormats = appendUnique(rec.HDRFormats, token)
			}
		}
	}
}

// Audio block. Track lines look like "English: DTS-HD Master Audio 7.1";
// codec names and channel layouts are collected as de-duplicated sets.

var audioCodecTokens = []string{
	"Dolby TrueHD", "Dolby Atmos", "Dolby Digital Plus", "Dolby Digital",
	"DTS-HD Master Audio", "DTS-HD High Resolution", "DTS:X", "DTS-ES", "DTS",
	"LPCM", "PCM",
}

var channelLayoutRe = regexp.MustCompile(`\b(\d\.\d)\b`)

func extractAudio(page string, rec *domain.TechnicalSpecRecord) {
	text := stripTags(section(page, "Audio"))
	if text == "" {
		return
	}

	for _, line := range strings.Split(text, "\n") {
		remaining := line
		for _, token := range audioCodecTokens {
			if idx := strings.Index(remaining, token); idx >= 0 {
				rec.AudioCodecs = appendUnique(rec.AudioCodecs, token)
				// Blank out the match so "DTS" does not re-match inside
				// "DTS-HD Master Audio".
				remaining = remaining[:idx] + strings.Repeat(" ", len(token)) + remaining[idx+len(token):]
			}
		}
		for _, m := range channelLayoutRe.FindAllStringSubmatch(line, -1) {
			rec.AudioChannels = appendUnique(rec.AudioChannels, m[1])
		}
	}
}

func extractSubtitles(page string) []string {
	return splitList(stripTags(section(page, "Subtitles")))
}

// Discs block.

var discCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(\d+)[-\s]disc\b`),
	regexp.MustCompile(`(?i)discs?:\s*(\d+)`),
	regexp.MustCompile(`(?i)\((\d+)\s*(?:BD|DVD|Blu-ray)`),
}

var discCountWords = map[string]int{
	"single": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
}

var discCountWordRe = regexp.MustCompile(`(?i)\b(single|one|two|three|four|five|six)[-\s]disc\b`)

func extractDiscCount(page string) int {
	text := stripTags(section(page, "Discs"))
	if text == "" {
		return 0
	}

	// "Two-disc set" style beats the parenthesized disc inventory, which
	// counts per-format and would report 1 for "(1 BD, 1 DVD)".
	if m := discCountPatterns[0].FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if m := discCountWordRe.FindStringSubmatch(text); m != nil {
		return discCountWords[strings.ToLower(m[1])]
	}
	for _, pattern := range discCountPatterns[1:] {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

// Packaging falls through: named section, then an inline label anywhere,
// then a bare packaging keyword. First hit wins.

var packagingKeywords = []string{"SteelBook", "Digibook", "Slipcover", "Digipack", "Keep case", "Snap case"}

func extractPackaging(page string) string {
	if text := stripTags(section(page, "Packaging")); text != "" {
		return strings.Split(text, "\n")[0]
	}

	plain := stripTags(page)
	for _, line := range strings.Split(plain, "\n") {
		if strings.HasPrefix(strings.ToLower(line), "packaging") {
			if v := valueAfterColon(line); v != "" {
				return v
			}
		}
	}

	for _, keyword := range packagingKeywords {
		if strings.Contains(plain, keyword) {
			return keyword
		}
	}
	return ""
}

// Region/playback falls through: named Playback section, then an inline
// "Region:" label, then a bare region-code token.

var (
	regionFreeRe = regexp.MustCompile(`(?i)\bregion[- ]?free\b`)
	regionCodeRe = regexp.MustCompile(`\bRegion ([ABC])\b`)
)

func extractRegion(page string) string {
	if text := stripTags(section(page, "Playback")); text != "" {
		for _, line := range strings.Split(text, "\n") {
			if strings.HasPrefix(strings.ToLower(line), "region") {
				if v := valueAfterColon(line); v != "" {
					return v
				}
			}
		}
		return strings.Split(text, "\n")[0]
	}

	plain := stripTags(page)
	for _, line := range strings.Split(plain, "\n") {
		if strings.HasPrefix(strings.ToLower(line), "region") {
			if v := valueAfterColon(line); v != "" {
				return v
			}
		}
	}

	if regionFreeRe.MatchString(plain) {
		return "Region free"
	}
	if m := regionCodeRe.FindStringSubmatch(plain); m != nil {
		return m[1]
	}
	return ""
}

// Runtime.

var runtimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)runtime:?\s*(\d+)\s*min`),
	regexp.MustCompile(`(?i)runtime:?\s*(\d+)h\s*(\d+)m`),
	regexp.MustCompile(`(?i)(\d+)h\s*(\d+)min\b`),
}

func extractRuntime(page string) int {
	plain := stripTags(page)
	for _, pattern := range runtimePatterns {
		m := pattern.FindStringSubmatch(plain)
		if m == nil {
			continue
		}
		first, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if len(m) > 2 && m[2] != "" {
			minutes, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			return first*60 + minutes
		}
		return first
	}
	return 0
}

// Studio.

func extractStudio(page string) string {
	plain := stripTags(page)
	for _, label := range []string{"studio", "distributor"} {
		for _, line := range strings.Split(plain, "\n") {
			if strings.HasPrefix(strings.ToLower(line), label) {
				if v := valueAfterColon(line); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

var _ port.Extractor = (*Parser)(nil)
