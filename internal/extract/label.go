package extract

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LabelExtractor reads structured fields off wine-label OCR text. It is
// stateless and safe for concurrent use.
type LabelExtractor struct {
	logger *slog.Logger
}

func NewLabelExtractor(logger *slog.Logger) *LabelExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelExtractor{logger: logger}
}

// Extract applies the per-field rules independently. If the text carries
// no label keyword and no plausible vintage year, extraction is skipped
// entirely so unrelated text cannot produce hallucinated fields.
func (e *LabelExtractor) Extract(text string) LabelFields {
	if strings.TrimSpace(text) == "" {
		return LabelFields{}
	}
	lower := strings.ToLower(text)
	if !containsAny(lower, labelKeywords) && !reWineYear.MatchString(text) {
		return LabelFields{}
	}

	lines := meaningfulLines(text)

	var f LabelFields
	f.Vintage = extractVintage(text)
	f.Name = extractLabelName(text, lines)
	f.Producer = extractProducer(lines, f.Name)
	f.Region = findInGazetteer(text, regionPatterns)
	f.Appellation = extractAppellation(text)
	f.Variety = extractVariety(lower)
	f.Alcohol = extractAlcohol(text)
	f.Volume = extractVolume(text)
	f.Classification = findInGazetteer(text, classificationPatterns)

	e.logger.Debug("extract.label.done",
		"has_name", f.Name != nil,
		"has_vintage", f.Vintage != nil,
		"has_producer", f.Producer != nil,
	)
	return f
}

// extractVintage tries, in order: a bare year, the Korean year suffix,
// then explicit vintage/harvest phrases. First match wins.
func extractVintage(text string) *int {
	if m := reWineYear.FindString(text); m != "" {
		v, _ := strconv.Atoi(m)
		return intPtr(v)
	}
	if m := reYearSuffixKo.FindStringSubmatch(text); m != nil {
		v, _ := strconv.Atoi(m[1])
		return intPtr(v)
	}
	if m := reVintageWord.FindStringSubmatch(text); m != nil {
		v, _ := strconv.Atoi(m[1])
		return intPtr(v)
	}
	return nil
}

// extractLabelName prefers a prestige estate-name phrase; otherwise it
// falls back to the first non-trivial line.
func extractLabelName(text string, lines []string) *string {
	if m := rePrestigeName.FindString(text); m != "" {
		name := reWineYear.ReplaceAllString(m, "")
		name = strings.Join(strings.Fields(name), " ")
		if name != "" {
			return strPtr(name)
		}
	}
	for _, line := range lines {
		if trivialNameLine(line) {
			continue
		}
		return strPtr(line)
	}
	return nil
}

func trivialNameLine(line string) bool {
	if utf8.RuneCountInString(line) < 3 {
		return true
	}
	if reBareYear.MatchString(strings.TrimSpace(line)) {
		return true
	}
	lower := strings.ToLower(line)
	if strings.Contains(lower, "appellation") {
		return true
	}
	if reAlcoholVol.MatchString(line) || reAlcoholWord.MatchString(line) || reAlcoholPrefix.MatchString(line) {
		return true
	}
	if reVolume.MatchString(line) {
		return true
	}
	return false
}

// extractProducer looks for estate-keyword lines, then reuses the name if
// it is estate-like, then falls back to the second meaningful line.
func extractProducer(lines []string, name *string) *string {
	for _, line := range lines {
		if containsAny(strings.ToLower(line), estateKeywords) {
			return strPtr(line)
		}
	}
	if name != nil && containsAny(strings.ToLower(*name), estateKeywords) {
		return strPtr(*name)
	}
	if len(lines) >= 2 {
		second := lines[1]
		lower := strings.ToLower(second)
		if !strings.Contains(lower, "appellation") &&
			findInGazetteer(second, classificationPatterns) == nil &&
			!startsWithDigit(second) {
			return strPtr(second)
		}
	}
	return nil
}

func extractAppellation(text string) *string {
	m := reAppellation.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return nil
	}
	return strPtr(titleCase(name))
}

// extractVariety joins all matched grape varieties with ", " in order of
// appearance, mapping localized aliases to their canonical name.
func extractVariety(lower string) *string {
	type hit struct {
		idx  int
		name string
	}
	var hits []hit
	seen := make(map[string]struct{})
	for _, va := range varietyAliases {
		idx := strings.Index(lower, va.alias)
		if idx < 0 {
			continue
		}
		if _, dup := seen[va.canonical]; dup {
			continue
		}
		seen[va.canonical] = struct{}{}
		hits = append(hits, hit{idx: idx, name: va.canonical})
	}
	if len(hits) == 0 {
		return nil
	}
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].idx < hits[j-1].idx; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.name
	}
	return strPtr(strings.Join(names, ", "))
}

// extractAlcohol tries the percent patterns in order and accepts the first
// value in (0, 20].
func extractAlcohol(text string) *float64 {
	for _, re := range []interface{ FindStringSubmatch(string) []string }{
		reAlcoholVol, reAlcoholWord, reAlcoholPrefix, reAlcoholKo,
	} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v <= 0 || v > 20 {
			continue
		}
		return floatPtr(v)
	}
	return nil
}

func extractVolume(text string) *string {
	m := reVolume.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return strPtr(m[1] + strings.ToLower(m[2]))
}

// findInGazetteer returns the first vocabulary entry found in the text,
// case-insensitively, preserving the original casing from the text. The
// match runs on the original text; lowering it first would shift byte
// offsets for characters whose lowercase form has a different width.
func findInGazetteer(text string, patterns []*regexp.Regexp) *string {
	for _, re := range patterns {
		if m := re.FindString(text); m != "" {
			return strPtr(m)
		}
	}
	return nil
}

func meaningfulLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
