package alert

import (
	"regexp"
	"strings"
)

// TermExtractor produces candidate topic terms from free text. The
// correlator only depends on this contract; the default implementation
// below can be swapped for a heavier NER step without touching the
// 3-independent-handles threshold logic.
type TermExtractor func(text string) []string

// properNounRe matches capitalized tokens of length >= 3: a cheap
// proper-noun shape that catches most place and organization names.
var properNounRe = regexp.MustCompile(`\b[A-Z][a-z]{2,}\b`)

// countryGazetteer boosts recall for country/region names the
// capitalization heuristic might miss (mid-sentence hashtags, all-caps
// posts). Matched as substrings of the original text.
var countryGazetteer = []string{
	"Ukraine", "Russia", "Israel", "Gaza", "Palestine", "Iran", "Syria",
	"Lebanon", "Yemen", "Taiwan", "China", "Korea", "Myanmar", "Sudan",
	"Libya", "Somalia", "Mali", "Niger", "Ethiopia", "Eritrea",
}

// ExtractTerms is the default TermExtractor: proper-noun tokens plus
// gazetteer hits, deduplicated. A term found by both paths appears once;
// correlation counts distinct handles, not occurrences.
func ExtractTerms(text string) []string {
	set := make(map[string]struct{})
	var terms []string

	for _, tok := range properNounRe.FindAllString(text, -1) {
		if _, ok := set[tok]; ok {
			continue
		}
		set[tok] = struct{}{}
		terms = append(terms, tok)
	}

	for _, country := range countryGazetteer {
		if !strings.Contains(text, country) {
			continue
		}
		if _, ok := set[country]; ok {
			continue
		}
		set[country] = struct{}{}
		terms = append(terms, country)
	}

	return terms
}

// criticalKeywords trigger a high-severity alert per matching post,
// independent of the engagement spike check. Case-insensitive substring
// match against post content.
var criticalKeywords = []string{
	"breaking",
	"confirmed",
	"strike",
	"explosion",
	"attack",
	"missile",
}

func matchesCriticalKeyword(content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
