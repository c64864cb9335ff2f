// Package textfilter softens profanity in generated narrative text for
// family-friendly content ratings.
package textfilter

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps each filtered word to its stand-in.
var replacements = map[string]string{
	"fuck":         "fudge",
	"motherfucker": "mother-trucker",
	"shit":         "shoot",
	"bullshit":     "baloney",
	"damn":         "dang",
	"goddamn":      "gosh-dang",
	"hell":         "heck",
	"ass":          "butt",
	"asshole":      "jerk",
	"bastard":      "jerk",
	"bitch":        "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"prick":        "jerk",
	"dick":         "jerk",
	"dickhead":     "jerk",
	"jackass":      "jerk",
	"dumbass":      "dummy",
	"whore":        "[censored]",
	"slut":         "[censored]",
}

// Filter replaces filtered words, keeping the case pattern of the match.
type Filter struct {
	pattern *regexp.Regexp
}

func NewFilter() *Filter {
	words := make([]string, 0, len(replacements))
	for w := range replacements {
		words = append(words, regexp.QuoteMeta(w))
	}
	// Longest first so compound words win over their prefixes.
	slices.SortFunc(words, func(a, b string) int { return len(b) - len(a) })

	return &Filter{
		pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`),
	}
}

// FilterText returns text with every filtered word replaced.
func (f *Filter) FilterText(text string) string {
	if text == "" {
		return text
	}
	return f.pattern.ReplaceAllStringFunc(text, func(match string) string {
		return matchCase(match, replacements[strings.ToLower(match)])
	})
}

// ContainsProfanity reports whether text contains a filtered word.
func (f *Filter) ContainsProfanity(text string) bool {
	return f.pattern.MatchString(text)
}

func matchCase(original, replacement string) string {
	// Casers carry state, so each call gets its own.
	title := cases.Title(language.English)
	switch {
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return replacement
	case title.String(strings.ToLower(original)) == original:
		return title.String(replacement)
	}

	orig := []rune(original)
	out := []rune(replacement)
	for i := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(out[i])
		} else {
			out[i] = unicode.ToLower(out[i])
		}
	}
	return string(out)
}

// ShouldFilter reports whether a content rating calls for filtering.
func ShouldFilter(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}
