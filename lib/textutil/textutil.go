package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// SimplifyText lowercases the input, trims surrounding whitespace and
// collapses inner whitespace runs into single spaces. Useful when comparing
// button labels and aria descriptions scraped from markup.
func SimplifyText(s string) string {
	s = strings.ToLower(s)
	s = strings.Trim(s, " \n\t")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return s
}

var numberToken = regexp.MustCompile(`^\d[\d,\.]*$`)

// NumericPhrase is a whitespace-tokenized phrase partitioned into its
// numeric tokens and its lowercased word tokens, both in original order.
// Accessibility labels like "4,081 views" are read through this.
type NumericPhrase struct {
	Numbers []string
	Words   []string
}

func ParseNumericPhrase(phrase string) NumericPhrase {
	var out NumericPhrase
	for _, token := range strings.Fields(phrase) {
		if numberToken.MatchString(token) {
			out.Numbers = append(out.Numbers, strings.ReplaceAll(token, ",", ""))
		} else {
			out.Words = append(out.Words, strings.ToLower(token))
		}
	}
	return out
}

// FirstNumber returns the first numeric token, or "" when the phrase
// carried none.
func (p NumericPhrase) FirstNumber() string {
	if len(p.Numbers) == 0 {
		return ""
	}
	return p.Numbers[0]
}
