// Package relevance decides whether a document is worth sending to the
// language model, using case-insensitive substring matching of keywords.
package relevance

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Matcher is a compiled keyword set. The zero value matches nothing.
type Matcher struct {
	re *regexp.Regexp
}

// Compile builds a single case-insensitive alternation of the quoted
// keywords. Keywords that are not valid UTF-8 can never occur in decoded
// text and are dropped; an empty set yields a Matcher that never matches.
func Compile(keywords []string) *Matcher {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if !utf8.ValidString(k) {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(k))
	}
	if len(quoted) == 0 {
		return &Matcher{}
	}

	re, err := regexp.Compile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
	if err != nil {
		return &Matcher{}
	}
	return &Matcher{re: re}
}

func (m *Matcher) Match(text string) bool {
	if m == nil || m.re == nil {
		return false
	}
	return m.re.MatchString(text)
}

// Find returns the first keyword occurrence in text, or "".
func (m *Matcher) Find(text string) string {
	if m == nil || m.re == nil {
		return ""
	}
	return m.re.FindString(text)
}

// Matches reports whether text contains any of keywords, ignoring case.
func Matches(text string, keywords []string) bool {
	return Compile(keywords).Match(text)
}
