package tagger

import (
	"strings"

	"github.com/coregx/ahocorasick"
)

// adjectiveSuffixes end words that are adjectives when unknown.
var adjectiveSuffixes = []string{"able", "ible", "al", "ful", "ic", "ical", "ish", "ive", "less", "ous", "y"}

// suffixSet matches word endings with one automaton over reversed patterns:
// a word ends in a pattern iff its reversal has a match starting at 0.
type suffixSet struct {
	ac *ahocorasick.Automaton
}

func newSuffixSet(suffixes []string) (*suffixSet, error) {
	reversed := make([]string, len(suffixes))
	for i, s := range suffixes {
		reversed[i] = reverse(s)
	}
	automaton, err := ahocorasick.NewBuilder().
		AddStrings(reversed).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}
	return &suffixSet{ac: automaton}, nil
}

func mustSuffixSet(suffixes []string) *suffixSet {
	s, err := newSuffixSet(suffixes)
	if err != nil {
		panic("tagger: building suffix automaton: " + err.Error())
	}
	return s
}

// Match reports whether word, lower-cased, ends in one of the suffixes.
func (s *suffixSet) Match(word string) bool {
	if word == "" {
		return false
	}
	for _, m := range s.ac.FindAllOverlapping([]byte(reverse(fastLower(word)))) {
		if m.Start == 0 {
			return true
		}
	}
	return false
}

// reverse reverses s byte-wise. Patterns are ASCII, so a multi-byte rune
// scrambled by the reversal can never produce a false match.
func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// fastLower returns the string if it contains no uppercase characters,
// otherwise returns strings.ToLower(s). Avoids allocation for common case.
func fastLower(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			return strings.ToLower(s)
		}
	}
	return s
}
