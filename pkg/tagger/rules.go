package tagger

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule is one entry of a cascade: if When holds, Then picks the tag.
type Rule struct {
	Name string
	When func(d *Decision) bool
	Then func(d *Decision) string
}

var (
	hasDigit        = regexp.MustCompile(`[0-9]`)
	cardinalPattern = regexp.MustCompile(`^\$?[0-9.,:\-]+$`)
	decadePattern   = regexp.MustCompile(`^'?[0-9]+s$`)
	alnumPattern    = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	nonDigit        = regexp.MustCompile(`[^0-9]`)
	hyphenated      = regexp.MustCompile(`^[A-Za-z]+(-[A-Za-z]+)+$`)

	adjectiveEndings = mustSuffixSet(adjectiveSuffixes)
)

// KnownRules are tried, in order, for words the model knows.
func KnownRules() []Rule {
	return []Rule{
		{
			Name: "participle",
			When: func(d *Decision) bool {
				return (d.Top == VBD || d.Top == VBN) && d.HasAll(VBD, VBN)
			},
			Then: participleOrPast,
		},
		{
			Name: "noun-verb",
			When: func(d *Decision) bool {
				return (d.Top == NN && d.Has(VB)) || (d.Top == VB && d.Has(NN))
			},
			Then: func(d *Decision) string {
				if isVerbCue(d.Ctx.PriorTag) {
					return VB
				}
				if IsPunctuation(d.Ctx.PriorTag) && isVerbCue(d.Ctx.SecondPriorTag) {
					return VB
				}
				return NN
			},
		},
		{
			Name: "adverb-particle",
			When: func(d *Decision) bool {
				return (d.Top == RB && d.Has(RP)) || (d.Top == RP && d.Has(RB))
			},
			Then: func(d *Decision) string {
				if IsVerb(d.Ctx.PriorTag) {
					return RP
				}
				return RB
			},
		},
		{
			Name: "that",
			When: func(d *Decision) bool { return fastLower(d.Word) == "that" },
			Then: func(d *Decision) string {
				if IsVerb(d.Ctx.PriorTag) {
					return IN
				}
				if next := d.Ctx.NextWord; next != "" {
					if nt := d.baseline.Tag(next); IsVerb(nt) || nt == MD {
						return WDT
					}
				}
				if d.Ctx.PriorTag == IN || IsPunctuation(d.Ctx.PriorTag) {
					return DT
				}
				return d.Top
			},
		},
		{
			Name: "possessive",
			When: func(d *Decision) bool { return d.Word == "'s" },
			Then: func(d *Decision) string {
				if IsNoun(d.Ctx.PriorTag) {
					return POS
				}
				return VBZ
			},
		},
	}
}

// UnknownRules are tried, in order, for words absent from the model. The last
// rule always fires.
func UnknownRules() []Rule {
	return []Rule{
		{
			Name: "number",
			When: func(d *Decision) bool {
				return hasDigit.MatchString(d.Word) && numberTag(d.Word) != ""
			},
			Then: func(d *Decision) string { return numberTag(d.Word) },
		},
		{
			Name: "plural-of-known",
			When: func(d *Decision) bool { return pluralOf(d) != "" },
			Then: pluralOf,
		},
		{
			Name: "capitalized",
			When: func(d *Decision) bool {
				r, _ := utf8.DecodeRuneInString(d.Word)
				return unicode.IsUpper(r)
			},
			Then: func(d *Decision) string {
				if top, ok := d.model.TopTag(strings.ToLower(d.Word)); ok {
					return top
				}
				return NNPS
			},
		},
		{
			Name: "adjective-form",
			When: func(d *Decision) bool {
				return hyphenated.MatchString(d.Word) || adjectiveEndings.Match(d.Word)
			},
			Then: func(*Decision) string { return JJ },
		},
		{
			Name: "gerund",
			When: func(d *Decision) bool { return strings.HasSuffix(d.Word, "ing") },
			Then: func(*Decision) string { return VBG },
		},
		{
			Name: "past-form",
			When: func(d *Decision) bool { return strings.HasSuffix(d.Word, "ed") },
			Then: participleOrPast,
		},
		{
			Name: "noun",
			When: func(*Decision) bool { return true },
			Then: func(d *Decision) string {
				if strings.HasSuffix(d.Word, "s") {
					return NNS
				}
				return NN
			},
		},
	}
}

// participleOrPast picks VBN after an auxiliary in either of the two previous
// words and VBD otherwise.
func participleOrPast(d *Decision) string {
	if isAuxiliary(d.Ctx.PriorWord) || isAuxiliary(d.Ctx.SecondPriorWord) {
		return VBN
	}
	return VBD
}

// numberTag classifies a word containing a digit, or returns "" when none of
// the numeric shapes apply.
func numberTag(word string) string {
	switch {
	case cardinalPattern.MatchString(word):
		return CD
	case decadePattern.MatchString(word):
		return NNS
	case alnumPattern.MatchString(word):
		return NNP
	case nonDigit.MatchString(word):
		return JJ
	}
	return ""
}

// pluralOf returns NNS or NNPS when word is a known singular noun plus "s".
func pluralOf(d *Decision) string {
	stem, ok := strings.CutSuffix(d.Word, "s")
	if !ok || stem == "" {
		return ""
	}
	switch top, _ := d.model.TopTag(stem); top {
	case NN:
		return NNS
	case NNP:
		return NNPS
	}
	return ""
}
