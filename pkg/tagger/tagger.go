// Package tagger assigns part-of-speech tags to single words.
//
// Two classifiers are provided:
//  1. Baseline: the model's most likely tag, or NN for unknown words.
//  2. Cascade: an ordered list of context rules layered over the baseline.
//     Known and unknown words run disjoint rule lists; the first rule whose
//     trigger matches decides.
package tagger

import (
	"fmt"
	"strings"

	"github.com/kittclouds/postag/pkg/model"
)

// Context is what a classifier may see around the word being tagged: the two
// previous words with the tags already assigned to them, and the next raw
// word. Missing positions are empty strings.
type Context struct {
	SecondPriorWord string
	SecondPriorTag  string
	PriorWord       string
	PriorTag        string
	NextWord        string
}

// Classifier decides the tag of one word.
type Classifier interface {
	Classify(word string, ctx Context) string
}

// Mode selects the classifier used by a tagging run.
type Mode int

const (
	ModeBaseline Mode = iota
	ModeEnhanced
)

func (m Mode) String() string {
	switch m {
	case ModeBaseline:
		return "baseline"
	case ModeEnhanced:
		return "enhanced"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// UnknownModeError is returned for a mode name or value with no classifier.
type UnknownModeError struct {
	Mode string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown tagging mode %q (want baseline or enhanced)", e.Mode)
}

// ParseMode maps "baseline" or "enhanced" (any case) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "baseline":
		return ModeBaseline, nil
	case "enhanced":
		return ModeEnhanced, nil
	}
	return 0, &UnknownModeError{Mode: s}
}

// New returns the classifier for mode over m.
func New(mode Mode, m *model.Model) (Classifier, error) {
	switch mode {
	case ModeBaseline:
		return NewBaseline(m), nil
	case ModeEnhanced:
		return NewCascade(m), nil
	}
	return nil, &UnknownModeError{Mode: mode.String()}
}

// Baseline tags a word with its most likely tag, ignoring context.
type Baseline struct {
	model *model.Model
}

// NewBaseline creates a Baseline over m.
func NewBaseline(m *model.Model) *Baseline {
	return &Baseline{model: m}
}

// Tag returns the top tag of a known word and DefaultTag otherwise.
func (b *Baseline) Tag(word string) string {
	if top, ok := b.model.TopTag(word); ok {
		return top
	}
	return DefaultTag
}

// Classify implements Classifier.
func (b *Baseline) Classify(word string, _ Context) string {
	return b.Tag(word)
}
