// Package pipeline streams words through a classifier in a single forward
// pass, carrying the two most recent word/tag assignments as context.
package pipeline

import (
	"iter"
	"log/slog"
	"slices"

	"github.com/kittclouds/postag/pkg/corpus"
	"github.com/kittclouds/postag/pkg/model"
	"github.com/kittclouds/postag/pkg/tagger"
)

// Window holds the two most recently tagged words. It belongs to exactly one
// stream and must not be shared.
type Window struct {
	SecondPriorWord string
	SecondPriorTag  string
	PriorWord       string
	PriorTag        string
}

// Shift drops the oldest pair and pushes word/tag as the most recent.
func (w *Window) Shift(word, tag string) {
	w.SecondPriorWord, w.SecondPriorTag = w.PriorWord, w.PriorTag
	w.PriorWord, w.PriorTag = word, tag
}

// Context returns the classifier view of the window with next as lookahead.
func (w *Window) Context(next string) tagger.Context {
	return tagger.Context{
		SecondPriorWord: w.SecondPriorWord,
		SecondPriorTag:  w.SecondPriorTag,
		PriorWord:       w.PriorWord,
		PriorTag:        w.PriorTag,
		NextWord:        next,
	}
}

// Stats describes a finished or in-progress run.
type Stats struct {
	Tokens int
	// Unknown counts words absent from the model.
	Unknown int
	// EmptyModel is set when the run started with a model of zero words;
	// every word is then tagged as unknown.
	EmptyModel bool
}

// Pipeline tags word streams with one classifier. A Pipeline runs one stream
// at a time; use one per goroutine.
type Pipeline struct {
	classifier tagger.Classifier
	model      *model.Model
	logger     *slog.Logger
	stats      Stats
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for run warnings and summaries.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a pipeline for mode over m.
func New(mode tagger.Mode, m *model.Model, opts ...Option) (*Pipeline, error) {
	c, err := tagger.New(mode, m)
	if err != nil {
		return nil, err
	}
	return NewWithClassifier(c, m, opts...), nil
}

// NewWithClassifier creates a pipeline around an existing classifier. m is
// used only for statistics.
func NewWithClassifier(c tagger.Classifier, m *model.Model, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: c,
		model:      m,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run returns a lazy sequence with exactly one token per input word, in input
// order. Each call starts a fresh window; the sequence itself is single-use.
// One word of lookahead is buffered so the classifier can see the next raw
// word.
func (p *Pipeline) Run(words iter.Seq[string]) iter.Seq[corpus.Token] {
	return func(yield func(corpus.Token) bool) {
		p.stats = Stats{EmptyModel: p.model.Len() == 0}
		if p.stats.EmptyModel {
			p.logger.Warn("tagging with an empty model; every word is unknown")
		}

		var (
			win     Window
			pending string
			have    bool
		)
		emit := func(word, next string) bool {
			tag := p.classifier.Classify(word, win.Context(next))
			p.stats.Tokens++
			if !p.model.Contains(word) {
				p.stats.Unknown++
			}
			win.Shift(word, tag)
			return yield(corpus.Token{Word: word, Tag: tag})
		}

		for w := range words {
			if have && !emit(pending, w) {
				return
			}
			pending, have = w, true
		}
		if have && !emit(pending, "") {
			return
		}
		p.logger.Debug("tagging run finished",
			"tokens", p.stats.Tokens,
			"unknown", p.stats.Unknown)
	}
}

// Tag tags a complete word slice.
func (p *Pipeline) Tag(words []string) []corpus.Token {
	return p.AppendTag(make([]corpus.Token, 0, len(words)), words)
}

// AppendTag tags words and appends the tokens to dst.
func (p *Pipeline) AppendTag(dst []corpus.Token, words []string) []corpus.Token {
	for tok := range p.Run(slices.Values(words)) {
		dst = append(dst, tok)
	}
	return dst
}

// Stats returns counters for the most recent run.
func (p *Pipeline) Stats() Stats { return p.stats }
