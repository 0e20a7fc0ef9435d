package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/postag/pkg/corpus"
	"github.com/kittclouds/postag/pkg/model"
	"github.com/kittclouds/postag/pkg/tagger"
)

func testModel() *model.Model {
	return model.FromCounts(model.TagCount{
		"John":    {"NNP": 5},
		"He":      {"PRP": 5},
		"'s":      {"VBZ": 6, "POS": 4},
		"dog":     {"NN": 10},
		"running": {"VBG": 8, "NN": 2},
		"to":      {"TO": 10},
		"want":    {"VBP": 6, "VB": 4},
		"run":     {"NN": 6, "VB": 4},
		"the":     {"DT": 10},
		".":       {".": 10},
	})
}

func words(s string) []string { return strings.Fields(s) }

func tags(toks []corpus.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Tag
	}
	return out
}

func TestEnhancedSentence(t *testing.T) {
	p, err := New(tagger.ModeEnhanced, testModel())
	require.NoError(t, err)

	assert.Equal(t, []string{"NNP", "POS", "NN", "."}, tags(p.Tag(words("John 's dog ."))))
	assert.Equal(t, []string{"PRP", "VBZ", "VBG", "."}, tags(p.Tag(words("He 's running ."))))
	assert.Equal(t, []string{"VBP", "TO", "VB", "."}, tags(p.Tag(words("want to run ."))))
	assert.Equal(t, []string{"DT", "NN", "."}, tags(p.Tag(words("the run ."))))
}

func TestBaselineSentence(t *testing.T) {
	p, err := New(tagger.ModeBaseline, testModel())
	require.NoError(t, err)

	toks := p.Tag(words("want to run xyzzy"))
	assert.Equal(t, []string{"VBP", "TO", "NN", "NN"}, tags(toks))
	assert.Equal(t, Stats{Tokens: 4, Unknown: 1}, p.Stats())
}

func TestOneTokenPerWordInOrder(t *testing.T) {
	p, err := New(tagger.ModeEnhanced, testModel())
	require.NoError(t, err)

	in := words("the dog 's blorped Zorblax 1990s that . .")
	out := p.Tag(in)
	require.Len(t, out, len(in))
	for i, tok := range out {
		assert.Equal(t, in[i], tok.Word)
		assert.NotEmpty(t, tok.Tag)
	}
}

func TestEmptyInput(t *testing.T) {
	p, err := New(tagger.ModeEnhanced, testModel())
	require.NoError(t, err)
	assert.Empty(t, p.Tag(nil))
	assert.Equal(t, 0, p.Stats().Tokens)
}

// recorder tags word i as "T<i>" and keeps every context it was given.
type recorder struct {
	seen []tagger.Context
}

func (r *recorder) Classify(_ string, ctx tagger.Context) string {
	r.seen = append(r.seen, ctx)
	return fmt.Sprintf("T%d", len(r.seen)-1)
}

func TestContextUsesAssignedTags(t *testing.T) {
	rec := &recorder{}
	p := NewWithClassifier(rec, testModel())
	p.Tag(words("a b c d"))

	require.Len(t, rec.seen, 4)
	assert.Equal(t, tagger.Context{NextWord: "b"}, rec.seen[0])
	assert.Equal(t, tagger.Context{PriorWord: "a", PriorTag: "T0", NextWord: "c"}, rec.seen[1])
	assert.Equal(t, tagger.Context{
		SecondPriorWord: "a", SecondPriorTag: "T0",
		PriorWord: "b", PriorTag: "T1",
		NextWord: "d",
	}, rec.seen[2])
	assert.Equal(t, tagger.Context{
		SecondPriorWord: "b", SecondPriorTag: "T1",
		PriorWord: "c", PriorTag: "T2",
	}, rec.seen[3])
}

func TestRunIsLazy(t *testing.T) {
	rec := &recorder{}
	p := NewWithClassifier(rec, testModel())

	pulled := 0
	src := func(yield func(string) bool) {
		for _, w := range words("a b c d e f") {
			pulled++
			if !yield(w) {
				return
			}
		}
	}

	var got []corpus.Token
	for tok := range p.Run(src) {
		got = append(got, tok)
		if len(got) == 2 {
			break
		}
	}
	assert.Len(t, got, 2)
	// Two emitted plus one word of lookahead.
	assert.Equal(t, 3, pulled)
	assert.Len(t, rec.seen, 2)
}

func TestEmptyModelWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p, err := New(tagger.ModeEnhanced, model.FromCounts(nil), WithLogger(logger))
	require.NoError(t, err)

	out := p.Tag(words("the dog barked"))
	assert.Equal(t, []string{"NN", "NN", "VBD"}, tags(out))
	assert.Equal(t, Stats{Tokens: 3, Unknown: 3, EmptyModel: true}, p.Stats())
	assert.Contains(t, buf.String(), "empty model")
}

func TestNewUnknownMode(t *testing.T) {
	_, err := New(tagger.Mode(9), testModel())
	var ume *tagger.UnknownModeError
	assert.ErrorAs(t, err, &ume)
}

func TestWindowShift(t *testing.T) {
	var w Window
	w.Shift("a", "DT")
	w.Shift("b", "NN")
	w.Shift("c", "VBD")
	assert.Equal(t, Window{SecondPriorWord: "b", SecondPriorTag: "NN", PriorWord: "c", PriorTag: "VBD"}, w)
}

func TestRunRestartsWindow(t *testing.T) {
	rec := &recorder{}
	p := NewWithClassifier(rec, testModel())
	p.Tag(words("a b"))
	p.Tag(words("c"))
	assert.Equal(t, tagger.Context{}, rec.seen[2])
}
