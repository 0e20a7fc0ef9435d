// Package evaluate scores tagger output against a gold-tagged corpus.
package evaluate

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/orsinium-labs/stopwords"

	"github.com/kittclouds/postag/pkg/corpus"
)

// AlignmentError reports predicted and gold streams that do not line up.
type AlignmentError struct {
	Index int
	Pred  string
	Gold  string
	// PredLen and GoldLen are set only when the streams differ in length.
	PredLen, GoldLen int
}

func (e *AlignmentError) Error() string {
	if e.PredLen != e.GoldLen {
		return fmt.Sprintf("evaluate: %d predicted tokens but %d gold tokens", e.PredLen, e.GoldLen)
	}
	return fmt.Sprintf("evaluate: token %d: predicted word %q does not match gold word %q", e.Index, e.Pred, e.Gold)
}

// Bucket counts correct decisions in one slice of the data.
type Bucket struct {
	Total   int
	Correct int
}

func (b *Bucket) add(ok bool) {
	b.Total++
	if ok {
		b.Correct++
	}
}

// Accuracy is Correct/Total, or 0 for an empty bucket.
func (b Bucket) Accuracy() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Correct) / float64(b.Total)
}

// Confusion is one gold/predicted tag pair.
type Confusion struct {
	Gold  string
	Pred  string
	Count int
}

// Report holds the result of Score.
type Report struct {
	All     Bucket
	Known   Bucket
	Unknown Bucket
	// Function covers English stopwords; Content covers everything else.
	Function Bucket
	Content  Bucket
	// Confusion maps gold tag to predicted tag to count, including agreements.
	Confusion map[string]map[string]int
}

var functionWords = stopwords.MustGet("en")

// Score compares pred with gold position by position. Words must match at
// every position. known decides the known/unknown split; a nil known counts
// every word as known.
func Score(pred, gold []corpus.Token, known func(string) bool) (*Report, error) {
	if len(pred) != len(gold) {
		return nil, &AlignmentError{PredLen: len(pred), GoldLen: len(gold)}
	}

	r := &Report{Confusion: make(map[string]map[string]int)}
	for i := range gold {
		p, g := pred[i], gold[i]
		if p.Word != g.Word {
			return nil, &AlignmentError{Index: i, Pred: p.Word, Gold: g.Word}
		}
		ok := p.Tag == g.Tag

		r.All.add(ok)
		if known == nil || known(g.Word) {
			r.Known.add(ok)
		} else {
			r.Unknown.add(ok)
		}
		if functionWords.Contains(strings.ToLower(g.Word)) {
			r.Function.add(ok)
		} else {
			r.Content.add(ok)
		}

		row := r.Confusion[g.Tag]
		if row == nil {
			row = make(map[string]int)
			r.Confusion[g.Tag] = row
		}
		row[p.Tag]++
	}
	return r, nil
}

// Accuracy is the overall fraction of correct tags.
func (r *Report) Accuracy() float64 { return r.All.Accuracy() }

// TopConfusions returns the n most frequent disagreements, most frequent
// first, ties broken by gold then predicted tag. n <= 0 returns all of them.
func (r *Report) TopConfusions(n int) []Confusion {
	var out []Confusion
	for g, row := range r.Confusion {
		for p, c := range row {
			if g != p {
				out = append(out, Confusion{Gold: g, Pred: p, Count: c})
			}
		}
	}
	slices.SortFunc(out, func(a, b Confusion) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Gold, b.Gold); c != 0 {
			return c
		}
		return cmp.Compare(a.Pred, b.Pred)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// WriteTo renders a plain-text summary with the ten most frequent confusions.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "subset\tcorrect\ttotal\taccuracy")
	for _, row := range []struct {
		name string
		b    Bucket
	}{
		{"all", r.All},
		{"known", r.Known},
		{"unknown", r.Unknown},
		{"function", r.Function},
		{"content", r.Content},
	} {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", row.name, row.b.Correct, row.b.Total, percent(row.b))
	}

	if top := r.TopConfusions(10); len(top) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "gold\tpredicted\tcount\t")
		for _, c := range top {
			fmt.Fprintf(tw, "%s\t%s\t%d\t\n", c.Gold, c.Pred, c.Count)
		}
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	return buf.WriteTo(w)
}

func percent(b Bucket) string {
	if b.Total == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", 100*b.Accuracy())
}
