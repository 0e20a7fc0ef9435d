package model

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kittclouds/postag/pkg/corpus"
)

// MalformedRecordError reports a training or table line that does not parse
// into word/tag and a number.
type MalformedRecordError struct {
	Source string
	Line   int
	Text   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s:%d: malformed record %q: %s", e.Source, e.Line, e.Text, e.Reason)
}

// record is one parsed "word/tag number" line.
type record struct {
	tok  corpus.Token
	num  string
	line int
	text string
}

// readRecords parses every non-blank, non-comment line of r and hands it to fn.
func readRecords(r io.Reader, source string, fn func(record) error) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		malformed := func(reason string) error {
			return &MalformedRecordError{Source: source, Line: line, Text: text, Reason: reason}
		}

		fields := strings.Fields(text)
		if len(fields) != 2 {
			return malformed(fmt.Sprintf("want 2 fields, got %d", len(fields)))
		}
		tok, err := corpus.ParseToken(fields[0])
		if err != nil {
			return malformed(err.Error())
		}
		if err := fn(record{tok: tok, num: fields[1], line: line, text: text}); err != nil {
			var mre *MalformedRecordError
			if errors.As(err, &mre) {
				return err
			}
			return malformed(err.Error())
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}
	return nil
}

// ReadProbabilities parses "word/tag probability" lines into a Model. Lines
// may come in any order; a word's least likely tag may appear first.
func ReadProbabilities(r io.Reader, source string) (*Model, error) {
	var entries []Entry
	seen := make(map[corpus.Token]bool)
	err := readRecords(r, source, func(rec record) error {
		p, err := strconv.ParseFloat(rec.num, 64)
		if err != nil {
			return fmt.Errorf("bad probability %q", rec.num)
		}
		if !(p > 0 && p <= 1) {
			return fmt.Errorf("probability %v outside (0,1]", p)
		}
		if seen[rec.tok] {
			return fmt.Errorf("duplicate entry for %s", rec.tok)
		}
		seen[rec.tok] = true
		entries = append(entries, Entry{Word: rec.tok.Word, Tag: rec.tok.Tag, Prob: p})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromEntries(entries), nil
}

// ReadCounts parses "word/tag count" lines into a TagCount.
func ReadCounts(r io.Reader, source string) (TagCount, error) {
	c := make(TagCount)
	err := readRecords(r, source, func(rec record) error {
		n, err := strconv.Atoi(rec.num)
		if err != nil || n < 0 {
			return fmt.Errorf("bad count %q", rec.num)
		}
		if _, dup := c[rec.tok.Word][rec.tok.Tag]; dup {
			return fmt.Errorf("duplicate entry for %s", rec.tok)
		}
		c.add(rec.tok.Word, rec.tok.Tag, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ReadCorpus counts a tagged training corpus. A token without a word/tag
// split aborts the read with a MalformedRecordError naming its line.
func ReadCorpus(r io.Reader, source string) (TagCount, error) {
	tr := corpus.NewTaggedReader(r, source)
	c := Count(tr.All())
	if err := tr.Err(); err != nil {
		var mt *corpus.MalformedTokenError
		if errors.As(err, &mt) {
			pos := tr.Position()
			return nil, &MalformedRecordError{Source: pos.Source, Line: pos.Line, Text: mt.Text, Reason: mt.Reason}
		}
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return c, nil
}

// WriteProbabilities writes m as "word/tag probability" lines, words sorted
// and each word's tags most likely first.
func WriteProbabilities(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	for _, e := range m.Entries() {
		tok := corpus.Token{Word: e.Word, Tag: e.Tag}
		if _, err := fmt.Fprintf(bw, "%s %s\n", tok, strconv.FormatFloat(e.Prob, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCounts writes c as "word/tag count" lines in a stable order.
func WriteCounts(w io.Writer, c TagCount) error {
	bw := bufio.NewWriter(w)
	m := FromCounts(c)
	for _, e := range m.Entries() {
		tok := corpus.Token{Word: e.Word, Tag: e.Tag}
		if _, err := fmt.Fprintf(bw, "%s %d\n", tok, c[e.Word][e.Tag]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
