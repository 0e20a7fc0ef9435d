package corpus

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxLine bounds a single corpus line; some treebank exports keep a whole
// document on one line.
const maxLine = 4 * 1024 * 1024

// Position locates a token within its source.
type Position struct {
	Source string
	Line   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.Source, p.Line)
}

// fieldScanner walks whitespace-separated fields of a line-oriented stream.
type fieldScanner struct {
	sc     *bufio.Scanner
	source string
	line   int
	fields []string
	field  string
	err    error
}

func newFieldScanner(r io.Reader, source string) *fieldScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &fieldScanner{sc: sc, source: source}
}

func (f *fieldScanner) next() bool {
	if f.err != nil {
		return false
	}
	for len(f.fields) == 0 {
		if !f.sc.Scan() {
			f.err = f.sc.Err()
			return false
		}
		f.line++
		f.fields = strings.Fields(f.sc.Text())
	}
	f.field = norm.NFC.String(f.fields[0])
	f.fields = f.fields[1:]
	return true
}

func (f *fieldScanner) position() Position {
	return Position{Source: f.source, Line: f.line}
}

// TaggedReader reads word/tag tokens. Use it like bufio.Scanner:
//
//	r := corpus.NewTaggedReader(f, "train.pos")
//	for r.Next() {
//		tok := r.Token()
//	}
//	if err := r.Err(); err != nil { ... }
type TaggedReader struct {
	fs  *fieldScanner
	tok Token
	err error
}

// NewTaggedReader returns a reader over r. source names r in errors.
func NewTaggedReader(r io.Reader, source string) *TaggedReader {
	return &TaggedReader{fs: newFieldScanner(r, source)}
}

// Next advances to the next token. It returns false at end of input or on the
// first malformed token.
func (r *TaggedReader) Next() bool {
	if r.err != nil || !r.fs.next() {
		return false
	}
	tok, err := ParseToken(r.fs.field)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", r.fs.position(), err)
		return false
	}
	r.tok = tok
	return true
}

// Token returns the most recent token read by Next.
func (r *TaggedReader) Token() Token { return r.tok }

// Position returns the location of the most recent token.
func (r *TaggedReader) Position() Position { return r.fs.position() }

// Err returns the first read or parse error.
func (r *TaggedReader) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.fs.err
}

// All yields every remaining token. Check Err afterwards.
func (r *TaggedReader) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for r.Next() {
			if !yield(r.tok) {
				return
			}
		}
	}
}

// WordScanner reads raw words, one per whitespace-separated field. A field
// carrying a /tag suffix has the tag dropped, so a gold file can be replayed
// as tagger input.
type WordScanner struct {
	fs *fieldScanner
}

// NewWordScanner returns a scanner over r.
func NewWordScanner(r io.Reader, source string) *WordScanner {
	return &WordScanner{fs: newFieldScanner(r, source)}
}

// Words yields each word in input order. Check Err afterwards.
func (s *WordScanner) Words() iter.Seq[string] {
	return func(yield func(string) bool) {
		for s.fs.next() {
			if !yield(StripTag(s.fs.field)) {
				return
			}
		}
	}
}

// Err returns the first read error.
func (s *WordScanner) Err() error { return s.fs.err }

// ReadTagged reads every token from r.
func ReadTagged(r io.Reader, source string) ([]Token, error) {
	tr := NewTaggedReader(r, source)
	var out []Token
	for tr.Next() {
		out = append(out, tr.Token())
	}
	return out, tr.Err()
}
