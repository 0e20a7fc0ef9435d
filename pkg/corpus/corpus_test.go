package corpus

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		input string
		want  Token
	}{
		{"dog/NN", Token{"dog", "NN"}},
		{`1\/2/CD`, Token{"1/2", "CD"}},
		{`and\/or/CC`, Token{"and/or", "CC"}},
		{"'s/POS", Token{"'s", "POS"}},
		{"./.", Token{".", "."}},
	}

	for _, tc := range tests {
		got, err := ParseToken(tc.input)
		if err != nil {
			t.Errorf("ParseToken(%q) error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseToken(%q) = %+v, want %+v", tc.input, got, tc.want)
		}
	}
}

func TestParseTokenMalformed(t *testing.T) {
	for _, input := range []string{"dog", "/NN", "dog/", `a\/b`} {
		_, err := ParseToken(input)
		var mt *MalformedTokenError
		if !errors.As(err, &mt) {
			t.Errorf("ParseToken(%q) error = %v, want MalformedTokenError", input, err)
		}
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	tok := Token{Word: "1/2", Tag: "CD"}
	assert.Equal(t, `1\/2/CD`, tok.String())

	back, err := ParseToken(tok.String())
	require.NoError(t, err)
	assert.Equal(t, tok, back)
}

func TestEscapeBackslashRoundTrip(t *testing.T) {
	for _, tok := range []Token{
		{Word: `C:\`, Tag: "NN"},
		{Word: `a\/b`, Tag: "NN"},
		{Word: `\\`, Tag: "SYM"},
	} {
		written := tok.String()
		back, err := ParseToken(written)
		require.NoError(t, err, written)
		assert.Equal(t, tok, back, written)
	}
	assert.Equal(t, `C:\\/NN`, Token{Word: `C:\`, Tag: "NN"}.String())

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(Token{Word: `C:\`, Tag: "NN"}))
	require.NoError(t, w.Flush())
	toks, err := ReadTagged(&buf, "out.pos")
	require.NoError(t, err)
	assert.Equal(t, []Token{{`C:\`, "NN"}}, toks)
}

func TestStripTag(t *testing.T) {
	assert.Equal(t, "dog", StripTag("dog/NN"))
	assert.Equal(t, "dog", StripTag("dog"))
	assert.Equal(t, "1/2", StripTag(`1\/2/CD`))
	assert.Equal(t, "1/2", StripTag(`1\/2`))
	assert.Equal(t, "/", StripTag("/"))
	assert.Equal(t, "he", StripTag("he/PRP$"))
	assert.Equal(t, "(", StripTag("(/-LRB-"))
	assert.Equal(t, "and/or", StripTag("and/or"))
	assert.Equal(t, "w/o", StripTag("w/o"))
	assert.Equal(t, "1/2", StripTag("1/2"))
}

func TestTaggedReader(t *testing.T) {
	input := "The/DT dog/NN\n\n  barked/VBD ./.\n"
	toks, err := ReadTagged(strings.NewReader(input), "test")
	require.NoError(t, err)
	assert.Equal(t, []Token{
		{"The", "DT"}, {"dog", "NN"}, {"barked", "VBD"}, {".", "."},
	}, toks)
}

func TestTaggedReaderReportsLine(t *testing.T) {
	input := "The/DT dog/NN\nbarked ./.\n"
	_, err := ReadTagged(strings.NewReader(input), "train.pos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "train.pos:2")

	var mt *MalformedTokenError
	assert.ErrorAs(t, err, &mt)
}

func TestTaggedReaderNormalizesNFC(t *testing.T) {
	toks, err := ReadTagged(strings.NewReader("cafe\u0301/NN"), "test")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, "caf\u00e9", toks[0].Word)
}

func TestWordScanner(t *testing.T) {
	sc := NewWordScanner(strings.NewReader("The dog/NN\nbarked\n1\\/2\n"), "input")
	words := slices.Collect(sc.Words())
	require.NoError(t, sc.Err())
	assert.Equal(t, []string{"The", "dog", "barked", "1/2"}, words)
}

func TestWordScannerKeepsRawSlashes(t *testing.T) {
	sc := NewWordScanner(strings.NewReader("and/or w/o 1/2 cat/NN"), "input")
	words := slices.Collect(sc.Words())
	require.NoError(t, sc.Err())
	assert.Equal(t, []string{"and/or", "w/o", "1/2", "cat"}, words)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	toks := []Token{{"a/b", "NN"}, {"ran", "VBD"}}
	require.NoError(t, w.WriteAll(slices.Values(toks)))
	assert.Equal(t, "a\\/b/NN\nran/VBD\n", buf.String())
	assert.Equal(t, 2, w.Count())
}
