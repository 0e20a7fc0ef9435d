// Package corpus reads and writes word/tag token streams.
//
// A token is written as word/tag. A literal slash inside the word is escaped
// as \/ and a literal backslash as \\, so the last unescaped slash is always
// the tag delimiter.
package corpus

import (
	"fmt"
	"strings"
)

// Token is an immutable word/tag pair.
type Token struct {
	Word string
	Tag  string
}

// String renders the token in corpus form with the word escaped.
func (t Token) String() string {
	return Escape(t.Word) + "/" + t.Tag
}

var (
	escaper   = strings.NewReplacer(`\`, `\\`, "/", `\/`)
	unescaper = strings.NewReplacer(`\\`, `\`, `\/`, "/")
)

// Escape replaces every literal backslash in word with \\ and every literal
// slash with \/.
func Escape(word string) string {
	return escaper.Replace(word)
}

// Unescape reverses Escape.
func Unescape(word string) string {
	return unescaper.Replace(word)
}

// MalformedTokenError reports a token that has no word/tag split.
type MalformedTokenError struct {
	Text   string
	Reason string
}

func (e *MalformedTokenError) Error() string {
	return fmt.Sprintf("malformed token %q: %s", e.Text, e.Reason)
}

// splitIndex returns the index of the last slash preceded by an even number
// of backslashes, or -1.
func splitIndex(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != '/' {
			continue
		}
		n := 0
		for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
			n++
		}
		if n%2 == 0 {
			return i
		}
	}
	return -1
}

// ParseToken splits s at its last unescaped slash and unescapes the word.
func ParseToken(s string) (Token, error) {
	idx := splitIndex(s)
	if idx < 0 {
		return Token{}, &MalformedTokenError{Text: s, Reason: "missing tag delimiter"}
	}
	word, tag := s[:idx], s[idx+1:]
	if word == "" {
		return Token{}, &MalformedTokenError{Text: s, Reason: "empty word"}
	}
	if tag == "" {
		return Token{}, &MalformedTokenError{Text: s, Reason: "empty tag"}
	}
	return Token{Word: Unescape(word), Tag: tag}, nil
}

// StripTag returns the unescaped word of s, dropping a trailing /tag if
// present. A suffix that does not look like a tag, as in "and/or" or "1/2",
// is kept as part of the word.
func StripTag(s string) string {
	if idx := splitIndex(s); idx > 0 && looksLikeTag(s[idx+1:]) {
		return Unescape(s[:idx])
	}
	return Unescape(s)
}

// looksLikeTag reports whether s uses only tagset characters: upper-case
// letters and the punctuation found in Penn tags such as PRP$, -LRB- or ``.
func looksLikeTag(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case 'A' <= c && c <= 'Z':
		case strings.IndexByte("$.,:()#'`-", c) >= 0:
		default:
			return false
		}
	}
	return true
}
