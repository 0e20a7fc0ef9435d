// Package pool provides object pooling to reduce GC pressure
package pool

import (
	"sync"

	"github.com/kittclouds/postag/pkg/corpus"
)

// TokenSlicePool pools token buffers used while tagging a document
var TokenSlicePool = sync.Pool{
	New: func() interface{} {
		s := make([]corpus.Token, 0, 256)
		return &s
	},
}

// StringSlicePool pools []string word buffers
var StringSlicePool = sync.Pool{
	New: func() interface{} {
		s := make([]string, 0, 256)
		return &s
	},
}

// GetTokens gets an empty token buffer from pool
func GetTokens() *[]corpus.Token {
	s := TokenSlicePool.Get().(*[]corpus.Token)
	*s = (*s)[:0]
	return s
}

// PutTokens returns a token buffer to pool
func PutTokens(s *[]corpus.Token) {
	TokenSlicePool.Put(s)
}

// GetWords gets an empty word buffer from pool
func GetWords() *[]string {
	s := StringSlicePool.Get().(*[]string)
	*s = (*s)[:0]
	return s
}

// PutWords returns a word buffer to pool
func PutWords(s *[]string) {
	StringSlicePool.Put(s)
}
