package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kittclouds/postag/pkg/corpus"
)

func TestTokensComeBackEmpty(t *testing.T) {
	buf := GetTokens()
	*buf = append(*buf, corpus.Token{Word: "dog", Tag: "NN"})
	PutTokens(buf)

	again := GetTokens()
	assert.Empty(t, *again)
	PutTokens(again)
}

func TestWordsComeBackEmpty(t *testing.T) {
	buf := GetWords()
	*buf = append(*buf, "a", "b")
	PutWords(buf)

	again := GetWords()
	assert.Empty(t, *again)
	assert.GreaterOrEqual(t, cap(*again), 2)
	PutWords(again)
}
