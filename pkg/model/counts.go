package model

import (
	"iter"

	"github.com/kittclouds/postag/pkg/corpus"
)

// TagCount maps word -> tag -> number of times the word was seen with the
// tag. It is produced once by Count (or ReadCounts) and treated as read-only.
type TagCount map[string]map[string]int

// Count folds a stream of tagged tokens into a TagCount.
func Count(tokens iter.Seq[corpus.Token]) TagCount {
	c := make(TagCount)
	for tok := range tokens {
		c.add(tok.Word, tok.Tag, 1)
	}
	return c
}

func (c TagCount) add(word, tag string, n int) {
	tags, ok := c[word]
	if !ok {
		tags = make(map[string]int, 1)
		c[word] = tags
	}
	tags[tag] += n
}

// Total returns the number of observations of word over all tags.
func (c TagCount) Total(word string) int {
	sum := 0
	for _, n := range c[word] {
		sum += n
	}
	return sum
}

// Tokens returns the number of observations in the table.
func (c TagCount) Tokens() int {
	sum := 0
	for w := range c {
		sum += c.Total(w)
	}
	return sum
}
