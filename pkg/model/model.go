// Package model holds the word -> tag probability table the taggers consult.
//
// A Model is built once, either from raw counts or from a persisted
// probability table, and is immutable afterwards. It is safe to share between
// goroutines.
package model

import (
	"cmp"
	"slices"
	"sort"
)

// TagProb is one candidate tag for a word.
type TagProb struct {
	Tag  string
	Prob float64
}

// Entry is one (word, tag, probability) row of a probability table.
type Entry struct {
	Word string
	Tag  string
	Prob float64
}

// Model maps each known word to its candidate tags ordered by descending
// probability. Ties are broken lexicographically by tag.
type Model struct {
	tags map[string][]TagProb
}

// FromCounts normalizes counts into probabilities. Words whose tags all have
// zero count are left out so that no known word has an empty candidate list.
func FromCounts(c TagCount) *Model {
	m := &Model{tags: make(map[string][]TagProb, len(c))}
	for word, byTag := range c {
		total := c.Total(word)
		if total == 0 {
			continue
		}
		list := make([]TagProb, 0, len(byTag))
		for tag, n := range byTag {
			if n == 0 {
				continue
			}
			list = append(list, TagProb{Tag: tag, Prob: float64(n) / float64(total)})
		}
		sortTags(list)
		m.tags[word] = list
	}
	return m
}

// FromEntries builds a model from a pre-normalized table. Input order does not
// matter; each word's tags are re-sorted.
func FromEntries(entries []Entry) *Model {
	m := &Model{tags: make(map[string][]TagProb)}
	for _, e := range entries {
		m.tags[e.Word] = append(m.tags[e.Word], TagProb{Tag: e.Tag, Prob: e.Prob})
	}
	for _, list := range m.tags {
		sortTags(list)
	}
	return m
}

func sortTags(list []TagProb) {
	slices.SortFunc(list, func(a, b TagProb) int {
		if c := cmp.Compare(b.Prob, a.Prob); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
}

// Probabilities returns the ordered candidate list for word. ok is false for
// unknown words. The returned slice must not be modified.
func (m *Model) Probabilities(word string) (list []TagProb, ok bool) {
	list, ok = m.tags[word]
	return list, ok
}

// Contains reports whether word is known.
func (m *Model) Contains(word string) bool {
	_, ok := m.tags[word]
	return ok
}

// TopTag returns the most probable tag for word. ok is false for unknown
// words.
func (m *Model) TopTag(word string) (tag string, ok bool) {
	list, ok := m.tags[word]
	if !ok {
		return "", false
	}
	return list[0].Tag, true
}

// HasTag reports whether any of tags appears anywhere in word's candidate
// list. Unknown words have no tags.
func (m *Model) HasTag(word string, tags ...string) bool {
	for _, tp := range m.tags[word] {
		if slices.Contains(tags, tp.Tag) {
			return true
		}
	}
	return false
}

// HasAllTags reports whether every one of tags appears in word's candidate
// list.
func (m *Model) HasAllTags(word string, tags ...string) bool {
	for _, tag := range tags {
		if !m.HasTag(word, tag) {
			return false
		}
	}
	return true
}

// Len returns the number of known words.
func (m *Model) Len() int { return len(m.tags) }

// Words returns every known word, sorted.
func (m *Model) Words() []string {
	words := make([]string, 0, len(m.tags))
	for w := range m.tags {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Entries flattens the model into table rows: words sorted, tags in model
// order.
func (m *Model) Entries() []Entry {
	var out []Entry
	for _, w := range m.Words() {
		for _, tp := range m.tags[w] {
			out = append(out, Entry{Word: w, Tag: tp.Tag, Prob: tp.Prob})
		}
	}
	return out
}
