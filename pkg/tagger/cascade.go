package tagger

import "github.com/kittclouds/postag/pkg/model"

// Rule names reported by Decide when no rule fired.
const (
	RuleTopTag  = "top-tag"
	RuleDefault = "default"
)

// Decision is the state a rule inspects for one word.
type Decision struct {
	Word string
	Ctx  Context
	// Top is the model's most likely tag, empty for unknown words.
	Top string

	model    *model.Model
	baseline *Baseline
}

// Has reports whether any of tags is a candidate for the word.
func (d *Decision) Has(tags ...string) bool {
	return d.model.HasTag(d.Word, tags...)
}

// HasAll reports whether every one of tags is a candidate for the word.
func (d *Decision) HasAll(tags ...string) bool {
	return d.model.HasAllTags(d.Word, tags...)
}

// Cascade runs the known or unknown rule list, first match wins, and falls
// back to the baseline when nothing fires.
type Cascade struct {
	model    *model.Model
	baseline *Baseline
	known    []Rule
	unknown  []Rule
}

// NewCascade creates a Cascade over m with the standard rule lists.
func NewCascade(m *model.Model) *Cascade {
	return NewCascadeWithRules(m, KnownRules(), UnknownRules())
}

// NewCascadeWithRules creates a Cascade with custom rule lists.
func NewCascadeWithRules(m *model.Model, known, unknown []Rule) *Cascade {
	return &Cascade{
		model:    m,
		baseline: NewBaseline(m),
		known:    known,
		unknown:  unknown,
	}
}

// Classify implements Classifier.
func (c *Cascade) Classify(word string, ctx Context) string {
	tag, _ := c.Decide(word, ctx)
	return tag
}

// Decide returns the tag for word and the name of the rule that chose it.
func (c *Cascade) Decide(word string, ctx Context) (tag, rule string) {
	d := &Decision{Word: word, Ctx: ctx, model: c.model, baseline: c.baseline}

	rules := c.unknown
	fallback := RuleDefault
	if top, ok := c.model.TopTag(word); ok {
		d.Top = top
		rules = c.known
		fallback = RuleTopTag
	}

	for _, r := range rules {
		if r.When(d) {
			return r.Then(d), r.Name
		}
	}
	return c.baseline.Tag(word), fallback
}
