package tagger

import "slices"

// Penn Treebank tags the rules refer to by name.
const (
	NN   = "NN"   // singular common noun
	NNS  = "NNS"  // plural common noun
	NNP  = "NNP"  // singular proper noun
	NNPS = "NNPS" // plural proper noun
	VB   = "VB"   // base verb
	VBD  = "VBD"  // past tense
	VBG  = "VBG"  // gerund / present participle
	VBN  = "VBN"  // past participle
	VBP  = "VBP"  // non-3rd person present
	VBZ  = "VBZ"  // 3rd person present, also the 's contraction
	MD   = "MD"
	TO   = "TO"
	RB   = "RB"
	RP   = "RP"
	IN   = "IN"
	DT   = "DT"
	WDT  = "WDT"
	POS  = "POS"
	CD   = "CD"
	JJ   = "JJ"
)

// DefaultTag is assigned to words the model has never seen.
const DefaultTag = NN

var (
	verbTags        = []string{VB, VBD, VBG, VBN, VBP, VBZ}
	nounTags        = []string{NN, NNS, NNP, NNPS}
	punctuationTags = []string{".", ",", ":", "``", "''", "(", ")", "-LRB-", "-RRB-", "#", "$", "--"}

	// A base verb usually follows one of these.
	verbCueTags = []string{TO, MD, RB}

	auxiliaries = []string{"had", "has", "have", "been", "be", "are", "am", "was", "were", "do", "did"}
)

// IsVerb reports whether tag is any verb form. Empty tags never match.
func IsVerb(tag string) bool { return slices.Contains(verbTags, tag) }

// IsNoun reports whether tag is any noun form.
func IsNoun(tag string) bool { return slices.Contains(nounTags, tag) }

// IsPunctuation reports whether tag belongs to the punctuation class.
func IsPunctuation(tag string) bool { return slices.Contains(punctuationTags, tag) }

func isVerbCue(tag string) bool { return slices.Contains(verbCueTags, tag) }

func isAuxiliary(word string) bool {
	return word != "" && slices.Contains(auxiliaries, fastLower(word))
}
