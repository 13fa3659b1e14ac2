package score

import "strings"

// stopwords is the fixed set removed before lemma comparison. Common
// function words carry no grading signal and would inflate the overlap.
var stopwords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"all": true, "am": true, "an": true, "and": true, "any": true,
	"are": true, "as": true, "at": true, "be": true, "because": true,
	"been": true, "before": true, "being": true, "below": true, "between": true,
	"both": true, "but": true, "by": true, "can": true, "could": true,
	"did": true, "do": true, "does": true, "doing": true, "down": true,
	"during": true, "each": true, "few": true, "for": true, "from": true,
	"further": true, "had": true, "has": true, "have": true, "having": true,
	"he": true, "her": true, "here": true, "hers": true, "him": true,
	"his": true, "how": true, "i": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "its": true, "just": true,
	"me": true, "more": true, "most": true, "my": true, "no": true,
	"nor": true, "not": true, "now": true, "of": true, "off": true,
	"on": true, "once": true, "only": true, "or": true, "other": true,
	"our": true, "out": true, "over": true, "own": true, "same": true,
	"she": true, "should": true, "so": true, "some": true, "such": true,
	"than": true, "that": true, "the": true, "their": true, "theirs": true,
	"them": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "those": true, "through": true, "to": true, "too": true,
	"under": true, "until": true, "up": true, "very": true, "was": true,
	"we": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "who": true, "whom": true, "why": true,
	"will": true, "with": true, "would": true, "you": true, "your": true,
	"yours": true,
}

// keywordRatio measures lexical overlap: the fraction of the reference's
// significant tokens whose lemma also appears in the submission. Token
// order is irrelevant; only membership matters. Returns 0 when the
// reference yields no tokens.
func (s *Scorer) keywordRatio(reference, submission string) float64 {
	refTokens := s.tokenize(reference)
	if len(refTokens) == 0 {
		return 0
	}

	subSet := make(map[string]bool)
	for _, tok := range s.tokenize(submission) {
		subSet[tok] = true
	}

	refSet := make(map[string]bool)
	matched := 0
	for _, tok := range refTokens {
		if refSet[tok] {
			continue
		}
		refSet[tok] = true
		if subSet[tok] {
			matched++
		}
	}

	// Denominator is the reference token multiset, so duplicated reference
	// terms weigh the ratio down unless the overlap covers them all.
	return float64(matched) / float64(len(refTokens))
}

// tokenize lowercases, splits into words, keeps alphabetic tokens only,
// drops stopwords, and reduces each survivor to its dictionary base form.
func (s *Scorer) tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, ".,!?;:()[]{}-\"'")
		if word == "" || !isAlpha(word) || stopwords[word] {
			continue
		}
		tokens = append(tokens, s.lemmas.Lemma(word))
	}
	return tokens
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
