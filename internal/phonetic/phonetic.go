// Package phonetic matches misheard words against known trigger keywords
// using Double Metaphone phonetic encoding combined with Jaro-Winkler string
// similarity.
//
// Speech-to-text output is rarely perfect: "remind me" comes back as
// "remined me", "groceries" as "grocery's". When the router falls back to
// deterministic keyword matching it first tries exact substring containment
// and then consults this matcher so that near-miss transcriptions still
// reach the right workflow.
//
// The algorithm proceeds in two stages:
//
//  1. Phonetic candidate filtering: Double Metaphone codes are computed for
//     the input word and for each keyword. Overlapping codes make the
//     keyword a phonetic candidate.
//
//  2. Jaro-Winkler ranking: among phonetic candidates the keyword with the
//     highest similarity wins, provided it clears the phonetic threshold.
//     With no phonetic candidate, a secondary pass accepts pure string
//     similarity above a stricter fuzzy threshold.
//
// The Matcher is read-only after construction and safe for concurrent use.
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched keyword to be accepted. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when no
// phonetic match is found and the matcher falls back to pure string
// similarity. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.fuzzyThreshold = threshold
	}
}

// Matcher is a phonetic keyword matcher.
type Matcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// New returns a new [Matcher] configured with the supplied options.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match attempts to find the keyword most phonetically similar to word.
//
// word may be a single word or a space-separated phrase; multi-word keywords
// ("shopping list") are compared token-wise as well as whole. When matched is
// false, keyword equals word unchanged and confidence is 0.
func (m *Matcher) Match(word string, keywords []string) (keyword string, confidence float64, matched bool) {
	if len(keywords) == 0 || strings.TrimSpace(word) == "" {
		return word, 0, false
	}

	wordLower := strings.ToLower(strings.TrimSpace(word))
	wordTokens := strings.Fields(wordLower)
	inputCodes := codesForTokens(wordTokens)

	type candidate struct {
		keyword  string
		score    float64
		phonetic bool
	}

	var best candidate

	for _, kw := range keywords {
		kwLower := strings.ToLower(strings.TrimSpace(kw))
		if kwLower == "" {
			continue
		}
		kwTokens := strings.Fields(kwLower)

		kwCodes := codesForTokens(kwTokens)
		phoneticMatch := codesOverlap(inputCodes, kwCodes)

		jwScore := bestJWScore(wordTokens, kwTokens, wordLower, kwLower)

		if phoneticMatch {
			if jwScore >= m.phoneticThreshold {
				if !best.phonetic || jwScore > best.score {
					best = candidate{keyword: kw, score: jwScore, phonetic: true}
				}
			}
		} else if !best.phonetic {
			if jwScore >= m.fuzzyThreshold && jwScore > best.score {
				best = candidate{keyword: kw, score: jwScore, phonetic: false}
			}
		}
	}

	if best.keyword != "" {
		return best.keyword, best.score, true
	}
	return word, 0, false
}

// MatchText reports whether any whole word or bigram of text phonetically
// matches one of keywords. Used for utterance-level trigger scanning.
func (m *Matcher) MatchText(text string, keywords []string) bool {
	tokens := strings.Fields(strings.ToLower(text))
	for i := range tokens {
		if _, _, ok := m.Match(tokens[i], keywords); ok {
			return true
		}
		if i+1 < len(tokens) {
			if _, _, ok := m.Match(tokens[i]+" "+tokens[i+1], keywords); ok {
				return true
			}
		}
	}
	return false
}

// codesForTokens returns the union of all Double Metaphone codes for the
// given tokens. Empty codes are excluded.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

// codesOverlap returns true if the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestJWScore computes the highest Jaro-Winkler similarity between the input
// and the keyword using full-string, concatenated, and best pairwise token
// comparisons.
func bestJWScore(inputTokens, kwTokens []string, inputFull, kwFull string) float64 {
	score := matchr.JaroWinkler(inputFull, kwFull, false)

	if len(inputTokens) > 1 || len(kwTokens) > 1 {
		concat1 := strings.Join(inputTokens, "")
		concat2 := strings.Join(kwTokens, "")
		if s := matchr.JaroWinkler(concat1, concat2, false); s > score {
			score = s
		}
	}

	for _, it := range inputTokens {
		for _, kt := range kwTokens {
			if s := matchr.JaroWinkler(it, kt, false); s > score {
				score = s
			}
		}
	}

	return score
}
