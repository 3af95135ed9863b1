// Package phoneme turns raw text into a flat ARPABET symbol sequence using
// a pronouncing dictionary, with a per-letter fallback for words the
// dictionary does not know.
package phoneme

import (
	"strings"
	"unicode"
)

// Lookup resolves a word to its dictionary pronunciation. *lexicon.Lexicon
// satisfies it; tests inject small fixed tables.
type Lookup interface {
	Lookup(word string) ([]string, bool)
}

// Phonemizer converts text to phonemes against one dictionary.
type Phonemizer struct {
	lex Lookup
}

// NewPhonemizer creates a Phonemizer. A nil lexicon sends every word down
// the letter fallback path.
func NewPhonemizer(lex Lookup) *Phonemizer {
	return &Phonemizer{lex: lex}
}

// Normalize strips a raw token down to letters and apostrophes and
// uppercases it. Everything else (digits, punctuation, symbols) is
// removed. An empty result means the token carries no speakable content.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsLetter(r) || r == '\'' {
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}

// StripStress removes the trailing stress digit from an ARPABET phone,
// exactly one: "AH0" becomes "AH", "OW1" becomes "OW". Phones without a
// trailing digit pass through unchanged.
func StripStress(phone string) string {
	if n := len(phone); n > 0 && phone[n-1] >= '0' && phone[n-1] <= '9' {
		return phone[:n-1]
	}
	return phone
}

// Phonemize splits text on whitespace and resolves each word. Dictionary
// hits contribute their phones with stress digits stripped; misses fall
// back to one symbol per letter of the normalized word. Word boundaries
// are not preserved in the output.
func (p *Phonemizer) Phonemize(text string) []string {
	var phones []string
	for _, raw := range strings.Fields(text) {
		word := Normalize(raw)
		if word == "" {
			continue
		}
		if p.lex != nil {
			if pron, ok := p.lex.Lookup(word); ok {
				for _, ph := range pron {
					phones = append(phones, StripStress(ph))
				}
				continue
			}
		}
		for _, r := range word {
			if r == '\'' {
				continue
			}
			phones = append(phones, string(r))
		}
	}
	return phones
}
