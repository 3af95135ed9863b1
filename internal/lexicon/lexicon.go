// Package lexicon loads a CMU-style pronouncing dictionary and resolves
// words to their ARPABET pronunciations.
package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Lexicon is an in-memory pronouncing dictionary. Words are stored
// uppercase; each maps to the first pronunciation listed in the source
// file, phones kept verbatim including stress digits.
type Lexicon struct {
	entries map[string][]string
}

// New returns an empty lexicon. Useful in tests and as a fallback when no
// dictionary file is available.
func New() *Lexicon {
	return &Lexicon{entries: make(map[string][]string)}
}

// Add records a pronunciation for word, unless one is already present.
// The first pronunciation wins, matching dictionary file order where
// variants follow the base entry.
func (l *Lexicon) Add(word string, phones []string) {
	key := strings.ToUpper(word)
	if key == "" || len(phones) == 0 {
		return
	}
	if _, ok := l.entries[key]; ok {
		return
	}
	l.entries[key] = phones
}

// Lookup returns the pronunciation for word, matching case-insensitively.
func (l *Lexicon) Lookup(word string) ([]string, bool) {
	phones, ok := l.entries[strings.ToUpper(word)]
	return phones, ok
}

// Size returns the number of distinct words.
func (l *Lexicon) Size() int {
	return len(l.entries)
}

// Parse reads a dictionary in cmudict format: one entry per line,
// whitespace-separated word and phones. Lines starting with ";;;" are
// comments, "#" starts a trailing comment, and variant entries carry a
// "(n)" suffix on the word. Variants beyond the first pronunciation are
// ignored. Lines without at least one phone are skipped.
func Parse(r io.Reader) (*Lexicon, error) {
	lex := New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, ";;;") {
			continue
		}
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		word := fields[0]
		if i := strings.IndexByte(word, '('); i > 0 {
			word = word[:i]
		}
		lex.Add(word, fields[1:])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lexicon: %w", err)
	}
	return lex, nil
}

// Load parses the dictionary file at path.
func Load(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lexicon: %w", err)
	}
	defer f.Close()

	lex, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing lexicon %s: %w", path, err)
	}
	return lex, nil
}
