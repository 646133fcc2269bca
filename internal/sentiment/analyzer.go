package sentiment

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed lexicon.toml
var defaultLexicon []byte

const (
	negationWindow = 3
	negationFactor = -0.5
)

var tokenPattern = regexp.MustCompile(`[\p{L}]+(?:['’-][\p{L}]+)*`)

// LexiconEntry scores a single word.
type LexiconEntry struct {
	Polarity     float64 `toml:"polarity"`
	Subjectivity float64 `toml:"subjectivity"`
}

// Lexicon is the on-disk layout of a sentiment lexicon.
type Lexicon struct {
	Negations    []string                `toml:"negations"`
	Intensifiers map[string]float64      `toml:"intensifiers"`
	Words        map[string]LexiconEntry `toml:"words"`
}

// Assessment is the raw analyzer output for one text.
type Assessment struct {
	Polarity     float64
	Subjectivity float64
	Matches      int
}

// Analyzer estimates polarity and subjectivity by averaging lexicon entries.
// It is immutable after construction and safe for concurrent use.
type Analyzer struct {
	words        map[string]LexiconEntry
	intensifiers map[string]float64
	negations    map[string]struct{}
}

var (
	defaultAnalyzerOnce sync.Once
	defaultAnalyzer     *Analyzer
	defaultAnalyzerErr  error
)

// DefaultAnalyzer returns the analyzer backed by the embedded lexicon.
func DefaultAnalyzer() (*Analyzer, error) {
	defaultAnalyzerOnce.Do(func() {
		defaultAnalyzer, defaultAnalyzerErr = parseLexicon(defaultLexicon, "embedded lexicon")
	})
	return defaultAnalyzer, defaultAnalyzerErr
}

// LoadAnalyzer builds an analyzer from a lexicon file.
func LoadAnalyzer(path string) (*Analyzer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return parseLexicon(data, path)
}

func parseLexicon(data []byte, source string) (*Analyzer, error) {
	var lex Lexicon
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&lex); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	analyzer, err := NewAnalyzer(lex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return analyzer, nil
}

// NewAnalyzer validates a lexicon and indexes it by lowercase word.
func NewAnalyzer(lex Lexicon) (*Analyzer, error) {
	if len(lex.Words) == 0 {
		return nil, errors.New("lexicon has no words")
	}
	lower := cases.Lower(language.English)
	a := &Analyzer{
		words:        make(map[string]LexiconEntry, len(lex.Words)),
		intensifiers: make(map[string]float64, len(lex.Intensifiers)),
		negations:    make(map[string]struct{}, len(lex.Negations)),
	}
	for word, entry := range lex.Words {
		if entry.Polarity < -1 || entry.Polarity > 1 {
			return nil, fmt.Errorf("word %q: polarity must be between -1 and 1", word)
		}
		if entry.Subjectivity < 0 || entry.Subjectivity > 1 {
			return nil, fmt.Errorf("word %q: subjectivity must be between 0 and 1", word)
		}
		a.words[lower.String(word)] = entry
	}
	for word, factor := range lex.Intensifiers {
		if factor <= 0 {
			return nil, fmt.Errorf("intensifier %q: factor must be positive", word)
		}
		a.intensifiers[lower.String(word)] = factor
	}
	for _, word := range lex.Negations {
		a.negations[lower.String(strings.TrimSpace(word))] = struct{}{}
	}
	return a, nil
}

// Len reports the number of scored words.
func (a *Analyzer) Len() int {
	return len(a.words)
}

// Analyze averages the lexicon entries matched in text. Text without any
// matched word is neutral and objective.
func (a *Analyzer) Analyze(text string) Assessment {
	tokens := tokenize(text)
	var sumPolarity, sumSubjectivity float64
	matches := 0
	for i, token := range tokens {
		entry, ok := a.words[token]
		if !ok {
			continue
		}
		polarity, subjectivity := entry.Polarity, entry.Subjectivity
		if i > 0 {
			if factor, ok := a.intensifiers[tokens[i-1]]; ok {
				polarity *= factor
				subjectivity *= factor
			}
		}
		if a.negatedAt(tokens, i) {
			polarity *= negationFactor
		}
		sumPolarity += clamp(polarity, -1, 1)
		sumSubjectivity += clamp(subjectivity, 0, 1)
		matches++
	}
	if matches == 0 {
		return Assessment{}
	}
	n := float64(matches)
	return Assessment{
		Polarity:     clamp(sumPolarity/n, -1, 1),
		Subjectivity: clamp(sumSubjectivity/n, 0, 1),
		Matches:      matches,
	}
}

func (a *Analyzer) negatedAt(tokens []string, i int) bool {
	for j := max(0, i-negationWindow); j < i; j++ {
		token := tokens[j]
		if _, ok := a.negations[token]; ok {
			return true
		}
		if strings.HasSuffix(token, "n't") || strings.HasSuffix(token, "n’t") {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(cases.Lower(language.English).String(text), -1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
