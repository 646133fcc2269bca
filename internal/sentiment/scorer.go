package sentiment

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Scorer maps a text to a normalized engagement score in [0, 1].
type Scorer interface {
	Score(text string) float64
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(text string) float64

// Score implements Scorer.
func (f ScorerFunc) Score(text string) float64 { return f(text) }

// Kind names a scoring variant.
type Kind string

const (
	KindPolarity Kind = "polarity"
	KindHybrid   Kind = "hybrid"
	KindLiterary Kind = "literary"
)

const (
	hybridPolarityWeight     = 0.7
	hybridSubjectivityWeight = 0.3
)

// Kinds lists the supported variants in display order.
func Kinds() []Kind {
	return []Kind{KindPolarity, KindHybrid, KindLiterary}
}

// ParseKind resolves a configured analyzer name. "textblob" is accepted as
// an alias of the polarity variant and the empty name selects literary.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(KindLiterary):
		return KindLiterary, nil
	case "textblob", string(KindPolarity):
		return KindPolarity, nil
	case string(KindHybrid):
		return KindHybrid, nil
	default:
		return "", fmt.Errorf("unknown sentiment analyzer %q (want polarity, hybrid or literary)", name)
	}
}

// New returns the scorer for kind. The literary variant wraps hybrid.
func New(kind Kind, analyzer *Analyzer, policy KeywordPolicy) (Scorer, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("sentiment analyzer is required")
	}
	switch kind {
	case KindPolarity:
		return Polarity(analyzer), nil
	case KindHybrid:
		return Hybrid(analyzer), nil
	case KindLiterary:
		return Literary(Hybrid(analyzer), policy), nil
	default:
		return nil, fmt.Errorf("unknown sentiment analyzer %q", kind)
	}
}

// Polarity maps the analyzer polarity linearly from [-1, 1] onto [0, 1].
func Polarity(analyzer *Analyzer) Scorer {
	return ScorerFunc(func(text string) float64 {
		return normalizePolarity(analyzer.Analyze(text).Polarity)
	})
}

// Hybrid blends normalized polarity with subjectivity.
func Hybrid(analyzer *Analyzer) Scorer {
	return ScorerFunc(func(text string) float64 {
		a := analyzer.Analyze(text)
		score := hybridPolarityWeight*normalizePolarity(a.Polarity) + hybridSubjectivityWeight*a.Subjectivity
		return clamp(score, 0, 1)
	})
}

// Literary adds the keyword bonus of policy to the base score.
func Literary(base Scorer, policy KeywordPolicy) Scorer {
	policy = policy.normalized()
	return ScorerFunc(func(text string) float64 {
		return clamp(base.Score(text)+policy.Bonus(text), 0, 1)
	})
}

func normalizePolarity(p float64) float64 {
	return clamp((p+1)/2, 0, 1)
}

// KeywordPolicy configures the literary keyword bonus.
type KeywordPolicy struct {
	Positive          []string
	Descriptive       []string
	PositiveWeight    float64
	DescriptiveWeight float64
	DialogueBonus     float64
	MaxBonus          float64
}

// DefaultKeywordPolicy returns the standard keyword lists and weights.
func DefaultKeywordPolicy() KeywordPolicy {
	return KeywordPolicy{
		Positive: []string{
			"beautiful", "wonder", "joy", "love", "hope", "dream", "light", "bright",
			"golden", "gentle", "peace", "warm", "sweet", "grace", "glory",
		},
		Descriptive: []string{
			"gleaming", "vast", "ancient", "whispered", "echoed", "shimmering",
			"towering", "sprawling", "delicate", "magnificent", "mysterious", "ethereal",
		},
		PositiveWeight:    0.015,
		DescriptiveWeight: 0.01,
		DialogueBonus:     0.03,
		MaxBonus:          0.15,
	}
}

// dialogueQuotes is the number of quotation marks that make two complete
// quoted spans.
const dialogueQuotes = 4

// Bonus computes the capped keyword bonus for text. Keywords match as
// case-insensitive substrings and count once each.
func (p KeywordPolicy) Bonus(text string) float64 {
	lowered := cases.Lower(language.English).String(text)
	bonus := 0.0
	for _, word := range p.Positive {
		if word != "" && strings.Contains(lowered, word) {
			bonus += p.PositiveWeight
		}
	}
	for _, word := range p.Descriptive {
		if word != "" && strings.Contains(lowered, word) {
			bonus += p.DescriptiveWeight
		}
	}
	if strings.Count(text, `"`) >= dialogueQuotes {
		bonus += p.DialogueBonus
	}
	return clamp(bonus, 0, p.MaxBonus)
}

func (p KeywordPolicy) normalized() KeywordPolicy {
	lower := cases.Lower(language.English)
	out := p
	out.Positive = dedupeLower(lower, p.Positive)
	out.Descriptive = dedupeLower(lower, p.Descriptive)
	return out
}

func dedupeLower(caser cases.Caser, words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, word := range words {
		word = caser.String(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}
