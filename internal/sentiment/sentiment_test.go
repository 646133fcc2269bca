package sentiment_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/LarryLuggage/project-libris/internal/sentiment"
)

var samples = []string{
	"",
	"It was a beautiful, bright and golden morning full of joy and hope.",
	"The wretched, miserable creature wept in the cold and terrible dark.",
	`"Are you mad?" she cried. "Never," he whispered, "I am perfectly well."`,
	"The ship sailed on the third day of the month.",
	"Not good. Not good at all, and very very bad, extremely horrible.",
	"beautiful beautiful beautiful wonderful magnificent perfect excellent delightful glorious",
}

func mustAnalyzer(t *testing.T) *sentiment.Analyzer {
	t.Helper()
	a, err := sentiment.DefaultAnalyzer()
	if err != nil {
		t.Fatalf("DefaultAnalyzer: %v", err)
	}
	return a
}

func TestEveryVariantStaysInRange(t *testing.T) {
	analyzer := mustAnalyzer(t)
	for _, kind := range sentiment.Kinds() {
		scorer, err := sentiment.New(kind, analyzer, sentiment.DefaultKeywordPolicy())
		if err != nil {
			t.Fatalf("New(%s): %v", kind, err)
		}
		for _, text := range samples {
			score := scorer.Score(text)
			if score < 0 || score > 1 || math.IsNaN(score) {
				t.Fatalf("%s score %v out of range for %q", kind, score, text)
			}
			if again := scorer.Score(text); again != score {
				t.Fatalf("%s is not deterministic: %v then %v", kind, score, again)
			}
		}
	}
}

func TestPolarityOrdersPositiveAboveNegative(t *testing.T) {
	scorer := sentiment.Polarity(mustAnalyzer(t))
	positive := scorer.Score(samples[1])
	negative := scorer.Score(samples[2])
	if positive <= 0.5 {
		t.Fatalf("expected positive text above neutral, got %v", positive)
	}
	if negative >= 0.5 {
		t.Fatalf("expected negative text below neutral, got %v", negative)
	}
	if neutral := scorer.Score(samples[4]); neutral != 0.5 {
		t.Fatalf("expected unmatched text to be neutral, got %v", neutral)
	}
}

func TestNegationFlipsPolarity(t *testing.T) {
	analyzer := mustAnalyzer(t)
	plain := analyzer.Analyze("a good day")
	negated := analyzer.Analyze("not a good day")
	if plain.Polarity <= 0 {
		t.Fatalf("expected positive polarity, got %v", plain.Polarity)
	}
	if negated.Polarity >= 0 {
		t.Fatalf("expected negated polarity to be negative, got %v", negated.Polarity)
	}
	contracted := analyzer.Analyze("it wasn't good")
	if contracted.Polarity >= 0 {
		t.Fatalf("expected contraction to negate, got %v", contracted.Polarity)
	}
}

func TestIntensifierStrengthensPolarity(t *testing.T) {
	analyzer := mustAnalyzer(t)
	plain := analyzer.Analyze("good")
	strong := analyzer.Analyze("very good")
	if strong.Polarity <= plain.Polarity {
		t.Fatalf("expected intensified polarity above %v, got %v", plain.Polarity, strong.Polarity)
	}
}

func TestHybridBlendsSubjectivity(t *testing.T) {
	analyzer := mustAnalyzer(t)
	text := "a beautiful day"
	a := analyzer.Analyze(text)
	want := 0.7*((a.Polarity+1)/2) + 0.3*a.Subjectivity
	if got := sentiment.Hybrid(analyzer).Score(text); math.Abs(got-want) > 1e-9 {
		t.Fatalf("hybrid = %v, want %v", got, want)
	}
}

func TestLiteraryNeverBelowHybridWithKeywords(t *testing.T) {
	analyzer := mustAnalyzer(t)
	hybrid := sentiment.Hybrid(analyzer)
	literary, err := sentiment.New(sentiment.KindLiterary, analyzer, sentiment.DefaultKeywordPolicy())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	texts := []string{
		`"Love," she said, "is the light we carry." The hope in her voice was sweet.`,
		`"Hate," he spat, "is all I know." There was no hope and no love, no light.`,
		`"Wonder," said one. "Joy," said the other, beneath a vast and ancient sky.`,
	}
	for _, text := range texts {
		h := hybrid.Score(text)
		l := literary.Score(text)
		if l < h {
			t.Fatalf("literary %v below hybrid %v for %q", l, h, text)
		}
		if l == h && h < 1 {
			t.Fatalf("expected a keyword bonus for %q", text)
		}
	}
}

func TestKeywordBonus(t *testing.T) {
	policy := sentiment.DefaultKeywordPolicy()
	cases := []struct {
		name string
		text string
		want float64
	}{
		{name: "none", text: "plain words", want: 0},
		{name: "distinct positive", text: "LOVE and love and lovely hope", want: 0.03},
		{name: "descriptive", text: "a vast ancient hall", want: 0.02},
		{name: "dialogue", text: `"a" "b"`, want: 0.03},
		{name: "one quoted span", text: `"a"`, want: 0},
		{name: "capped", text: `beautiful wonder joy love hope dream light bright golden gentle peace warm sweet grace glory vast ancient "x" "y"`, want: 0.15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.Bonus(tc.text); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Bonus(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]sentiment.Kind{
		"":         sentiment.KindLiterary,
		"literary": sentiment.KindLiterary,
		"TextBlob": sentiment.KindPolarity,
		"polarity": sentiment.KindPolarity,
		" hybrid ": sentiment.KindHybrid,
	}
	for name, want := range cases {
		got, err := sentiment.ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseKind(%q) = %q, want %q", name, got, want)
		}
	}
	if _, err := sentiment.ParseKind("vader"); err == nil {
		t.Fatal("expected error for unknown analyzer")
	}
}

func TestLoadAnalyzerFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.toml")
	content := "negations = [\"not\"]\n\n[intensifiers]\nvery = 2.0\n\n[words]\nSunny = { polarity = 0.5, subjectivity = 0.4 }\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write lexicon: %v", err)
	}
	analyzer, err := sentiment.LoadAnalyzer(path)
	if err != nil {
		t.Fatalf("LoadAnalyzer: %v", err)
	}
	got := analyzer.Analyze("a very sunny day")
	if got.Polarity != 1 || got.Subjectivity != 0.8 || got.Matches != 1 {
		t.Fatalf("unexpected assessment %+v", got)
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("[words]\nodd = { polarity = 3.0, subjectivity = 0.1 }\n"), 0o644); err != nil {
		t.Fatalf("write lexicon: %v", err)
	}
	if _, err := sentiment.LoadAnalyzer(bad); err == nil {
		t.Fatal("expected out of range polarity to be rejected")
	}
}
