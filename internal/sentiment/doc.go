// Package sentiment scores excerpts for engagement.
//
// Three interchangeable variants share the Scorer interface:
//
//   - polarity maps lexicon polarity from [-1, 1] onto [0, 1]
//   - hybrid blends normalized polarity (70%) with subjectivity (30%)
//   - literary delegates to hybrid and adds a capped bonus for positive and
//     descriptive keywords and for dialogue-heavy passages
//
// Polarity and subjectivity come from Analyzer, a lexicon averager loaded from
// the embedded lexicon.toml or an operator supplied file. Every variant is
// deterministic and returns a value in [0, 1].
package sentiment
