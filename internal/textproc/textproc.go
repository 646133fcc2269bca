// Package textproc turns a raw Project Gutenberg text into excerpt-sized
// paragraphs. Everything here is pure and safe for concurrent use.
package textproc

import (
	"regexp"
	"strings"
)

var (
	startMarker = regexp.MustCompile(`(?i)\*\*\* START OF (THE|THIS) PROJECT GUTENBERG EBOOK .* \*\*\*`)
	endMarker   = regexp.MustCompile(`(?i)\*\*\* END OF (THE|THIS) PROJECT GUTENBERG EBOOK .* \*\*\*`)

	paragraphBreak = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)
)

const (
	DefaultMinWords = 40
	DefaultMaxWords = 300
)

// Window is the inclusive word-count range a paragraph must fall in to be
// kept as an excerpt.
type Window struct {
	Min int
	Max int
}

// DefaultWindow returns the standard excerpt window.
func DefaultWindow() Window {
	return Window{Min: DefaultMinWords, Max: DefaultMaxWords}
}

// Contains reports whether a word count falls inside the window.
func (w Window) Contains(words int) bool {
	return words >= w.Min && words <= w.Max
}

// StripBoilerplate returns the text between the archive's START and END
// markers with surrounding whitespace trimmed. A missing marker falls back to
// the corresponding edge of the text. The END marker only counts when it
// follows the START marker.
func StripBoilerplate(text string) string {
	start := 0
	if loc := startMarker.FindStringIndex(text); loc != nil {
		start = loc[1]
	}
	end := len(text)
	if loc := endMarker.FindStringIndex(text[start:]); loc != nil {
		end = start + loc[0]
	}
	return strings.TrimSpace(text[start:end])
}

// Chunk splits text on blank lines, collapses whitespace inside each
// paragraph and keeps the paragraphs whose word count is inside the window.
// Paragraphs outside the window are dropped, never merged or truncated.
func Chunk(text string, window Window) []string {
	var chunks []string
	for _, paragraph := range paragraphBreak.Split(text, -1) {
		words := strings.Fields(paragraph)
		if len(words) == 0 || !window.Contains(len(words)) {
			continue
		}
		chunks = append(chunks, strings.Join(words, " "))
	}
	return chunks
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
