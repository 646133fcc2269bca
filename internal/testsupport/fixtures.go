package testsupport

import (
	"fmt"
	"strings"
)

// BookText wraps paragraphs in a Project Gutenberg style header and footer.
func BookText(title string, paragraphs ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The Project Gutenberg eBook of %s\n\n", title)
	b.WriteString("This eBook is for the use of anyone anywhere.\n\n")
	fmt.Fprintf(&b, "*** START OF THE PROJECT GUTENBERG EBOOK %s ***\n\n", strings.ToUpper(title))
	b.WriteString(strings.Join(paragraphs, "\n\n"))
	fmt.Fprintf(&b, "\n\n*** END OF THE PROJECT GUTENBERG EBOOK %s ***\n\n", strings.ToUpper(title))
	b.WriteString("Updated editions will replace the previous one.\n")
	return b.String()
}

// Paragraph builds a paragraph of exactly n words by cycling through words.
func Paragraph(n int, words ...string) string {
	if len(words) == 0 {
		words = []string{"the", "gentle", "light", "fell", "across", "the", "quiet", "valley"}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = words[i%len(words)]
	}
	return strings.Join(out, " ")
}
