package gutenberg

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const byteOrderMark = "\ufeff"

// decodeText interprets body as UTF-8 and falls back to ISO-8859-1, which
// maps every byte to a rune and therefore cannot fail.
func decodeText(body []byte) string {
	var text string
	if utf8.Valid(body) {
		text = string(body)
	} else if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body); err == nil {
		text = string(decoded)
	} else {
		text = strings.ToValidUTF8(string(body), "\uFFFD")
	}
	return strings.TrimPrefix(text, byteOrderMark)
}
