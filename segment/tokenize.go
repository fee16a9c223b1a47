package segment

import (
	"strings"
	"unicode"
)

// Tokenize splits text into lowercased tokens on any run of
// non-alphanumeric runes. The token's index in the result is its
// position for phrase matching.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}
