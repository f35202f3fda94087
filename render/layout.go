package render

import "unicode/utf8"

// Wrap breaks text into lines no wider than maxWidth pixels, as reported by
// measure. It works rune by rune rather than word by word so that scripts
// without spaces between words still wrap. Lines are slices of text, so
// joining them gives back text byte for byte even when it is not valid UTF-8.
// A single rune wider than maxWidth is kept on its own line.
func Wrap(text string, maxWidth int, measure func(string) int) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		end := i + size
		if i == start || measure(text[start:end]) <= maxWidth {
			i = end
			continue
		}
		lines = append(lines, text[start:i])
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
