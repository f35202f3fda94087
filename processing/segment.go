package processing

import (
	"regexp"
	"strings"
)

const (
	// MaxCaptions caps how many caption lines one script produces. Extra
	// fragments are dropped, never merged.
	MaxCaptions = 8

	// DefaultScript is used when the request has no script and as the single
	// caption when a script yields no usable fragments.
	DefaultScript = "你好，這是示範影片。"
)

// sentenceBreaks matches any run of full-width or half-width sentence
// terminators, commas and newlines.
var sentenceBreaks = regexp.MustCompile(`[。！？!?，,\n]+`)

// Segment splits a script into ordered caption texts.
func Segment(script string) []string {
	var parts []string
	for _, fragment := range sentenceBreaks.Split(script, -1) {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		parts = append(parts, fragment)
		if len(parts) == MaxCaptions {
			break
		}
	}

	if len(parts) == 0 {
		return []string{DefaultScript}
	}
	return parts
}
