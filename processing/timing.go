package processing

import (
	"math"

	"github.com/drewmudry/slideshorts/models"
)

const (
	MinDuration = 5
	MaxDuration = 30

	// DefaultDuration is used when a request omits the duration.
	DefaultDuration = 15

	// minPerCaption is the floor for each caption's nominal share.
	minPerCaption = 1.0
)

// ClampDuration bounds a requested duration to [MinDuration, MaxDuration].
func ClampDuration(seconds int) int {
	return max(MinDuration, min(MaxDuration, seconds))
}

// Allocate gives each caption a contiguous [start, end) window.
//
// Every caption gets max(1s, total/n). Windows are accumulated and clamped at
// the total, so when the 1s floor overshoots, trailing captions collapse to
// zero-width windows at the ceiling. Downstream clip holding covers that.
func Allocate(texts []string, requestedSeconds int) []models.CaptionUnit {
	total := float64(ClampDuration(requestedSeconds))
	per := math.Max(minPerCaption, total/float64(max(1, len(texts))))

	captions := make([]models.CaptionUnit, 0, len(texts))
	t := 0.0
	for _, text := range texts {
		start, end := t, math.Min(total, t+per)
		captions = append(captions, models.CaptionUnit{Text: text, Start: start, End: end})
		t = end
	}
	return captions
}

// CaptionsFromScript segments a script and allocates its timing.
func CaptionsFromScript(script string, seconds int) []models.CaptionUnit {
	return Allocate(Segment(script), seconds)
}
