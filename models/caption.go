package models

// CaptionUnit is one timed line of script text shown on a single frame.
type CaptionUnit struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration is the length of the caption window in seconds.
func (c CaptionUnit) Duration() float64 {
	return c.End - c.Start
}
