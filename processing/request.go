package processing

import (
	"strings"

	"github.com/drewmudry/slideshorts/models"
)

// NormalizeRequest fills in the defaults for a render request. A zero
// duration means "not given"; other values are clamped later by Allocate.
func NormalizeRequest(req models.RenderRequest) models.RenderRequest {
	req.Script = strings.TrimSpace(req.Script)
	if req.Script == "" {
		req.Script = DefaultScript
	}
	if req.Duration == 0 {
		req.Duration = DefaultDuration
	}
	req.Background = strings.TrimSpace(req.Background)
	return req
}
