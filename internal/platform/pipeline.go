package platform

import (
	"github.com/drewmudry/slideshorts/jobs"
	"github.com/drewmudry/slideshorts/render"
	"github.com/drewmudry/slideshorts/video"
	"github.com/drewmudry/slideshorts/worker"
	"github.com/hashicorp/go-hclog"
)

// NewProcessor wires the render pipeline from config. A nil publisher
// disables job events.
func NewProcessor(cfg Config, logger hclog.Logger, publisher worker.Publisher) *worker.Processor {
	fonts := render.NewFontProvider(cfg.FontPath, cfg.FontSize, logger.Named("fonts"))
	return worker.NewProcessor(
		jobs.NewStore(),
		render.NewCompositor(fonts),
		video.NewAssembler(cfg.FFmpegPath, logger.Named("assembler")),
		worker.Options{
			StoreDir:      cfg.StoreDir,
			PublicBaseURL: cfg.PublicBaseURL,
			Publisher:     publisher,
			Logger:        logger.Named("worker"),
		},
	)
}
