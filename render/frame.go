package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/drewmudry/slideshorts/models"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Output frame geometry. Portrait 9:16, fixed for every caption.
const (
	Width  = 1080
	Height = 1920

	HorizontalMargin = 160
	LineHeight       = 80
	OutlineOffset    = 2
)

var (
	outlineColor = color.RGBA{A: 255}
	fillColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Compositor draws caption text over a flat background.
type Compositor struct {
	fonts *FontProvider
}

func NewCompositor(fonts *FontProvider) *Compositor {
	return &Compositor{fonts: fonts}
}

// Layout returns the wrapped lines a caption text is drawn as.
func (c *Compositor) Layout(text string) []string {
	face := c.fonts.Face()
	defer face.Close()
	return wrapWithFace(face, text)
}

func wrapWithFace(face font.Face, text string) []string {
	return Wrap(text, Width-HorizontalMargin, func(s string) int {
		return font.MeasureString(face, s).Ceil()
	})
}

// Composite renders one caption onto a new Width x Height frame. Lines are
// centred horizontally and the block is centred on 75% of the height.
func (c *Compositor) Composite(caption models.CaptionUnit, bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	face := c.fonts.Face()
	defer face.Close()

	lines := wrapWithFace(face, caption.Text)
	ascent := face.Metrics().Ascent.Ceil()
	y := int(Height*0.75) - (len(lines)*LineHeight)/2
	for _, ln := range lines {
		w := font.MeasureString(face, ln).Ceil()
		x := (Width - w) / 2
		drawText(img, face, ln, outlineColor, x+OutlineOffset, y+OutlineOffset+ascent)
		drawText(img, face, ln, fillColor, x, y+ascent)
		y += LineHeight
	}
	return img
}

// drawText draws s with its baseline origin at (x, y).
func drawText(dst draw.Image, face font.Face, s string, col color.Color, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
