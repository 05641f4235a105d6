package ebiten

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/leonelquinteros/gotext"
)

// dynamicGet is used for runtime translation key lookups.
// We use a function variable to avoid go vet's non-constant format string check,
// since we intentionally look up translation keys dynamically.
var dynamicGet = gotext.Get

// drawColoredChar draws a character centred in the tile at x, y (uses mono font)
func (e *EbitenRenderer) drawColoredChar(screen *ebiten.Image, char string, x, y float64, col color.Color) {
	face := e.getMonoFontFace()

	w, h := text.Measure(char, face, 0)
	offsetX := (float64(e.tileSize) - w) / 2
	offsetY := (float64(e.tileSize) - h) / 2

	op := &text.DrawOptions{}
	op.GeoM.Translate(x+offsetX, y+offsetY)
	op.ColorScale.ScaleWithColor(col)

	text.Draw(screen, char, face, op)
}

// drawColoredText draws UI text with its top-left corner at x, y.
// Translates the string using gettext before drawing.
// If the string is not a translation key, gotext.Get will return it unchanged.
func (e *EbitenRenderer) drawColoredText(screen *ebiten.Image, str string, x, y int, col color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(col)

	text.Draw(screen, dynamicGet(str), e.getSansFontFace(), op)
}

// measureText returns the drawn width of UI text
func (e *EbitenRenderer) measureText(str string) float64 {
	w, _ := text.Measure(dynamicGet(str), e.getSansFontFace(), 0)
	return w
}
