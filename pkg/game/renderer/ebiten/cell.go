package ebiten

import (
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// drawCell draws one grid cell with its top-left corner at x, y.
func (e *EbitenRenderer) drawCell(screen *ebiten.Image, v cellView, x, y float32) {
	size := float32(e.tileSize)
	vector.DrawFilledRect(screen, x, y, size, size, v.color, false)

	switch {
	case v.location != "":
		inset := size / 4
		vector.DrawFilledRect(screen, x+inset, y+inset, size-2*inset, size-2*inset, colorLocation, false)
		if e.tileSize >= 12 {
			e.drawColoredChar(screen, v.location, float64(x), float64(y), colorLocationText)
		}
	case v.open && e.tileSize >= 12:
		// Possibility counts only when there is room to read them
		e.drawColoredChar(screen, strconv.Itoa(v.entropy), float64(x), float64(y), colorEntropy)
	}
}
