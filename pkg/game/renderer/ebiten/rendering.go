package ebiten

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/leonelquinteros/gotext"
)

// Draw renders the snapshot to the screen (Ebiten interface)
func (e *EbitenRenderer) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	snap := e.snapshot
	if !snap.valid || e.monoFontSource == nil || e.sansFontSource == nil {
		// Can't draw without valid snapshot or fonts
		return
	}

	screenWidth, screenHeight := screen.Bounds().Dx(), screen.Bounds().Dy()

	e.drawHeader(screen, snap)

	// Map area between header and footer, centred
	mapW := snap.width * e.tileSize
	mapH := snap.height * e.tileSize
	mapX := (screenWidth - mapW) / 2
	if mapX < mapMargin {
		mapX = mapMargin
	}
	mapY := headerHeight + (screenHeight-headerHeight-footerHeight-mapH)/2
	if mapY < headerHeight {
		mapY = headerHeight
	}

	vector.DrawFilledRect(screen, float32(mapX-4), float32(mapY-4), float32(mapW+8), float32(mapH+8), colorMapBackground, false)
	for i, v := range snap.cells {
		x := mapX + (i%snap.width)*e.tileSize
		y := mapY + (i/snap.width)*e.tileSize
		if x > screenWidth || y > screenHeight {
			continue
		}
		e.drawCell(screen, v, float32(x), float32(y))
	}

	e.drawFooter(screen, snap, screenWidth, screenHeight)
}

// drawHeader draws the map name, status line and play state
func (e *EbitenRenderer) drawHeader(screen *ebiten.Image, snap renderSnapshot) {
	e.drawColoredText(screen, snap.name, mapMargin, 8, colorAction)
	e.drawColoredText(screen, snap.status, mapMargin, 8+int(uiFontSize)+6, colorSubtle)

	var label string
	col := colorText
	switch {
	case snap.failed:
		label, col = gotext.Get("FAILED"), colorDenied
	case snap.complete:
		label = gotext.Get("COMPLETE")
	case snap.paused:
		label = gotext.Get("PAUSED")
	default:
		label = gotext.Get("GENERATING")
	}
	w := screen.Bounds().Dx()
	e.drawColoredText(screen, label, w-mapMargin-int(e.measureText(label)), 8, col)
}

// drawFooter draws the legend, the latest message and the key help
func (e *EbitenRenderer) drawFooter(screen *ebiten.Image, snap renderSnapshot, screenWidth, screenHeight int) {
	top := screenHeight - footerHeight
	vector.DrawFilledRect(screen, 0, float32(top), float32(screenWidth), float32(footerHeight), colorPanelBackground, false)

	// Legend swatches
	x := mapMargin
	y := top + 8
	swatch := int(uiFontSize)
	for _, l := range snap.legend {
		label := fmt.Sprintf("%s (%d)", l.label, l.count)
		w := swatch + 6 + int(e.measureText(label)) + 16
		if x+w > screenWidth-mapMargin {
			break
		}
		vector.DrawFilledRect(screen, float32(x), float32(y+2), float32(swatch), float32(swatch), l.color, false)
		e.drawColoredText(screen, label, x+swatch+6, y, colorText)
		x += w
	}

	if n := len(snap.messages); n > 0 {
		e.drawColoredText(screen, snap.messages[n-1], mapMargin, y+swatch+8, colorSubtle)
	}

	help := gotext.Get("G new map  Space pause  S step  D dump  H html  +/- zoom  Esc quit")
	e.drawColoredText(screen, help, mapMargin, y+2*(swatch+8), colorSubtle)
}

// Layout returns the logical screen size, which tracks the window
func (e *EbitenRenderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		return e.windowWidth, e.windowHeight
	}
	e.windowWidth, e.windowHeight = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
