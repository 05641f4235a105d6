package ebiten

import (
	"image/color"
	"unicode/utf8"

	"github.com/ill13/wfc-softrender/pkg/engine/world"
	"github.com/ill13/wfc-softrender/pkg/game/renderer"
)

// refreshSnapshot copies the session into a render snapshot. It runs in
// Update, so the session is never read while Draw is in progress.
func (e *EbitenRenderer) refreshSnapshot() {
	s := e.session
	g := s.Grid()

	snap := renderSnapshot{
		valid:    true,
		name:     s.Name(),
		status:   renderer.StatusLine(s),
		width:    g.Width(),
		height:   g.Height(),
		cells:    make([]cellView, 0, g.Size()),
		messages: append([]string(nil), s.Messages...),
		complete: s.IsComplete(),
		paused:   e.paused,
		failed:   e.err != nil,
	}

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			snap.cells = append(snap.cells, e.cellView(g.GetCell(x, y)))
		}
	}

	for _, entry := range renderer.Legend(s.Engine().Catalog(), g) {
		snap.legend = append(snap.legend, legendView{
			label: entry.Label,
			color: e.parseColor(entry.Color),
			count: entry.Count,
		})
	}

	e.snapshot = snap
}

// cellView returns the drawing state of one cell
func (e *EbitenRenderer) cellView(c *world.Cell) cellView {
	if !c.Collapsed {
		return cellView{color: colorOpenCell, open: true, entropy: c.Entropy()}
	}
	v := cellView{color: e.parseColor(renderer.CellColor(c))}
	if c.HasLocation() {
		r, _ := utf8.DecodeRuneInString(c.Location.DisplayName())
		v.location = string(r)
	}
	return v
}

// parseColor converts a hex colour, caching the result. Invalid colours
// draw as open cells.
func (e *EbitenRenderer) parseColor(hex string) color.Color {
	if c, ok := e.colorCache[hex]; ok {
		return c
	}
	var c color.Color = colorOpenCell
	if rgba, err := renderer.ParseHexColor(hex); err == nil {
		c = rgba
	} else {
		e.log.Debug("invalid colour", "color", hex, "err", err)
	}
	e.colorCache[hex] = c
	return c
}
