package ebiten

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/leonelquinteros/gotext"

	"github.com/ill13/wfc-softrender/pkg/engine/wfc"
	"github.com/ill13/wfc-softrender/pkg/game/devtools"
)

// Update handles input and advances the generation (Ebiten interface)
func (e *EbitenRenderer) Update() error {
	// Log window opening on first update (confirms window is actually running)
	if !e.windowOpenedLogged {
		e.windowOpenedLogged = true
		w, h := ebiten.WindowSize()
		e.log.Info("viewer window opened", "width", w, "height", h)
	}

	if e.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	now := time.Now()
	changed := e.handleZoom()
	if e.handleKeys(now) {
		changed = true
	}
	if e.advance(now) {
		changed = true
	}
	if changed || !e.snapshot.valid {
		e.refreshSnapshot()
	}
	return nil
}

// handleKeys applies the viewer commands and reports whether anything changed
func (e *EbitenRenderer) handleKeys(now time.Time) bool {
	changed := false

	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		e.regenerate()
		changed = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		e.paused = !e.paused
		changed = true
	}
	if e.keyRepeat(ebiten.KeyS, now) || e.keyRepeat(ebiten.KeyArrowRight, now) {
		if !e.session.IsComplete() && e.err == nil {
			e.paused = true
			e.step(now)
			changed = true
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		e.exportDump()
		changed = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		e.exportHTML()
		changed = true
	}
	return changed
}

// advance steps the generation according to the configured delay. Without
// a delay it spreads the generation over framesPerGeneration frames.
func (e *EbitenRenderer) advance(now time.Time) bool {
	if e.paused || e.err != nil || e.session.IsComplete() {
		return false
	}

	if e.stepDelay > 0 {
		if now.Sub(e.lastStep) < e.stepDelay {
			return false
		}
		e.step(now)
		return true
	}

	steps := e.session.Grid().Size()/framesPerGeneration + 1
	for i := 0; i < steps && e.err == nil && !e.session.IsComplete(); i++ {
		e.step(now)
	}
	return true
}

// step performs one session step. Restarts are reported by the session
// itself; any other error stops the animation.
func (e *EbitenRenderer) step(now time.Time) {
	e.lastStep = now
	res, err := e.session.Step()
	if err != nil && res != wfc.StepRestarted {
		e.err = err
		e.paused = true
		e.log.Warn("generation failed", "err", err)
	}
}

// regenerate starts a new map
func (e *EbitenRenderer) regenerate() {
	if err := e.session.Regenerate(); err != nil {
		e.session.AddMessage(gotext.Get("Could not regenerate: %v", err))
		return
	}
	e.err = nil
	e.paused = false
	ebiten.SetWindowTitle("WFC Terrain - " + e.session.Name())
	e.log.Info("regenerated", "name", e.session.Name())
}

// exportDump writes the text dump of the current grid
func (e *EbitenRenderer) exportDump() {
	path, err := devtools.DumpMapToFile(devtools.InfoFromSession(e.session), "")
	if err != nil {
		e.session.AddMessage(gotext.Get("Dump failed: %v", err))
		return
	}
	e.session.AddMessage(gotext.Get("Map dumped to %s", path))
}

// exportHTML writes the HTML rendering of the current grid
func (e *EbitenRenderer) exportHTML() {
	path, err := devtools.SaveMapHTML(devtools.InfoFromSession(e.session), e.session.Messages, "")
	if err != nil {
		e.session.AddMessage(gotext.Get("Export failed: %v", err))
		return
	}
	e.session.AddMessage(gotext.Get("Map saved to %s", path))
}

// keyRepeat reports a press on the first frame of key and then, while it is
// held, once per repeat interval after the initial delay.
func (e *EbitenRenderer) keyRepeat(key ebiten.Key, now time.Time) bool {
	if inpututil.IsKeyJustPressed(key) {
		e.keyRepeatState[key] = keyRepeatInfo{firstPressed: now, lastRepeat: now}
		return true
	}
	if !ebiten.IsKeyPressed(key) {
		delete(e.keyRepeatState, key)
		return false
	}
	info, ok := e.keyRepeatState[key]
	if !ok || now.Sub(info.firstPressed) < keyRepeatInitialDelay || now.Sub(info.lastRepeat) < keyRepeatInterval {
		return false
	}
	info.lastRepeat = now
	e.keyRepeatState[key] = info
	return true
}

// handleZoom handles =/- for tile size adjustment and 0 to reset
func (e *EbitenRenderer) handleZoom() bool {
	size := e.tileSize
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		size += tileSizeStep
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		size -= tileSizeStep
	}
	if inpututil.IsKeyJustPressed(ebiten.Key0) || inpututil.IsKeyJustPressed(ebiten.KeyNumpad0) {
		size = defaultTileSize
	}
	if size < minTileSize {
		size = minTileSize
	}
	if size > maxTileSize {
		size = maxTileSize
	}
	if size == e.tileSize {
		return false
	}
	e.tileSize = size
	e.invalidateFontCache()
	return true
}
