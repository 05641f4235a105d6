package ebiten

import (
	"context"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ill13/wfc-softrender/pkg/game/state"
)

// New creates a viewer that steps the session once per stepDelay, or as
// fast as the animation allows when stepDelay is zero.
func New(stepDelay time.Duration, log *slog.Logger) *EbitenRenderer {
	if log == nil {
		log = slog.Default()
	}
	return &EbitenRenderer{
		windowWidth:    defaultWindowWidth,
		windowHeight:   defaultWindowHeight,
		tileSize:       defaultTileSize,
		stepDelay:      stepDelay,
		log:            log,
		colorCache:     make(map[string]color.Color),
		keyRepeatState: make(map[ebiten.Key]keyRepeatInfo),
	}
}

// Init loads the fonts. A font failure is logged and leaves the window
// blank rather than aborting.
func (e *EbitenRenderer) Init() {
	if err := e.loadFonts(); err != nil {
		e.log.Error("fonts unavailable", "err", err)
	}
}

// Run opens the window and animates the session until the window is closed
// or ctx is done. It returns the generation error, if any, shown at close.
func (e *EbitenRenderer) Run(ctx context.Context, s *state.Session) error {
	if e.monoFontSource == nil {
		e.Init()
	}
	e.ctx = ctx
	e.session = s
	e.refreshSnapshot()

	ebiten.SetWindowSize(e.windowWidth, e.windowHeight)
	ebiten.SetWindowTitle("WFC Terrain - " + s.Name())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(e); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.err
}

// ShowMessage adds a message to the session log shown in the footer. The
// message is logged too, since it may arrive after the window has closed.
func (e *EbitenRenderer) ShowMessage(msg string) {
	if e.session != nil {
		e.session.AddMessage(msg)
	}
	e.log.Info(msg)
}
