package ebiten

import (
	"context"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/ill13/wfc-softrender/pkg/game/state"
)

// cellView is what Draw needs to know about one grid cell.
type cellView struct {
	color    color.Color
	open     bool
	entropy  int
	location string // first letter of the placed location, if any
}

// legendView is one terrain in the legend strip.
type legendView struct {
	label string
	color color.Color
	count int
}

// renderSnapshot holds a consistent copy of the session for drawing.
// It is rebuilt in Update after the session changes.
type renderSnapshot struct {
	valid    bool
	name     string
	status   string
	width    int
	height   int
	cells    []cellView
	legend   []legendView
	messages []string
	complete bool
	paused   bool
	failed   bool
}

// keyRepeatInfo tracks the repeat state of a held key
type keyRepeatInfo struct {
	firstPressed time.Time
	lastRepeat   time.Time
}

// EbitenRenderer is the Ebiten-based graphical viewer
type EbitenRenderer struct {
	// Window dimensions
	windowWidth  int
	windowHeight int

	// Tile size for rendering (adjustable with +/-)
	tileSize int

	// Font sources for text rendering
	monoFontSource *text.GoTextFaceSource // Monospace font for map tiles
	sansFontSource *text.GoTextFaceSource // Sans-serif font for UI text

	// Cached font faces (recreated when tile size changes)
	cachedTileFontSize float64
	cachedMonoFace     *text.GoTextFace
	cachedSansFace     *text.GoTextFace

	ctx     context.Context
	session *state.Session
	log     *slog.Logger

	// Generation pacing
	stepDelay time.Duration
	lastStep  time.Time
	paused    bool
	err       error

	// Parsed hex colours, by hex string
	colorCache map[string]color.Color

	snapshot renderSnapshot

	keyRepeatState map[ebiten.Key]keyRepeatInfo

	// Flag to track if we've logged window opening
	windowOpenedLogged bool
}
