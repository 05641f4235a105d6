package renderer

import (
	"context"

	"github.com/ill13/wfc-softrender/pkg/game/state"
)

// Renderer defines the interface for map display backends.
// Implementations include the terminal renderer and the Ebiten window.
type Renderer interface {
	// Init initializes the renderer (colors, fonts, window, etc.)
	Init()

	// Run shows the session until the map is finished and displayed, the
	// user quits, or ctx is done.
	Run(ctx context.Context, s *state.Session) error

	// ShowMessage displays a message to the user
	ShowMessage(msg string)
}

// Current holds the active renderer instance
var Current Renderer

// SetRenderer sets the active renderer
func SetRenderer(r Renderer) {
	Current = r
}

// Init initializes the current renderer
func Init() {
	if Current != nil {
		Current.Init()
	}
}

// Run runs the current renderer. Without one it is a no-op.
func Run(ctx context.Context, s *state.Session) error {
	if Current != nil {
		return Current.Run(ctx, s)
	}
	return nil
}

// ShowMessage displays a message with the current renderer
func ShowMessage(msg string) {
	if Current != nil {
		Current.ShowMessage(msg)
	}
}
