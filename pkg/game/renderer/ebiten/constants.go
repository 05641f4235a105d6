// Package ebiten provides an Ebiten-based 2D viewer that animates the
// collapse step by step.
package ebiten

import (
	"image/color"
	"time"
)

// Color palette for the viewer
var (
	colorBackground      = color.RGBA{26, 26, 46, 255}    // Dark blue-gray
	colorMapBackground   = color.RGBA{15, 15, 26, 255}    // Darker for map area
	colorOpenCell        = color.RGBA{17, 17, 17, 255}    // Not collapsed yet
	colorEntropy         = color.RGBA{120, 130, 180, 255} // Possibility counts on open cells
	colorLocation        = color.RGBA{255, 255, 255, 255} // Location marker
	colorLocationText    = color.RGBA{20, 20, 30, 255}    // Letter on the marker
	colorSubtle          = color.RGBA{120, 130, 180, 255} // Soft blue-purple-gray
	colorText            = color.RGBA{200, 210, 245, 255} // Soft off-white with blue-purple tint
	colorAction          = color.RGBA{180, 150, 250, 255} // Blue-purple
	colorDenied          = color.RGBA{255, 100, 100, 255} // Bright red
	colorPanelBackground = color.RGBA{30, 30, 50, 220}    // Semi-transparent dark
)

// Tile size constraints
const (
	defaultTileSize = 16
	minTileSize     = 4
	maxTileSize     = 64
	tileSizeStep    = 2
	baseFontSize    = 16.0 // Base font size at default tile size
	uiFontSize      = 14.0
)

const (
	defaultWindowWidth  = 1024
	defaultWindowHeight = 768
	mapMargin           = 20
	headerHeight        = 56
	footerHeight        = 72

	// With no delay the viewer still animates, spreading the steps of a
	// generation over about this many frames.
	framesPerGeneration = 120

	keyRepeatInitialDelay = 400 * time.Millisecond
	keyRepeatInterval     = 60 * time.Millisecond
)
