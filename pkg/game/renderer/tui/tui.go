package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"

	"github.com/ill13/wfc-softrender/pkg/engine/terminal"
	"github.com/ill13/wfc-softrender/pkg/engine/wfc"
	"github.com/ill13/wfc-softrender/pkg/engine/world"
	"github.com/ill13/wfc-softrender/pkg/game/renderer"
	"github.com/ill13/wfc-softrender/pkg/game/state"
)

// Icon constants for the plain-text map
const (
	IconOpen     = "?"
	IconLocation = "@"
	IconVoid     = " "
)

// Each map cell is two characters wide so the map keeps its aspect ratio.
const cellWidth = 2

// Lines needed outside the map viewport:
// - Name + status (3)
// - Legend (2)
// - Locations header + a few entries (4)
// - Messages pane (header + 5 messages + footer = 7)
const viewportTopMargin = 16

// Cursor home and clear screen
const clearScreen = "\x1b[H\x1b[2J"

// dynamicGet is used for runtime translation key lookups.
// We use a function variable to avoid go vet's non-constant format string check,
// since we intentionally look up translation keys dynamically from markup.
var dynamicGet = gotext.Get

// TUIRenderer is the terminal-based renderer implementation
type TUIRenderer struct {
	out        io.Writer
	frameDelay time.Duration
	useColor   bool
	animate    bool
	width      int
	height     int

	colorTitle  color.Style
	colorItem   color.Style
	colorSubtle color.Style

	regexpStringFunctions *regexp.Regexp
}

// New creates a new TUI renderer writing to out. With a positive frameDelay
// and a terminal on out the map is redrawn after every step.
func New(out io.Writer, frameDelay time.Duration) *TUIRenderer {
	return &TUIRenderer{out: out, frameDelay: frameDelay}
}

// Init initializes the TUI renderer (colors, terminal size, etc.)
func (t *TUIRenderer) Init() {
	f, isFile := t.out.(*os.File)
	tty := isFile && terminal.IsTerminal(f)

	t.useColor = tty
	t.animate = tty && t.frameDelay > 0
	if !tty {
		color.Enable = false
	}
	if tty {
		t.width, t.height = terminal.GetSize()
	} else {
		t.width, t.height = 1<<16, 1<<16
	}

	t.colorTitle = color.Style{color.FgMagenta, color.OpBold}
	t.colorItem = color.Style{color.FgGreen, color.OpBold}
	t.colorSubtle = color.Style{color.FgGray, color.OpBold}

	t.regexpStringFunctions = regexp.MustCompile(`([a-zA-Z_]*){([a-z A-Z0-9_,:'.-]+)}`)
}

// Run generates the session's map and prints it. When animating, every step
// is drawn; otherwise only the finished map is.
func (t *TUIRenderer) Run(ctx context.Context, s *state.Session) error {
	if t.regexpStringFunctions == nil {
		t.Init()
	}

	if !t.animate {
		if _, err := s.RunToCompletion(ctx); err != nil {
			return err
		}
		t.RenderFrame(s)
		return nil
	}

	for !s.IsComplete() {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := s.Step()
		if err != nil && res != wfc.StepRestarted {
			return err
		}

		fmt.Fprint(t.out, clearScreen)
		t.RenderFrame(s)

		timer := time.NewTimer(t.frameDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	fmt.Fprint(t.out, clearScreen)
	t.RenderFrame(s)
	return nil
}

// ShowMessage displays a message to the user
func (t *TUIRenderer) ShowMessage(msg string) {
	fmt.Fprintln(t.out, t.FormatText("%s", msg))
}

// FormatText formats a message with the markup system
func (t *TUIRenderer) FormatText(msg string, args ...any) string {
	ret := fmt.Sprintf(msg, args...)
	if t.regexpStringFunctions == nil {
		return ret
	}

	matches := t.regexpStringFunctions.FindAllStringSubmatch(ret, -1)

	for _, match := range matches {
		function := match[1]
		operand := match[2]

		var val string

		switch function {
		case "GT":
			val = dynamicGet(operand)
		case "ITEM":
			val = t.colorItem.Sprint(operand)
		default:
			val = fmt.Sprintf("ERROR, function not found: %v -> %v", function, operand)
		}

		ret = strings.Replace(ret, match[0], val, 1)
	}

	return ret
}

// GetViewportSize returns how many grid columns and rows fit on screen.
func (t *TUIRenderer) GetViewportSize() (cols, rows int) {
	return terminal.Viewport(t.width, t.height, cellWidth, viewportTopMargin)
}

// RenderFrame renders the map, its legend, the placed locations and the
// message log.
func (t *TUIRenderer) RenderFrame(s *state.Session) {
	fmt.Fprintln(t.out, t.colorTitle.Sprint(s.Name()))
	fmt.Fprintln(t.out, t.colorSubtle.Sprint(renderer.StatusLine(s)))
	fmt.Fprintln(t.out)

	t.printMap(s.Grid())
	t.printLegend(s)
	t.printLocations(s)
	t.printMessagesPane(s)
}

// renderCell returns the string representation of a cell
func (t *TUIRenderer) renderCell(c *world.Cell) string {
	if c == nil {
		return strings.Repeat(IconVoid, cellWidth)
	}

	if !t.useColor {
		switch {
		case c.HasLocation():
			return IconLocation + " "
		case !c.Collapsed:
			return IconOpen + " "
		default:
			return symbol(c.Terrain) + " "
		}
	}

	bg := color.HEX(renderer.CellColor(c), true)
	if c.HasLocation() && c.Location.Emoji != "" {
		return bg.Sprint(c.Location.Emoji)
	}
	return bg.Sprint(strings.Repeat(" ", cellWidth))
}

// symbol is the plain-text glyph of a terrain: its first letter.
func symbol(id string) string {
	if id == "" {
		return IconOpen
	}
	r, _ := utf8.DecodeRuneInString(id)
	return string(r)
}

// printMap renders the grid, cropped to the viewport from the top-left.
func (t *TUIRenderer) printMap(g *world.Grid) {
	cols, rows := t.GetViewportSize()
	if cols > g.Width() {
		cols = g.Width()
	}
	if rows > g.Height() {
		rows = g.Height()
	}

	for y := 0; y < rows; y++ {
		var line strings.Builder
		for x := 0; x < cols; x++ {
			line.WriteString(t.renderCell(g.GetCell(x, y)))
		}
		fmt.Fprintln(t.out, line.String())
	}

	if cols < g.Width() || rows < g.Height() {
		fmt.Fprintln(t.out, t.colorSubtle.Sprint(gotext.Get("(showing %dx%d of %dx%d)", cols, rows, g.Width(), g.Height())))
	}
	fmt.Fprintln(t.out)
}

// printLegend renders one swatch per terrain with its cell count
func (t *TUIRenderer) printLegend(s *state.Session) {
	res := s.Result()
	var parts []string
	for _, e := range renderer.Legend(s.Engine().Catalog(), s.Grid()) {
		swatch := symbol(e.ID) + " "
		if t.useColor {
			swatch = color.HEX(e.Color, true).Sprint("  ")
		}
		parts = append(parts, fmt.Sprintf("%s %s (%d)", swatch, e.Label, e.Count))
	}
	fmt.Fprintln(t.out, strings.Join(parts, t.colorSubtle.Sprint("  ")))
	if res != nil && len(res.Templates) > 0 {
		fmt.Fprintln(t.out, t.FormatText("GT{Landmarks}: ITEM{%s}", strings.Join(res.Templates, ", ")))
	}
	fmt.Fprintln(t.out)
}

// printLocations lists the placed locations of a finished map
func (t *TUIRenderer) printLocations(s *state.Session) {
	res := s.Result()
	if res == nil {
		return
	}
	fmt.Fprint(t.out, t.colorSubtle.Sprint(gotext.Get("Locations: ")))
	if len(res.Placed) == 0 {
		fmt.Fprintln(t.out, t.colorSubtle.Sprint(gotext.Get("(none)")))
		return
	}
	names := make([]string, 0, len(res.Placed))
	for _, p := range res.Placed {
		names = append(names, t.colorItem.Sprintf("%s %s", p.Template.Emoji, p.Template.DisplayName())+
			t.colorSubtle.Sprintf(" (%d,%d)", p.X, p.Y))
	}
	fmt.Fprintln(t.out, strings.Join(names, t.colorSubtle.Sprint(", ")))
}

// printMessagesPane renders the messages log pane
func (t *TUIRenderer) printMessagesPane(s *state.Session) {
	width := t.width
	if width > 80 {
		width = 80
	}

	label := " " + gotext.Get("Messages") + " "
	labelLen := len(label)
	sideLen := (width - labelLen) / 2
	if sideLen < 1 {
		sideLen = 1
	}
	rightLen := width - sideLen - labelLen
	if rightLen < 1 {
		rightLen = 1
	}

	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, t.colorSubtle.Sprint(strings.Repeat("─", sideLen)+label+strings.Repeat("─", rightLen)))

	if len(s.Messages) == 0 {
		fmt.Fprintln(t.out, t.colorSubtle.Sprint("  "+gotext.Get("(no messages)")))
	} else {
		for _, msg := range s.Messages {
			fmt.Fprintf(t.out, "  %s\n", msg)
		}
	}

	fmt.Fprintln(t.out, t.colorSubtle.Sprint(strings.Repeat("─", width)))
}
