package main

import (
	"flag"
	"strconv"
	"strings"
	"time"

	"github.com/ill13/wfc-softrender/pkg/game/theme"
)

// Config represents the command-line parameters for the application.
type Config struct {
	Theme     string
	ThemeFile string
	Width     int
	Height    int
	Name      string

	// Seed is nil unless -seed was given.
	Seed *int64

	Delay       time.Duration
	MaxRestarts int

	Dump string
	HTML string
	DB   string

	List      bool
	ListLimit int
	GUI       bool
	Serve     string
	DevMap    bool

	Lang    string
	Locales string
	Verbose bool
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Theme:   theme.Default,
		Width:   40,
		Height:  30,
		Locales: "locales",
	}
}

// ApplyEnv overrides the defaults from the environment. It runs before the
// flags are parsed so flags win.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("WFC_THEME"); v != "" {
		c.Theme = v
	}
	if v := getenv("WFC_DB"); v != "" {
		c.DB = v
	}
	if v := getenv("WFC_ADDR"); v != "" {
		c.Serve = v
	}
	if v := getenv("WFC_LANG"); v != "" {
		c.Lang = v
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Theme, "theme", c.Theme, "built-in theme: "+strings.Join(theme.Names(), ", "))
	fs.StringVar(&c.ThemeFile, "theme-file", c.ThemeFile, "load the theme from a JSON file instead")
	fs.IntVar(&c.Width, "width", c.Width, "map width in cells")
	fs.IntVar(&c.Height, "height", c.Height, "map height in cells")
	fs.StringVar(&c.Name, "name", c.Name, "map name; the seed is derived from it")
	fs.Func("seed", "explicit seed (the name is then invented)", func(s string) error {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		c.Seed = &n
		return nil
	})
	fs.DurationVar(&c.Delay, "delay", c.Delay, "pause between steps, animates the terminal view")
	fs.IntVar(&c.MaxRestarts, "max-restarts", c.MaxRestarts, "restart cap (0 = default, negative = unbounded)")
	fs.StringVar(&c.Dump, "dump", c.Dump, "write a text dump of the map to this file")
	fs.StringVar(&c.HTML, "html", c.HTML, "write an HTML rendering of the map to this file")
	fs.StringVar(&c.DB, "db", c.DB, "SQLite archive for finished maps")
	fs.BoolVar(&c.List, "list", c.List, "list archived maps and exit")
	fs.IntVar(&c.ListLimit, "limit", c.ListLimit, "number of maps shown by -list")
	fs.BoolVar(&c.DevMap, "devmap", c.DevMap, "print the theme's swatch map instead of generating")
	fs.BoolVar(&c.GUI, "gui", c.GUI, "open the step-by-step viewer window")
	fs.StringVar(&c.Serve, "serve", c.Serve, "serve the HTTP API on this address, e.g. :8080")
	fs.StringVar(&c.Lang, "lang", c.Lang, "message language, e.g. en_GB")
	fs.StringVar(&c.Locales, "locales", c.Locales, "directory holding the message catalogs")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "debug logging")
}

// LoadTheme returns the theme file when one is set, else the named theme.
func (c *Config) LoadTheme() (*theme.Theme, error) {
	if c.ThemeFile != "" {
		return theme.LoadFile(c.ThemeFile)
	}
	return theme.Load(c.Theme)
}
