package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/leonelquinteros/gotext"

	"github.com/ill13/wfc-softrender/pkg/game/devtools"
	"github.com/ill13/wfc-softrender/pkg/game/generator"
	"github.com/ill13/wfc-softrender/pkg/game/persistence"
	"github.com/ill13/wfc-softrender/pkg/game/renderer"
	ebitenrenderer "github.com/ill13/wfc-softrender/pkg/game/renderer/ebiten"
	"github.com/ill13/wfc-softrender/pkg/game/renderer/tui"
	"github.com/ill13/wfc-softrender/pkg/game/server"
	"github.com/ill13/wfc-softrender/pkg/game/state"
)

var errNoArchive = errors.New("no map archive configured, use -db or WFC_DB")

func initGettext(cfg *Config) {
	if cfg.Lang == "" {
		return
	}
	gotext.Configure(cfg.Locales, cfg.Lang, "default")
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	cfg := NewConfig()
	cfg.ApplyEnv(os.Getenv)
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	cfg.Bind(fs)
	fs.Parse(os.Args[1:])

	os.Exit(run(cfg))
}

func run(cfg *Config) int {
	log := newLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(log)
	initGettext(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case cfg.List:
		err = listMaps(cfg, os.Stdout)
	case cfg.DevMap:
		err = devMap(cfg, os.Stdout)
	case cfg.Serve != "":
		err = serve(ctx, cfg, log)
	default:
		err = generate(ctx, cfg, log)
	}

	if errors.Is(err, context.Canceled) {
		log.Info("interrupted")
		return 1
	}
	if err != nil {
		log.Error("failed", "err", err)
		return 1
	}
	return 0
}

// openArchive opens the configured archive, or returns nil without one.
func openArchive(cfg *Config) (*persistence.DB, error) {
	if cfg.DB == "" {
		return nil, nil
	}
	return persistence.Open(cfg.DB)
}

// generate builds one map in the terminal or the viewer window, then
// writes the requested exports and archives it.
func generate(ctx context.Context, cfg *Config, log *slog.Logger) error {
	th, err := cfg.LoadTheme()
	if err != nil {
		return err
	}

	db, err := openArchive(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	s, err := state.NewSession(generator.WFC, generator.Request{
		Theme:       th,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Name:        cfg.Name,
		Seed:        cfg.Seed,
		Delay:       cfg.Delay,
		MaxRestarts: cfg.MaxRestarts,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	if cfg.GUI {
		renderer.SetRenderer(ebitenrenderer.New(cfg.Delay, log))
	} else {
		renderer.SetRenderer(tui.New(os.Stdout, cfg.Delay))
	}
	renderer.Init()

	if err := renderer.Run(ctx, s); err != nil {
		return err
	}

	res := s.Result()
	if res == nil {
		// Viewer closed before the map was finished.
		return nil
	}
	log.Info("map generated",
		"name", res.Name,
		"seed", res.Seed,
		"steps", res.Stats.Steps,
		"restarts", res.Stats.Restarts,
		"locations", len(res.Placed),
		"elapsed", res.Elapsed,
	)

	info := devtools.InfoFromResult(res)
	if cfg.Dump != "" {
		path, err := devtools.DumpMapToFile(info, cfg.Dump)
		if err != nil {
			return err
		}
		renderer.ShowMessage(gotext.Get("Map dumped to %s", path))
	}
	if cfg.HTML != "" {
		path, err := devtools.SaveMapHTML(info, s.Messages, cfg.HTML)
		if err != nil {
			return err
		}
		renderer.ShowMessage(gotext.Get("Map saved to %s", path))
	}
	if db != nil {
		rec, err := db.SaveResult(res)
		if err != nil {
			return err
		}
		renderer.ShowMessage(gotext.Get("Archived as %s", rec.ID))
	}
	return nil
}

// devMap writes the theme's swatch map: every terrain as a band with each
// location on a terrain it allows. Without -dump or -html it goes to w.
func devMap(cfg *Config, w io.Writer) error {
	th, err := cfg.LoadTheme()
	if err != nil {
		return err
	}
	info, err := devtools.BuildDevMap(th)
	if err != nil {
		return err
	}
	if cfg.Dump == "" && cfg.HTML == "" {
		return devtools.WriteMapDump(w, info)
	}
	if cfg.Dump != "" {
		path, err := devtools.DumpMapToFile(info, cfg.Dump)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, gotext.Get("Map dumped to %s", path))
	}
	if cfg.HTML != "" {
		path, err := devtools.SaveMapHTML(info, nil, cfg.HTML)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, gotext.Get("Map saved to %s", path))
	}
	return nil
}

// serve runs the HTTP API until ctx is done.
func serve(ctx context.Context, cfg *Config, log *slog.Logger) error {
	db, err := openArchive(cfg)
	if err != nil {
		return err
	}

	var store server.Store
	if db != nil {
		defer db.Close()
		store = db
	}
	srv := server.New(generator.WFC, store, log)
	srv.MaxRestarts = cfg.MaxRestarts

	httpServer := &http.Server{
		Addr:              cfg.Serve,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP API listening", "addr", cfg.Serve, "archive", cfg.DB != "")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("received signal, shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// listMaps prints the archived maps, newest first.
func listMaps(cfg *Config, w io.Writer) error {
	db, err := openArchive(cfg)
	if err != nil {
		return err
	}
	if db == nil {
		return errNoArchive
	}
	defer db.Close()

	total, err := db.Count()
	if err != nil {
		return err
	}
	maps, err := db.List(cfg.ListLimit)
	if err != nil {
		return err
	}
	return printMaps(w, maps, total, time.Now())
}

func printMaps(w io.Writer, maps []persistence.MapSummary, total int, now time.Time) error {
	fmt.Fprintln(w, gotext.Get("%s archived maps", humanize.Comma(int64(total))))
	for _, m := range maps {
		_, err := fmt.Fprintf(w, "%s  %-28s %-10s %4dx%-4d seed %-12d %s\n",
			m.ID, m.Name, m.Theme, m.Width, m.Height, m.Seed,
			humanize.RelTime(m.CreatedAt, now, "ago", "from now"))
		if err != nil {
			return err
		}
	}
	return nil
}
