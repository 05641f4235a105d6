// Package persistence provides SQLite-based storage of finished maps.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ill13/wfc-softrender/pkg/engine/world"
	"github.com/ill13/wfc-softrender/pkg/game/generator"
)

// DefaultListLimit caps List when no positive limit is given.
const DefaultListLimit = 50

var ErrNotFound = errors.New("persistence: map not found")

// Location is a placed location as stored with a map.
type Location struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji,omitempty"`
}

// MapSummary is the listing view of an archived map.
type MapSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Seed      int64     `json:"seed"`
	Theme     string    `json:"theme"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Steps     int       `json:"steps"`
	Restarts  int       `json:"restarts"`
	CreatedAt time.Time `json:"created_at"`
}

// MapRecord is a full archived map.
type MapRecord struct {
	MapSummary
	Templates []string          `json:"templates"`
	Cells     []world.CellState `json:"cells"`
	Locations []Location        `json:"locations"`
}

// mapRow mirrors the maps table.
type mapRow struct {
	ID            string `db:"id"`
	Name          string `db:"name"`
	Seed          int64  `db:"seed"`
	Theme         string `db:"theme"`
	Width         int    `db:"width"`
	Height        int    `db:"height"`
	Steps         int    `db:"steps"`
	Restarts      int    `db:"restarts"`
	CreatedAt     int64  `db:"created_at"`
	TemplatesJSON string `db:"templates_json"`
	CellsJSON     string `db:"cells_json"`
	LocationsJSON string `db:"locations_json"`
}

func (r mapRow) summary() MapSummary {
	return MapSummary{
		ID:        r.ID,
		Name:      r.Name,
		Seed:      r.Seed,
		Theme:     r.Theme,
		Width:     r.Width,
		Height:    r.Height,
		Steps:     r.Steps,
		Restarts:  r.Restarts,
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
	}
}

// DB wraps a SQLite connection for the map archive.
type DB struct {
	conn *sqlx.DB

	// Now stamps new records.
	Now func() time.Time
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer at a time; SQLite serialises writes anyway.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, Now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS maps (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		theme TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		restarts INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		templates_json TEXT NOT NULL,
		cells_json TEXT NOT NULL,
		locations_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_maps_created ON maps(created_at);
	CREATE INDEX IF NOT EXISTS idx_maps_seed ON maps(seed);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordFromResult converts a finished map into an unsaved record.
func RecordFromResult(res *generator.Result) *MapRecord {
	locations := make([]Location, 0, len(res.Placed))
	for _, p := range res.Placed {
		locations = append(locations, Location{
			X:     p.X,
			Y:     p.Y,
			ID:    p.Template.ID,
			Name:  p.Template.DisplayName(),
			Emoji: p.Template.Emoji,
		})
	}
	templates := res.Templates
	if templates == nil {
		templates = []string{}
	}
	return &MapRecord{
		MapSummary: MapSummary{
			Name:     res.Name,
			Seed:     res.Seed,
			Theme:    res.Theme,
			Width:    res.Width,
			Height:   res.Height,
			Steps:    res.Stats.Steps,
			Restarts: res.Stats.Restarts,
		},
		Templates: templates,
		Cells:     res.Grid.Snapshot(),
		Locations: locations,
	}
}

// SaveResult archives a finished map and returns the stored record.
func (db *DB) SaveResult(res *generator.Result) (*MapRecord, error) {
	rec := RecordFromResult(res)
	if err := db.Save(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Save inserts rec, assigning an id and creation time when they are unset.
func (db *DB) Save(rec *MapRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = db.Now().UTC().Truncate(time.Millisecond)
	}

	templatesJSON, err := json.Marshal(rec.Templates)
	if err != nil {
		return fmt.Errorf("encode templates: %w", err)
	}
	cellsJSON, err := json.Marshal(rec.Cells)
	if err != nil {
		return fmt.Errorf("encode cells: %w", err)
	}
	locationsJSON, err := json.Marshal(rec.Locations)
	if err != nil {
		return fmt.Errorf("encode locations: %w", err)
	}

	_, err = db.conn.NamedExec(`INSERT INTO maps
		(id, name, seed, theme, width, height, steps, restarts, created_at,
		 templates_json, cells_json, locations_json)
		VALUES (:id, :name, :seed, :theme, :width, :height, :steps, :restarts, :created_at,
		 :templates_json, :cells_json, :locations_json)`,
		mapRow{
			ID:            rec.ID,
			Name:          rec.Name,
			Seed:          rec.Seed,
			Theme:         rec.Theme,
			Width:         rec.Width,
			Height:        rec.Height,
			Steps:         rec.Steps,
			Restarts:      rec.Restarts,
			CreatedAt:     rec.CreatedAt.UnixMilli(),
			TemplatesJSON: string(templatesJSON),
			CellsJSON:     string(cellsJSON),
			LocationsJSON: string(locationsJSON),
		})
	if err != nil {
		return fmt.Errorf("save map %s: %w", rec.ID, err)
	}

	slog.Debug("map archived", "id", rec.ID, "name", rec.Name, "seed", rec.Seed)
	return nil
}

// Get returns the archived map with the given id, or ErrNotFound.
func (db *DB) Get(id string) (*MapRecord, error) {
	var row mapRow
	err := db.conn.Get(&row, "SELECT * FROM maps WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get map %s: %w", id, err)
	}

	rec := &MapRecord{MapSummary: row.summary()}
	if err := json.Unmarshal([]byte(row.TemplatesJSON), &rec.Templates); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	if err := json.Unmarshal([]byte(row.CellsJSON), &rec.Cells); err != nil {
		return nil, fmt.Errorf("decode cells: %w", err)
	}
	if err := json.Unmarshal([]byte(row.LocationsJSON), &rec.Locations); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	return rec, nil
}

// List returns the most recent archived maps, newest first.
func (db *DB) List(limit int) ([]MapSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var rows []mapRow
	err := db.conn.Select(&rows, `SELECT id, name, seed, theme, width, height, steps, restarts, created_at
		FROM maps ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}

	out := make([]MapSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.summary())
	}
	return out, nil
}

// Count returns the number of archived maps.
func (db *DB) Count() (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM maps")
	return n, err
}
