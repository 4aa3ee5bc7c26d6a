// Package persistence provides SQLite-based storage for colonies and the overworld.
// A saved colony reloads with every tile, inventory, last-step time and the
// world clock intact, so a reloaded run steps exactly as the saved one would.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/cell-colony/internal/colony"
	"github.com/talgya/cell-colony/internal/engine"
	"github.com/talgya/cell-colony/internal/species"
)

const (
	metaLastTick = "last_tick"
	metaElapsed  = "elapsed"
)

// DB wraps a SQLite connection for simulation state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
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
	CREATE TABLE IF NOT EXISTS colonies (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		species TEXT NOT NULL,
		hex_q INTEGER NOT NULL,
		hex_r INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		elapsed REAL NOT NULL,
		ticks INTEGER NOT NULL,
		params_json TEXT NOT NULL,
		config_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tiles (
		colony_id TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		obstacle INTEGER NOT NULL,
		support INTEGER NOT NULL,
		name TEXT NOT NULL,
		capacity REAL NOT NULL,
		water REAL NOT NULL,
		sugar REAL NOT NULL,
		last_step REAL NOT NULL,
		interval REAL NOT NULL,
		moisture REAL NOT NULL,
		species TEXT NOT NULL,
		starving REAL NOT NULL,
		age REAL NOT NULL,
		PRIMARY KEY (colony_id, x, y)
	);

	CREATE TABLE IF NOT EXISTS settling_attempts (
		seq INTEGER PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		species TEXT NOT NULL,
		target_q INTEGER NOT NULL,
		target_r INTEGER NOT NULL,
		status INTEGER NOT NULL,
		reason TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_tiles_colony ON tiles(colony_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// HasWorldState reports whether a full save exists.
func (db *DB) HasWorldState() bool {
	_, err := db.GetMeta(metaOverWorldConfig)
	return err == nil
}

// SaveWorldState performs a full save of the simulation: overworld, every
// colony, the retained events and the clock.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	slog.Info("saving world state", "colonies", len(sim.Colonies), "attempts", len(sim.OverWorld.Attempts()))

	if err := db.SaveOverWorld(sim.OverWorld); err != nil {
		return fmt.Errorf("save overworld: %w", err)
	}
	if _, err := db.conn.Exec("DELETE FROM colonies"); err != nil {
		return fmt.Errorf("clear colonies: %w", err)
	}
	if _, err := db.conn.Exec("DELETE FROM tiles"); err != nil {
		return fmt.Errorf("clear tiles: %w", err)
	}
	for i, c := range sim.Colonies {
		if err := db.saveColony(i, c); err != nil {
			return fmt.Errorf("save colony %s: %w", c.Name(), err)
		}
	}
	if _, err := db.conn.Exec("DELETE FROM events"); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	if err := db.SaveEvents(sim.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta(metaLastTick, strconv.FormatUint(sim.LastTick, 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta(metaElapsed, strconv.FormatFloat(sim.Elapsed, 'g', -1, 64)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved")
	return nil
}

// LoadWorldState rebuilds a simulation from the last full save. New
// colonies committed after loading use width, height and cfg.
func (db *DB) LoadWorldState(reg *species.Registry, width, height int, cfg colony.Config) (*engine.Simulation, error) {
	ow, err := db.LoadOverWorld(reg)
	if err != nil {
		return nil, fmt.Errorf("load overworld: %w", err)
	}
	sim := engine.NewSimulation(ow, reg, width, height, cfg)

	if v, err := db.GetMeta(metaLastTick); err == nil {
		if sim.LastTick, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("last tick %q: %w", v, err)
		}
	}
	if v, err := db.GetMeta(metaElapsed); err == nil {
		if sim.Elapsed, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("elapsed %q: %w", v, err)
		}
	}

	colonies, err := db.LoadColonies(reg)
	if err != nil {
		return nil, fmt.Errorf("load colonies: %w", err)
	}
	for _, c := range colonies {
		sim.AddColony(c.ID, c.Species, c.Hex, c.World)
	}

	slog.Info("world state loaded", "colonies", len(sim.Colonies), "tick", sim.LastTick)
	return sim, nil
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
