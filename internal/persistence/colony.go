package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/cell-colony/internal/colony"
	"github.com/talgya/cell-colony/internal/engine"
	"github.com/talgya/cell-colony/internal/species"
	"github.com/talgya/cell-colony/internal/world"
)

// ErrNotFound is returned when a requested colony is not stored.
var ErrNotFound = errors.New("not found")

type colonyRow struct {
	ID         string  `db:"id"`
	Seq        int     `db:"seq"`
	Species    string  `db:"species"`
	HexQ       int     `db:"hex_q"`
	HexR       int     `db:"hex_r"`
	Width      int     `db:"width"`
	Height     int     `db:"height"`
	Elapsed    float64 `db:"elapsed"`
	Ticks      int64   `db:"ticks"`
	ParamsJSON string  `db:"params_json"`
	ConfigJSON string  `db:"config_json"`
}

type tileRow struct {
	ColonyID string  `db:"colony_id"`
	X        int     `db:"x"`
	Y        int     `db:"y"`
	Kind     uint8   `db:"kind"`
	Obstacle int     `db:"obstacle"`
	Support  int     `db:"support"`
	Name     string  `db:"name"`
	Capacity float64 `db:"capacity"`
	Water    float64 `db:"water"`
	Sugar    float64 `db:"sugar"`
	LastStep float64 `db:"last_step"`
	Interval float64 `db:"interval"`
	Moisture float64 `db:"moisture"`
	Species  string  `db:"species"`
	Starving float64 `db:"starving"`
	Age      float64 `db:"age"`
}

// SaveColony writes one colony and its full tile grid, replacing any
// previous copy with the same ID.
func (db *DB) SaveColony(c *engine.Colony) error {
	var seq int
	err := db.conn.Get(&seq, "SELECT seq FROM colonies WHERE id = ?", c.ID.String())
	if errors.Is(err, sql.ErrNoRows) {
		err = db.conn.Get(&seq, "SELECT COALESCE(MAX(seq) + 1, 0) FROM colonies")
	}
	if err != nil {
		return fmt.Errorf("colony seq: %w", err)
	}
	return db.saveColony(seq, c)
}

func (db *DB) saveColony(seq int, c *engine.Colony) error {
	w := c.World
	params, err := marshalJSON(w.Params)
	if err != nil {
		return err
	}
	cfg, err := marshalJSON(w.Config)
	if err != nil {
		return err
	}
	id := c.ID.String()

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tiles WHERE colony_id = ?", id); err != nil {
		return err
	}
	_, err = tx.NamedExec(`INSERT OR REPLACE INTO colonies
		(id, seq, species, hex_q, hex_r, width, height, elapsed, ticks, params_json, config_json)
		VALUES (:id, :seq, :species, :hex_q, :hex_r, :width, :height, :elapsed, :ticks, :params_json, :config_json)`,
		colonyRow{
			ID:         id,
			Seq:        seq,
			Species:    c.Species,
			HexQ:       c.Hex.Q,
			HexR:       c.Hex.R,
			Width:      w.Width,
			Height:     w.Height,
			Elapsed:    w.Elapsed,
			Ticks:      int64(w.Ticks),
			ParamsJSON: params,
			ConfigJSON: cfg,
		})
	if err != nil {
		return fmt.Errorf("insert colony: %w", err)
	}

	stmt, err := tx.PrepareNamed(`INSERT INTO tiles
		(colony_id, x, y, kind, obstacle, support, name, capacity, water, sugar,
		 last_step, interval, moisture, species, starving, age)
		VALUES (:colony_id, :x, :y, :kind, :obstacle, :support, :name, :capacity, :water, :sugar,
		 :last_step, :interval, :moisture, :species, :starving, :age)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var insertErr error
	w.Each(func(t *colony.Tile) {
		if insertErr != nil {
			return
		}
		row := tileRow{
			ColonyID: id,
			X:        t.Pos.X,
			Y:        t.Pos.Y,
			Kind:     uint8(t.Kind),
			Obstacle: boolInt(t.Obstacle),
			Support:  boolInt(t.Support),
			Name:     t.Name,
			Capacity: t.Inv.Capacity(),
			Water:    t.Inv.Water(),
			Sugar:    t.Inv.Sugar(),
			LastStep: t.LastStep,
			Interval: t.Interval,
			Moisture: t.Moisture,
			Starving: t.Starving,
			Age:      t.Age,
		}
		if t.Species != nil {
			row.Species = t.Species.Name
		}
		if _, err := stmt.Exec(row); err != nil {
			insertErr = fmt.Errorf("insert tile (%d,%d): %w", t.Pos.X, t.Pos.Y, err)
		}
	})
	if insertErr != nil {
		return insertErr
	}

	return tx.Commit()
}

// LoadColony reads one colony back. Cell species are resolved by name
// through the registry.
func (db *DB) LoadColony(id uuid.UUID, reg *species.Registry) (*engine.Colony, error) {
	var row colonyRow
	err := db.conn.Get(&row, "SELECT * FROM colonies WHERE id = ?", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("colony %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return db.loadColony(row, reg)
}

// LoadColonies reads every stored colony in save order.
func (db *DB) LoadColonies(reg *species.Registry) ([]*engine.Colony, error) {
	var rows []colonyRow
	if err := db.conn.Select(&rows, "SELECT * FROM colonies ORDER BY seq"); err != nil {
		return nil, err
	}
	out := make([]*engine.Colony, 0, len(rows))
	for _, row := range rows {
		c, err := db.loadColony(row, reg)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (db *DB) loadColony(row colonyRow, reg *species.Registry) (*engine.Colony, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("colony id %q: %w", row.ID, err)
	}
	var params colony.Params
	if err := json.Unmarshal([]byte(row.ParamsJSON), &params); err != nil {
		return nil, fmt.Errorf("colony %s params: %w", id, err)
	}
	var cfg colony.Config
	if err := json.Unmarshal([]byte(row.ConfigJSON), &cfg); err != nil {
		return nil, fmt.Errorf("colony %s config: %w", id, err)
	}

	w, err := colony.New(params, cfg)
	if err != nil {
		return nil, fmt.Errorf("colony %s: %w", id, err)
	}
	w.Elapsed = row.Elapsed
	w.Ticks = uint64(row.Ticks)

	var tiles []tileRow
	if err := db.conn.Select(&tiles, "SELECT * FROM tiles WHERE colony_id = ? ORDER BY y, x", row.ID); err != nil {
		return nil, err
	}
	for _, tr := range tiles {
		t, err := restoreTile(tr, reg)
		if err != nil {
			return nil, fmt.Errorf("colony %s: %w", id, err)
		}
		if _, err := w.Restore(t); err != nil {
			return nil, fmt.Errorf("colony %s: %w", id, err)
		}
	}

	return &engine.Colony{
		ID:      id,
		Species: row.Species,
		Hex:     world.HexCoord{Q: row.HexQ, R: row.HexR},
		World:   w,
	}, nil
}

func restoreTile(tr tileRow, reg *species.Registry) (*colony.Tile, error) {
	kind, err := colony.ParseKind(tr.Kind)
	if err != nil {
		return nil, err
	}
	pos := colony.Pos{X: tr.X, Y: tr.Y}
	inv, err := colony.NewInventory(pos, tr.Capacity, tr.Water, tr.Sugar)
	if err != nil {
		return nil, fmt.Errorf("tile (%d,%d): %w", tr.X, tr.Y, err)
	}
	t := &colony.Tile{
		Kind:     kind,
		Pos:      pos,
		Obstacle: tr.Obstacle != 0,
		Support:  tr.Support != 0,
		Name:     tr.Name,
		Inv:      inv,
		LastStep: tr.LastStep,
		Interval: tr.Interval,
		Moisture: tr.Moisture,
		Starving: tr.Starving,
		Age:      tr.Age,
	}
	if kind == colony.KindCell {
		sp, err := reg.Lookup(tr.Species)
		if err != nil {
			return nil, fmt.Errorf("tile (%d,%d): %w", tr.X, tr.Y, err)
		}
		t.Species = sp
	}
	return t, nil
}
