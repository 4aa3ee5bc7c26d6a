package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/cell-colony/internal/species"
	"github.com/talgya/cell-colony/internal/world"
)

const metaOverWorldConfig = "overworld_config"

type attemptRow struct {
	Seq     int    `db:"seq"`
	ID      string `db:"id"`
	Species string `db:"species"`
	TargetQ int    `db:"target_q"`
	TargetR int    `db:"target_r"`
	Status  uint8  `db:"status"`
	Reason  string `db:"reason"`
}

// SaveOverWorld stores the generation config and the settling attempt log.
// The hex map itself is not stored: it regenerates from the config, and
// committed attempts replay onto it.
func (db *DB) SaveOverWorld(ow *world.OverWorld) error {
	cfg, err := marshalJSON(ow.Config)
	if err != nil {
		return err
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", metaOverWorldConfig, cfg); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM settling_attempts"); err != nil {
		return err
	}
	for i, a := range ow.Attempts() {
		_, err := tx.NamedExec(`INSERT INTO settling_attempts
			(seq, id, species, target_q, target_r, status, reason)
			VALUES (:seq, :id, :species, :target_q, :target_r, :status, :reason)`,
			attemptRow{
				Seq:     i,
				ID:      a.ID.String(),
				Species: a.Species,
				TargetQ: a.Target.Q,
				TargetR: a.Target.R,
				Status:  uint8(a.Status),
				Reason:  a.Reason,
			})
		if err != nil {
			return fmt.Errorf("insert attempt %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// LoadOverWorld regenerates the stored overworld and replays its attempts.
func (db *DB) LoadOverWorld(reg *species.Registry) (*world.OverWorld, error) {
	raw, err := db.GetMeta(metaOverWorldConfig)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("overworld: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var cfg world.GenConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("overworld config: %w", err)
	}

	var rows []attemptRow
	if err := db.conn.Select(&rows, "SELECT * FROM settling_attempts ORDER BY seq"); err != nil {
		return nil, err
	}
	attempts := make([]world.SettlingAttempt, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("attempt id %q: %w", r.ID, err)
		}
		attempts = append(attempts, world.SettlingAttempt{
			ID:      id,
			Species: r.Species,
			Target:  world.HexCoord{Q: r.TargetQ, R: r.TargetR},
			Status:  world.AttemptStatus(r.Status),
			Reason:  r.Reason,
		})
	}

	ow := world.Generate(cfg)
	if err := ow.Restore(attempts, reg); err != nil {
		return nil, err
	}
	return ow, nil
}
