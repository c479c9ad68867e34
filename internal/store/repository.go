package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// PGStore archives snapshots in Postgres, one row per slot.
type PGStore struct {
	db *sql.DB
}

const createSavesTable = `CREATE TABLE IF NOT EXISTS hotseat_saves (
    slot        TEXT PRIMARY KEY,
    snapshot_id TEXT NOT NULL,
    side        TEXT NOT NULL,
    board_rows  TEXT[] NOT NULL,
    saved_at    TIMESTAMPTZ NOT NULL
)`

func NewPGStore(databaseURL string) (*PGStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, createSavesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create hotseat_saves: %w", err)
	}
	return &PGStore{db: db}, nil
}

func (r *PGStore) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Save upserts the slot row.
func (r *PGStore) Save(ctx context.Context, slot string, snap Snapshot) error {
	slot, err := NormalizeSlot(slot)
	if err != nil {
		return err
	}
	snap.Slot = slot
	rec := toRecord(snap)
	q := `INSERT INTO hotseat_saves (slot, snapshot_id, side, board_rows, saved_at)
      VALUES ($1,$2,$3,$4,$5)
      ON CONFLICT (slot) DO UPDATE SET
        snapshot_id=EXCLUDED.snapshot_id,
        side=EXCLUDED.side,
        board_rows=EXCLUDED.board_rows,
        saved_at=EXCLUDED.saved_at`
	_, err = r.db.ExecContext(ctx, q, rec.Slot, rec.ID, rec.Side, pq.Array(rec.Rows), rec.SavedAt)
	return err
}

func (r *PGStore) Load(ctx context.Context, slot string) (Snapshot, error) {
	slot, err := NormalizeSlot(slot)
	if err != nil {
		return Snapshot{}, err
	}
	var rec record
	row := r.db.QueryRowContext(ctx,
		`SELECT slot, snapshot_id, side, board_rows, saved_at FROM hotseat_saves WHERE slot=$1`, slot)
	err = row.Scan(&rec.Slot, &rec.ID, &rec.Side, pq.Array(&rec.Rows), &rec.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("slot %s: %w", slot, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, err
	}
	return fromRecord(rec)
}

func (r *PGStore) Slots(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT slot FROM hotseat_saves ORDER BY slot`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		out = append(out, slot)
	}
	return out, rows.Err()
}
