package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
)

//go:embed schema.sql
var schemaSQL string

// DBPool abstracts *pgxpool.Pool so tests can run against pgxmock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists the cycle history in PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool, log: logger.Named("store")}, nil
}

// Migrate creates the tables if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.log.Debug("Schema applied.")
	return nil
}

const (
	sqlInsertCycle = `
        INSERT INTO cycles (id, started_at, next_wake, planet_count, event_count, hostile_count, fleet_saves, technology)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `
	sqlInsertFleetSave = `
        INSERT INTO fleet_saves (cycle_id, planet_id, location, origin, arrival, ships, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7);
    `
	sqlRecentCycles = `
        SELECT id, started_at, next_wake, planet_count, event_count, hostile_count, fleet_saves
        FROM cycles
        ORDER BY started_at DESC
        LIMIT $1;
    `
)

var (
	snapshotColumns = []string{"cycle_id", "planet_id", "location", "snapshot"}
	eventColumns    = []string{"cycle_id", "seq", "mission_label", "mission", "arrival_time", "origin", "destination"}
)

// RecordCycle writes a cycle, its planet snapshots and its fleet events in
// one transaction.
func (s *Store) RecordCycle(ctx context.Context, rec schemas.CycleRecord) error {
	overview := rec.Overview
	if overview == nil {
		overview = &schemas.EmpireOverview{}
	}

	technology, err := jsonb(overview.Technology)
	if err != nil {
		return fmt.Errorf("failed to encode technology: %w", err)
	}
	snapshots, err := snapshotRows(rec, overview)
	if err != nil {
		return err
	}
	events, hostile := eventRows(rec, overview)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
	}()

	if _, err := tx.Exec(ctx, sqlInsertCycle,
		rec.ID, rec.StartedAt.UTC(), rec.NextWake.UTC(),
		len(overview.Planets), len(overview.Events), hostile, rec.FleetSaves, technology,
	); err != nil {
		return fmt.Errorf("failed to insert cycle: %w", err)
	}

	if err := copyRows(ctx, tx, "planet_snapshots", snapshotColumns, snapshots); err != nil {
		return err
	}
	if err := copyRows(ctx, tx, "fleet_events", eventColumns, events); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Debug("Cycle recorded.", zap.String("cycle_id", rec.ID.String()), zap.Int("events", len(events)))
	return nil
}

func copyRows(ctx context.Context, tx pgx.Tx, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", table, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("mismatch in copied %s count: expected %d, got %d", table, len(rows), n)
	}
	return nil
}

func snapshotRows(rec schemas.CycleRecord, overview *schemas.EmpireOverview) ([][]any, error) {
	rows := make([][]any, 0, len(overview.Planets))
	for _, p := range overview.Planets {
		doc, err := jsonb(p)
		if err != nil {
			return nil, fmt.Errorf("failed to encode planet %s: %w", p.ID, err)
		}
		rows = append(rows, []any{rec.ID, p.ID, p.Location, doc})
	}
	return rows, nil
}

// eventRows keeps unknown labels with a NULL mission so the raw label is
// still on record.
func eventRows(rec schemas.CycleRecord, overview *schemas.EmpireOverview) ([][]any, int) {
	rows := make([][]any, 0, len(overview.Events))
	hostile := 0
	for i, ev := range overview.Events {
		var mission any
		if mt, err := ev.Mission(); err == nil {
			mission = string(mt)
			if mt.IsHostile() {
				hostile++
			}
		}
		rows = append(rows, []any{rec.ID, i, ev.MissionLabel, mission, ev.ArrivalTime, ev.Origin, ev.Destination})
	}
	return rows, hostile
}

func jsonb(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte("{}"), nil
	}
	return b, nil
}

// RecordFleetSave writes one dispatch.
func (s *Store) RecordFleetSave(ctx context.Context, rec schemas.FleetSaveRecord) error {
	if _, err := s.pool.Exec(ctx, sqlInsertFleetSave,
		rec.CycleID, rec.PlanetID, rec.Location, rec.Origin, rec.Arrival, rec.Ships, rec.SentAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert fleet save: %w", err)
	}
	return nil
}

// RecentCycles returns up to limit cycles, newest first.
func (s *Store) RecentCycles(ctx context.Context, limit int) ([]schemas.CycleSummary, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	rows, err := s.pool.Query(ctx, sqlRecentCycles, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	var out []schemas.CycleSummary
	for rows.Next() {
		var c schemas.CycleSummary
		if err := rows.Scan(&c.ID, &c.StartedAt, &c.NextWake, &c.PlanetCount, &c.EventCount, &c.HostileCount, &c.FleetSaves); err != nil {
			return nil, fmt.Errorf("failed to scan cycle row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return out, nil
}
