// Package velocitydb is an optional SQLite archive for completed velocity
// runs, keyed by run ID. It wraps *sql.DB with an embedded schema applied
// on open.
package velocitydb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/glacier-velocity/internal/velocity"
)

//go:embed schema.sql
var schemaSQL string

// DB is the velocity run archive.
type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) a SQLite archive at path and applies
// its schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("velocitydb: opening %q: %w", path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("velocitydb: applying schema: %w", err)
	}
	return &DB{db}, nil
}

// SaveRun records one run's metadata and its admitted velocities.
// Velocities are inserted inside the same transaction as the run row.
func (d *DB) SaveRun(runID string, createdAt time.Time, scheme, beforePath, afterPath string, intervalHours float64, velocities []velocity.Velocity) error {
	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("velocitydb: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, created_at, scheme, before_path, after_path, interval_hours) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, createdAt.UTC().Format(time.RFC3339), scheme, beforePath, afterPath, intervalHours,
	)
	if err != nil {
		return fmt.Errorf("velocitydb: inserting run %q: %w", runID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO velocities (run_id, x, y, z, grid_size, iterations, vx, vy, vz) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("velocitydb: preparing velocity insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range velocities {
		_, err := stmt.Exec(runID, v.CenterOfGravity.X, v.CenterOfGravity.Y, v.CenterOfGravity.Z,
			v.GridSize, v.Iterations, v.Velocity.X, v.Velocity.Y, v.Velocity.Z)
		if err != nil {
			return fmt.Errorf("velocitydb: inserting velocity for run %q: %w", runID, err)
		}
	}

	return tx.Commit()
}

// RunVelocities returns every velocity archived for runID, in insertion
// order.
func (d *DB) RunVelocities(runID string) ([]velocity.Velocity, error) {
	rows, err := d.Query(
		`SELECT x, y, z, grid_size, iterations, vx, vy, vz FROM velocities WHERE run_id = ? ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("velocitydb: querying velocities for run %q: %w", runID, err)
	}
	defer rows.Close()

	var out []velocity.Velocity
	for rows.Next() {
		var v velocity.Velocity
		if err := rows.Scan(&v.CenterOfGravity.X, &v.CenterOfGravity.Y, &v.CenterOfGravity.Z,
			&v.GridSize, &v.Iterations, &v.Velocity.X, &v.Velocity.Y, &v.Velocity.Z); err != nil {
			return nil, fmt.Errorf("velocitydb: scanning velocity row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
