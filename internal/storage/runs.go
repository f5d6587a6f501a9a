package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRecord is one scan recorded in the history database.
type RunRecord struct {
	RunID          string `json:"run_id"`
	CreatedAt      string `json:"created_at"`
	Commit         string `json:"commit,omitempty"`
	Branch         string `json:"branch,omitempty"`
	SnapshotHash   string `json:"snapshot_hash,omitempty"`
	NodeCount      int    `json:"node_count"`
	EdgeCount      int    `json:"edge_count"`
	ViolationCount int    `json:"violation_count"`
	NewCount       int    `json:"new_count"`
	ExistingCount  int    `json:"existing_count"`
	FixedCount     int    `json:"fixed_count"`
	ErrorCount     int    `json:"error_count"`
	DurationMs     int64  `json:"duration_ms"`
}

// RecordRun inserts a run, assigning the run id and timestamp when unset.
// It returns the stored record.
func (db *DB) RecordRun(rec RunRecord) (RunRecord, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	err := db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (
				run_id, created_at, commit_hash, branch, snapshot_hash,
				node_count, edge_count, violation_count,
				new_count, existing_count, fixed_count, error_count, duration_ms
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID, rec.CreatedAt, rec.Commit, rec.Branch, rec.SnapshotHash,
			rec.NodeCount, rec.EdgeCount, rec.ViolationCount,
			rec.NewCount, rec.ExistingCount, rec.FixedCount, rec.ErrorCount, rec.DurationMs,
		)
		return err
	})
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to record run: %w", err)
	}
	return rec, nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns everything.
func (db *DB) ListRuns(limit int) ([]RunRecord, error) {
	query := `
		SELECT run_id, created_at, commit_hash, branch, snapshot_hash,
		       node_count, edge_count, violation_count,
		       new_count, existing_count, fixed_count, error_count, duration_ms
		FROM runs
		ORDER BY created_at DESC, run_id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.RunID, &rec.CreatedAt, &rec.Commit, &rec.Branch, &rec.SnapshotHash,
			&rec.NodeCount, &rec.EdgeCount, &rec.ViolationCount,
			&rec.NewCount, &rec.ExistingCount, &rec.FixedCount, &rec.ErrorCount, &rec.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetRun returns a single run by id
func (db *DB) GetRun(runID string) (*RunRecord, error) {
	var rec RunRecord
	err := db.conn.QueryRow(`
		SELECT run_id, created_at, commit_hash, branch, snapshot_hash,
		       node_count, edge_count, violation_count,
		       new_count, existing_count, fixed_count, error_count, duration_ms
		FROM runs WHERE run_id = ?`, runID,
	).Scan(
		&rec.RunID, &rec.CreatedAt, &rec.Commit, &rec.Branch, &rec.SnapshotHash,
		&rec.NodeCount, &rec.EdgeCount, &rec.ViolationCount,
		&rec.NewCount, &rec.ExistingCount, &rec.FixedCount, &rec.ErrorCount, &rec.DurationMs,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &rec, nil
}
