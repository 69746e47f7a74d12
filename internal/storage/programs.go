package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/repbook/internal/models"
)

// UpsertProgram stores p under its name, replacing any program already
// stored with that name.
func (db *DB) UpsertProgram(ctx context.Context, p models.Program) error {
	days, err := json.Marshal(p.Days)
	if err != nil {
		return fmt.Errorf("encoding program %s: %w", p.Name, err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO programs (name, program_id, source, days, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (name) DO UPDATE SET
		 program_id = EXCLUDED.program_id, source = EXCLUDED.source,
		 days = EXCLUDED.days, updated_at = now()`,
		p.Name, p.ID, p.Source, days)
	if err != nil {
		return fmt.Errorf("upserting program %s: %w", p.Name, err)
	}
	return nil
}

// ListPrograms returns every stored program, oldest first.
func (db *DB) ListPrograms(ctx context.Context) ([]models.Program, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT name, program_id, source, days FROM programs ORDER BY updated_at ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var result []models.Program
	for rows.Next() {
		var (
			p    models.Program
			days []byte
		)
		if err := rows.Scan(&p.Name, &p.ID, &p.Source, &days); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		if err := json.Unmarshal(days, &p.Days); err != nil {
			return nil, fmt.Errorf("decoding program %s: %w", p.Name, err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
