package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cardeval/pkg/platform/sentinel"
)

// PostgresDirectory reads memberships from the frequent_flyer_members table.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// Lookup returns false for unknown numbers; only infrastructure failures
// are errors.
func (d *PostgresDirectory) Lookup(ctx context.Context, number string) (bool, error) {
	query := `
		SELECT active
		FROM frequent_flyer_members
		WHERE number = $1
	`
	var active bool
	err := d.db.QueryRowContext(ctx, query, number).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: query frequent flyer member: %w", sentinel.ErrUnavailable, err)
	}
	return active, nil
}

// Upsert adds or updates a member.
func (d *PostgresDirectory) Upsert(ctx context.Context, number string, active bool) error {
	query := `
		INSERT INTO frequent_flyer_members (number, active, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (number) DO UPDATE SET
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := d.db.ExecContext(ctx, query, number, active); err != nil {
		return fmt.Errorf("upsert frequent flyer member: %w", err)
	}
	return nil
}
