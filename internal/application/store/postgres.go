package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cardeval/internal/application"
	"cardeval/internal/evaluator"
	"cardeval/internal/platform/postgres"
	"cardeval/pkg/platform/sentinel"
	txcontext "cardeval/pkg/platform/tx"
)

// PostgresStore persists records in the application_decisions table. Writes
// join the transaction carried by the context when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, record *application.Record) error {
	query := `
		INSERT INTO application_decisions (
			id, gross_annual_income, age, frequent_flyer_number,
			decision, path, lookup_count, evaluated_at,
			request_id, actor_id, channel
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		record.ID,
		record.Application.GrossAnnualIncome,
		record.Application.Age,
		record.Application.FrequentFlyerNumber,
		string(record.Decision),
		string(record.Path),
		record.LookupCount,
		record.EvaluatedAt,
		record.RequestID,
		record.ActorID,
		record.Channel,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%w: application %s", sentinel.ErrConflict, record.ID)
		}
		return fmt.Errorf("insert application decision: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*application.Record, error) {
	query := `
		SELECT id, gross_annual_income, age, frequent_flyer_number,
		       decision, path, lookup_count, evaluated_at,
		       request_id, actor_id, channel
		FROM application_decisions
		WHERE id = $1
	`
	var (
		record   application.Record
		decision string
		path     string
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Application.GrossAnnualIncome,
		&record.Application.Age,
		&record.Application.FrequentFlyerNumber,
		&decision,
		&path,
		&record.LookupCount,
		&record.EvaluatedAt,
		&record.RequestID,
		&record.ActorID,
		&record.Channel,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query application decision: %w", err)
	}

	record.Decision = evaluator.Decision(decision)
	record.Path = evaluator.Path(path)
	return &record, nil
}
