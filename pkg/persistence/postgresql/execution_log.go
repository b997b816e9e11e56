package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brokerops/dealflow/pkg/models"
)

// ExecutionLogRepository handles the append-only execution_records table.
type ExecutionLogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionLogRepository creates a new execution log repository.
func NewExecutionLogRepository(db *sql.DB, logger *slog.Logger) *ExecutionLogRepository {
	return &ExecutionLogRepository{db: db, logger: logger}
}

// Append inserts one record, assigning an id and timestamp as needed.
func (r *ExecutionLogRepository) Append(ctx context.Context, record *models.ExecutionRecord) error {
	if record.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate execution record ID: %w", err)
		}

		record.ID = id.String()
	}

	if record.ExecutedAt.IsZero() {
		record.ExecutedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO execution_records (id, rule_id, deal_id, action_index, action_kind, outcome, failure_reason, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.RuleID,
		record.DealID,
		record.ActionIndex,
		string(record.ActionKind),
		string(record.Outcome),
		record.FailureReason,
		record.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append execution record for deal %s: %w", record.DealID, err)
	}

	return nil
}

// ListByDeal returns the deal's records in execution order.
func (r *ExecutionLogRepository) ListByDeal(ctx context.Context, dealID string) ([]*models.ExecutionRecord, error) {
	query := `
		SELECT
			id
		  , rule_id
		  , deal_id
		  , action_index
		  , action_kind
		  , outcome
		  , failure_reason
		  , executed_at
		FROM execution_records
		WHERE deal_id = $1
		ORDER BY executed_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution records: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	records := make([]*models.ExecutionRecord, 0)

	for rows.Next() {
		var record models.ExecutionRecord

		err = rows.Scan(
			&record.ID,
			&record.RuleID,
			&record.DealID,
			&record.ActionIndex,
			&record.ActionKind,
			&record.Outcome,
			&record.FailureReason,
			&record.ExecutedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution record: %w", err)
		}

		records = append(records, &record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating execution records: %w", err)
	}

	return records, nil
}
