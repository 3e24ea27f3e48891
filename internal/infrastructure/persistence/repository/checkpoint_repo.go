package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/application/port"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/audit"
	"go.uber.org/zap"
)

// CheckpointRepository implements port.CheckpointRepository on SQLite.
// The data payload is stored as a JSON column.
type CheckpointRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCheckpointRepository creates a new checkpoint repository
func NewCheckpointRepository(db *sql.DB, logger *zap.Logger) port.CheckpointRepository {
	return &CheckpointRepository{db: db, logger: logger}
}

const checkpointColumns = `id, session_id, type, name, status, order_index, is_critical,
	started_at, completed_at, error_message, data, version, created_at, updated_at`

// CreateBatch inserts a session's full checkpoint set in one transaction
func (r *CheckpointRepository) CreateBatch(ctx context.Context, checkpoints []*audit.Checkpoint) error {
	if len(checkpoints) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO audit_checkpoints (` + checkpointColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare checkpoint insert: %w", err)
	}
	defer stmt.Close()

	for _, cp := range checkpoints {
		data, err := json.Marshal(cp.Data)
		if err != nil {
			return fmt.Errorf("failed to encode checkpoint data: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			cp.ID,
			cp.SessionID,
			cp.Type,
			cp.Name,
			string(cp.Status),
			cp.OrderIndex,
			cp.IsCritical,
			nullTime(cp.StartedAt),
			nullTime(cp.CompletedAt),
			nullString(cp.ErrorMessage),
			string(data),
			cp.Version,
			cp.CreatedAt,
			cp.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to insert checkpoint",
				zap.String("checkpoint_id", cp.ID),
				zap.String("session_id", cp.SessionID),
				zap.Error(err))
			return fmt.Errorf("failed to insert checkpoint: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkpoint batch: %w", err)
	}

	return nil
}

// GetByID retrieves a checkpoint by ID
func (r *CheckpointRepository) GetByID(ctx context.Context, id string) (*audit.Checkpoint, error) {
	query := `SELECT ` + checkpointColumns + ` FROM audit_checkpoints WHERE id = ?`
	return r.scanCheckpoint(r.db.QueryRowContext(ctx, query, id))
}

// GetBySessionID returns the session's checkpoints ordered by order_index
func (r *CheckpointRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*audit.Checkpoint, error) {
	query := `
		SELECT ` + checkpointColumns + `
		FROM audit_checkpoints
		WHERE session_id = ?
		ORDER BY order_index ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []*audit.Checkpoint
	for rows.Next() {
		cp, err := r.scanCheckpoint(rows)
		if err != nil {
			return nil, err
		}
		checkpoints = append(checkpoints, cp)
	}
	return checkpoints, rows.Err()
}

// Update persists checkpoint mutations under the optimistic version check
func (r *CheckpointRepository) Update(ctx context.Context, cp *audit.Checkpoint) error {
	data, err := json.Marshal(cp.Data)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint data: %w", err)
	}

	query := `
		UPDATE audit_checkpoints
		SET status = ?, started_at = ?, completed_at = ?, error_message = ?, data = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(cp.Status),
		nullTime(cp.StartedAt),
		nullTime(cp.CompletedAt),
		nullString(cp.ErrorMessage),
		string(data),
		cp.UpdatedAt,
		cp.ID,
		cp.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update checkpoint: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update checkpoint: %w", err)
	}
	if affected == 0 {
		if _, gerr := r.GetByID(ctx, cp.ID); errors.Is(gerr, port.ErrNotFound) {
			return port.ErrNotFound
		}
		r.logger.Warn("Checkpoint update lost version check",
			zap.String("checkpoint_id", cp.ID),
			zap.Int64("version", cp.Version))
		return port.ErrConflict
	}

	cp.Version++
	return nil
}

func (r *CheckpointRepository) scanCheckpoint(row rowScanner) (*audit.Checkpoint, error) {
	var cp audit.Checkpoint
	var status string
	var startedAt, completedAt sql.NullTime
	var errorMessage sql.NullString
	var data string

	err := row.Scan(
		&cp.ID,
		&cp.SessionID,
		&cp.Type,
		&cp.Name,
		&status,
		&cp.OrderIndex,
		&cp.IsCritical,
		&startedAt,
		&completedAt,
		&errorMessage,
		&data,
		&cp.Version,
		&cp.CreatedAt,
		&cp.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
	}

	cp.Status = audit.CheckpointStatus(status)
	if startedAt.Valid {
		cp.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		cp.CompletedAt = &completedAt.Time
	}
	cp.ErrorMessage = errorMessage.String
	if data != "" {
		if err := json.Unmarshal([]byte(data), &cp.Data); err != nil {
			return nil, fmt.Errorf("failed to decode checkpoint data: %w", err)
		}
	}
	if cp.Data == nil {
		cp.Data = make(map[string]interface{})
	}

	return &cp, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
