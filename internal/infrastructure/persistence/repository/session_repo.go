package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/application/port"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/audit"
	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SessionRepository implements port.SessionRepository on SQLite
type SessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB, logger *zap.Logger) port.SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

const sessionColumns = `id, hotel_id, audit_date, status, started_at, completed_at,
	hotel_date_before, hotel_date_after, failure_reason, version, created_at, updated_at`

// Create inserts a new audit session
func (r *SessionRepository) Create(ctx context.Context, session *audit.Session) error {
	query := `
		INSERT INTO audit_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var completedAt sql.NullTime
	if session.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *session.CompletedAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.HotelID,
		session.AuditDate,
		string(session.Status),
		session.StartedAt,
		completedAt,
		session.HotelDateBefore,
		nullString(session.HotelDateAfter),
		nullString(session.FailureReason),
		session.Version,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		// The partial unique index on (hotel_id) WHERE status='IN_PROGRESS'
		// catches the race where two starts pass the GetActive check
		// before either insert lands.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return audit.ErrSessionAlreadyActive
		}
		r.logger.Error("Failed to create audit session",
			zap.String("session_id", session.ID),
			zap.String("hotel_id", session.HotelID),
			zap.Error(err))
		return fmt.Errorf("failed to create audit session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*audit.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM audit_sessions WHERE id = ?`
	return r.scanSession(r.db.QueryRowContext(ctx, query, id))
}

// GetActive retrieves the in-progress session for a hotel
func (r *SessionRepository) GetActive(ctx context.Context, hotelID string) (*audit.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM audit_sessions WHERE hotel_id = ? AND status = ? LIMIT 1`
	return r.scanSession(r.db.QueryRowContext(ctx, query, hotelID, string(audit.SessionInProgress)))
}

// Update persists session mutations under the optimistic version check
func (r *SessionRepository) Update(ctx context.Context, session *audit.Session) error {
	query := `
		UPDATE audit_sessions
		SET status = ?, completed_at = ?, hotel_date_after = ?, failure_reason = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	var completedAt sql.NullTime
	if session.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *session.CompletedAt, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		string(session.Status),
		completedAt,
		nullString(session.HotelDateAfter),
		nullString(session.FailureReason),
		session.UpdatedAt,
		session.ID,
		session.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update audit session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update audit session: %w", err)
	}
	if affected == 0 {
		if _, gerr := r.GetByID(ctx, session.ID); errors.Is(gerr, port.ErrNotFound) {
			return port.ErrNotFound
		}
		r.logger.Warn("Session update lost version check",
			zap.String("session_id", session.ID),
			zap.Int64("version", session.Version))
		return port.ErrConflict
	}

	session.Version++
	return nil
}

// List returns sessions for a hotel, newest first
func (r *SessionRepository) List(ctx context.Context, hotelID string, limit, offset int) ([]*audit.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM audit_sessions
		WHERE hotel_id = ?
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, hotelID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*audit.Session
	for rows.Next() {
		session, err := r.scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *SessionRepository) scanSession(row rowScanner) (*audit.Session, error) {
	var session audit.Session
	var status string
	var completedAt sql.NullTime
	var hotelDateAfter, failureReason sql.NullString

	err := row.Scan(
		&session.ID,
		&session.HotelID,
		&session.AuditDate,
		&status,
		&session.StartedAt,
		&completedAt,
		&session.HotelDateBefore,
		&hotelDateAfter,
		&failureReason,
		&session.Version,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit session: %w", err)
	}

	session.Status = audit.SessionStatus(status)
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}
	session.HotelDateAfter = hotelDateAfter.String
	session.FailureReason = failureReason.String

	return &session, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
