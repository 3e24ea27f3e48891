package port

import (
	"context"
	"errors"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/audit"
)

var (
	// ErrNotFound is returned when a session or checkpoint does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an update loses the optimistic
	// version check. The write did not happen; the caller may reload
	// and retry.
	ErrConflict = errors.New("version conflict")
)

// SessionRepository defines persistence operations for audit sessions.
// Sessions are append-only: there is no delete.
type SessionRepository interface {
	Create(ctx context.Context, session *audit.Session) error
	GetByID(ctx context.Context, id string) (*audit.Session, error)

	// GetActive returns the in-progress session for a hotel, or
	// ErrNotFound when none exists.
	GetActive(ctx context.Context, hotelID string) (*audit.Session, error)

	// Update persists the session if its Version still matches the
	// stored row, bumping the version on success. ErrConflict otherwise.
	Update(ctx context.Context, session *audit.Session) error

	List(ctx context.Context, hotelID string, limit, offset int) ([]*audit.Session, error)
}

// CheckpointRepository defines persistence operations for checkpoints
type CheckpointRepository interface {
	// CreateBatch inserts the full checkpoint set of a session in one
	// transaction.
	CreateBatch(ctx context.Context, checkpoints []*audit.Checkpoint) error

	GetByID(ctx context.Context, id string) (*audit.Checkpoint, error)

	// GetBySessionID returns every checkpoint of a session ordered by
	// order_index, so summaries always see a full consistent snapshot.
	GetBySessionID(ctx context.Context, sessionID string) ([]*audit.Checkpoint, error)

	// Update persists the checkpoint under the same optimistic version
	// rules as SessionRepository.Update.
	Update(ctx context.Context, checkpoint *audit.Checkpoint) error
}
