package port

import (
	"context"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/audit"
	"github.com/shopspring/decimal"
)

// ChecklistProvisioner supplies the initial ordered checkpoint set for a
// new session. Which checks exist, their order and their criticality is
// configuration, not core logic.
type ChecklistProvisioner interface {
	Provision(ctx context.Context, sessionID, auditDate string) ([]*audit.Checkpoint, error)
}

// ClosureTotals carries the aggregated figures written into the daily
// closure record.
type ClosureTotals struct {
	TotalRevenue    decimal.Decimal
	RoomRevenue     decimal.Decimal
	POSRevenue      decimal.Decimal
	RoomsOccupied   int64
	CheckpointCount int
}

// ClosureEmitter writes the downstream reporting snapshot for a
// completed audit. It is called synchronously with completion; if it
// fails the session must not be completed. Emission happens before the
// session save, so a retried completion replays the call: Emit must be
// idempotent per session, keeping exactly one closure per session.
type ClosureEmitter interface {
	Emit(ctx context.Context, session *audit.Session, totals ClosureTotals) error
}
