package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/application/dispatcher"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/application/port"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/audit"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/event"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrOutOfOrder is returned when order enforcement is on and a
// checkpoint is advanced before its predecessors reached a terminal
// status.
var ErrOutOfOrder = errors.New("preceding checkpoints must be closed first")

// AdvanceAction selects the checkpoint transition to apply
type AdvanceAction string

const (
	ActionStart    AdvanceAction = "start"
	ActionComplete AdvanceAction = "complete"
	ActionFail     AdvanceAction = "fail"
	ActionSkip     AdvanceAction = "skip"
)

// AdvanceParams carries the optional inputs of an advance action
type AdvanceParams struct {
	// Data is merged into the checkpoint payload on complete
	Data map[string]interface{}

	// ErrorMessage is recorded on fail
	ErrorMessage string
}

// StartResult is returned by StartAudit
type StartResult struct {
	Session     *audit.Session
	Checkpoints []*audit.Checkpoint
	Summary     audit.Summary
}

// AdvanceResult is returned by AdvanceCheckpoint
type AdvanceResult struct {
	Checkpoint *audit.Checkpoint
	Summary    audit.Summary
}

// AuditService orchestrates the night-audit lifecycle: session start,
// checkpoint execution and completion, against the external stores.
type AuditService interface {
	StartAudit(ctx context.Context, hotelID, auditDate string) (*StartResult, error)
	AdvanceCheckpoint(ctx context.Context, checkpointID string, action AdvanceAction, params AdvanceParams) (*AdvanceResult, error)
	CompleteAudit(ctx context.Context, sessionID, hotelDateAfter string) (*audit.Session, error)
	FailAudit(ctx context.Context, sessionID, reason string) (*audit.Session, error)
	GetSession(ctx context.Context, sessionID string) (*audit.Session, error)
	GetSummary(ctx context.Context, sessionID string) (audit.Summary, error)
	ListSessions(ctx context.Context, hotelID string, limit, offset int) ([]*audit.Session, error)
}

type auditServiceImpl struct {
	sessionRepo    port.SessionRepository
	checkpointRepo port.CheckpointRepository
	provisioner    port.ChecklistProvisioner
	closureEmitter port.ClosureEmitter
	dispatcher     dispatcher.Dispatcher
	logger         *zap.Logger

	// When true, a checkpoint may only start or complete once every
	// checkpoint with a lower order index is terminal. Off by default,
	// matching the permissive out-of-order design of the product.
	enforceOrder bool

	// Per-session write lock. Transitions are validated in memory and
	// persisted with optimistic versions; this lock serializes writers
	// within the process so checkpoint mutations and gating evaluation
	// never interleave for the same session.
	locks sync.Map // session ID -> *sync.Mutex
}

// Option configures the audit service
type Option func(*auditServiceImpl)

// WithOrderEnforcement toggles strict checkpoint ordering
func WithOrderEnforcement(enforce bool) Option {
	return func(s *auditServiceImpl) {
		s.enforceOrder = enforce
	}
}

// NewAuditService creates the night-audit orchestrator
func NewAuditService(
	sessionRepo port.SessionRepository,
	checkpointRepo port.CheckpointRepository,
	provisioner port.ChecklistProvisioner,
	closureEmitter port.ClosureEmitter,
	d dispatcher.Dispatcher,
	logger *zap.Logger,
	opts ...Option,
) AuditService {
	s := &auditServiceImpl{
		sessionRepo:    sessionRepo,
		checkpointRepo: checkpointRepo,
		provisioner:    provisioner,
		closureEmitter: closureEmitter,
		dispatcher:     d,
		logger:         logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *auditServiceImpl) lockSession(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// StartAudit verifies no session is active for the hotel, creates the
// session and its provisioned checkpoint set, and notifies observers.
func (s *auditServiceImpl) StartAudit(ctx context.Context, hotelID, auditDate string) (*StartResult, error) {
	active, err := s.sessionRepo.GetActive(ctx, hotelID)
	if err != nil && !errors.Is(err, port.ErrNotFound) {
		return nil, fmt.Errorf("check active session: %w", err)
	}
	if active != nil {
		s.logger.Warn("Audit start rejected, session already active",
			zap.String("hotel_id", hotelID),
			zap.String("active_session_id", active.ID))
		return nil, audit.ErrSessionAlreadyActive
	}

	session, err := audit.NewSession(hotelID, auditDate, auditDate)
	if err != nil {
		return nil, err
	}

	checkpoints, err := s.provisioner.Provision(ctx, session.ID, auditDate)
	if err != nil {
		return nil, fmt.Errorf("provision checklist: %w", err)
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		// A concurrent start may have won the unique-active check at the
		// store after both passed GetActive.
		if errors.Is(err, audit.ErrSessionAlreadyActive) {
			return nil, audit.ErrSessionAlreadyActive
		}
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.checkpointRepo.CreateBatch(ctx, checkpoints); err != nil {
		// The session row would otherwise stay active forever and block
		// every future start for the hotel.
		if ferr := session.Fail("checklist provisioning could not be persisted"); ferr == nil {
			if uerr := s.sessionRepo.Update(ctx, session); uerr != nil {
				s.logger.Error("Failed to mark orphaned session as failed",
					zap.String("session_id", session.ID), zap.Error(uerr))
			}
		}
		return nil, fmt.Errorf("create checkpoints: %w", err)
	}

	summary := audit.Summarize(checkpoints)

	s.logger.Info("Night audit started",
		zap.String("session_id", session.ID),
		zap.String("hotel_id", hotelID),
		zap.String("audit_date", auditDate),
		zap.Int("checkpoints", summary.Total))

	s.dispatcher.DispatchAsync(ctx, event.New(event.TypeSessionStarted, session.ID, hotelID, map[string]interface{}{
		"audit_date":  auditDate,
		"checkpoints": summary.Total,
	}))

	return &StartResult{Session: session, Checkpoints: checkpoints, Summary: summary}, nil
}

// AdvanceCheckpoint applies a single transition to a checkpoint,
// persists it, recomputes the session summary from a fresh snapshot and
// notifies observers.
func (s *auditServiceImpl) AdvanceCheckpoint(ctx context.Context, checkpointID string, action AdvanceAction, params AdvanceParams) (*AdvanceResult, error) {
	cp, err := s.checkpointRepo.GetByID(ctx, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	mu := s.lockSession(cp.SessionID)
	mu.Lock()
	defer mu.Unlock()

	// Reload under the lock so the transition starts from current state
	cp, err = s.checkpointRepo.GetByID(ctx, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	session, err := s.sessionRepo.GetByID(ctx, cp.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if s.enforceOrder && (action == ActionStart || action == ActionComplete) {
		if err := s.checkOrder(ctx, cp); err != nil {
			return nil, err
		}
	}

	switch action {
	case ActionStart:
		err = cp.Start()
	case ActionComplete:
		err = cp.Complete(params.Data)
	case ActionFail:
		err = cp.Fail(params.ErrorMessage)
	case ActionSkip:
		err = cp.Skip()
	default:
		return nil, fmt.Errorf("unknown checkpoint action %q", action)
	}
	if err != nil {
		return nil, err
	}

	if err := s.checkpointRepo.Update(ctx, cp); err != nil {
		return nil, fmt.Errorf("save checkpoint: %w", err)
	}

	all, err := s.checkpointRepo.GetBySessionID(ctx, cp.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoints: %w", err)
	}
	summary := audit.Summarize(all)

	s.logger.Info("Checkpoint advanced",
		zap.String("checkpoint_id", cp.ID),
		zap.String("session_id", cp.SessionID),
		zap.String("action", string(action)),
		zap.String("status", cp.Status.String()),
		zap.Int("progress", summary.Progress))

	s.dispatcher.DispatchAsync(ctx, event.New(event.TypeCheckpointAdvanced, cp.SessionID, session.HotelID, map[string]interface{}{
		"checkpoint_id": cp.ID,
		"type":          cp.Type,
		"status":        cp.Status.String(),
		"action":        string(action),
	}))
	s.notifySummary(ctx, cp.SessionID, session.HotelID, summary, map[string]interface{}{
		"checkpoint_id": cp.ID,
		"type":          cp.Type,
		"status":        cp.Status.String(),
		"action":        string(action),
	})

	return &AdvanceResult{Checkpoint: cp, Summary: summary}, nil
}

// checkOrder rejects the advance when a lower-ordered checkpoint of the
// same session is not yet terminal
func (s *auditServiceImpl) checkOrder(ctx context.Context, cp *audit.Checkpoint) error {
	siblings, err := s.checkpointRepo.GetBySessionID(ctx, cp.SessionID)
	if err != nil {
		return fmt.Errorf("load checkpoints: %w", err)
	}
	for _, sib := range siblings {
		if sib.OrderIndex < cp.OrderIndex && !sib.Status.IsTerminal() {
			return fmt.Errorf("%w: %q (order %d) is %s", ErrOutOfOrder, sib.Name, sib.OrderIndex, sib.Status)
		}
	}
	return nil
}

// CompleteAudit finalizes a session when the gating condition holds,
// emits the daily closure exactly once and notifies observers. The
// operation is all-or-nothing: a gating failure or closure failure
// leaves the session untouched.
func (s *auditServiceImpl) CompleteAudit(ctx context.Context, sessionID, hotelDateAfter string) (*audit.Session, error) {
	mu := s.lockSession(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	checkpoints, err := s.checkpointRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoints: %w", err)
	}
	summary := audit.Summarize(checkpoints)

	if hotelDateAfter == "" {
		hotelDateAfter = nextDay(session.HotelDateBefore)
	}

	if err := session.Complete(summary, hotelDateAfter); err != nil {
		return nil, err
	}

	totals := aggregateTotals(checkpoints)
	if err := s.closureEmitter.Emit(ctx, session, totals); err != nil {
		// Completion is rolled back by never persisting it
		s.logger.Error("Daily closure emission failed, completion aborted",
			zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("emit daily closure: %w", err)
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("Night audit completed",
		zap.String("session_id", sessionID),
		zap.String("hotel_id", session.HotelID),
		zap.String("hotel_date_after", hotelDateAfter),
		zap.String("total_revenue", totals.TotalRevenue.String()))

	s.dispatcher.DispatchAsync(ctx, event.New(event.TypeSessionCompleted, session.ID, session.HotelID, map[string]interface{}{
		"audit_date":       session.AuditDate,
		"hotel_date_after": hotelDateAfter,
		"total_revenue":    totals.TotalRevenue.String(),
	}))
	s.notifySummary(ctx, session.ID, session.HotelID, summary, nil)

	return session, nil
}

// FailAudit marks the whole session as failed
func (s *auditServiceImpl) FailAudit(ctx context.Context, sessionID, reason string) (*audit.Session, error) {
	mu := s.lockSession(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if err := session.Fail(reason); err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Warn("Night audit failed",
		zap.String("session_id", sessionID),
		zap.String("reason", reason))

	s.dispatcher.DispatchAsync(ctx, event.New(event.TypeSessionFailed, session.ID, session.HotelID, map[string]interface{}{
		"reason": reason,
	}))

	return session, nil
}

// GetSession returns a session by ID
func (s *auditServiceImpl) GetSession(ctx context.Context, sessionID string) (*audit.Session, error) {
	return s.sessionRepo.GetByID(ctx, sessionID)
}

// GetSummary recomputes the summary from the session's checkpoint set
func (s *auditServiceImpl) GetSummary(ctx context.Context, sessionID string) (audit.Summary, error) {
	checkpoints, err := s.checkpointRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return audit.Summary{}, fmt.Errorf("load checkpoints: %w", err)
	}
	return audit.Summarize(checkpoints), nil
}

// ListSessions returns the audit trail for a hotel, newest first
func (s *auditServiceImpl) ListSessions(ctx context.Context, hotelID string, limit, offset int) ([]*audit.Session, error) {
	return s.sessionRepo.List(ctx, hotelID, limit, offset)
}

func (s *auditServiceImpl) notifySummary(ctx context.Context, sessionID, hotelID string, summary audit.Summary, extra map[string]interface{}) {
	payload := map[string]interface{}{
		"total":            summary.Total,
		"completed":        summary.Completed,
		"failed":           summary.Failed,
		"critical_pending": summary.CriticalPending,
		"progress":         summary.Progress,
		"can_complete":     summary.CanComplete(),
	}
	for k, v := range extra {
		payload[k] = v
	}
	s.dispatcher.DispatchAsync(ctx, event.New(event.TypeSummaryChanged, sessionID, hotelID, payload))
}

// aggregateTotals sums the revenue figures recorded as checkpoint
// evidence. Amounts may arrive as strings or numbers depending on which
// system filled the checkpoint.
func aggregateTotals(checkpoints []*audit.Checkpoint) port.ClosureTotals {
	totals := port.ClosureTotals{
		TotalRevenue:    decimal.Zero,
		RoomRevenue:     decimal.Zero,
		POSRevenue:      decimal.Zero,
		CheckpointCount: len(checkpoints),
	}

	for _, cp := range checkpoints {
		totals.RoomRevenue = totals.RoomRevenue.Add(decimalField(cp.Data, "room_revenue"))
		totals.POSRevenue = totals.POSRevenue.Add(decimalField(cp.Data, "pos_revenue"))
		totals.TotalRevenue = totals.TotalRevenue.Add(decimalField(cp.Data, "total_revenue"))
		if v, ok := cp.Data["rooms_occupied"]; ok {
			switch n := v.(type) {
			case int:
				totals.RoomsOccupied += int64(n)
			case int64:
				totals.RoomsOccupied += n
			case float64:
				totals.RoomsOccupied += int64(n)
			}
		}
	}

	if totals.TotalRevenue.IsZero() {
		totals.TotalRevenue = totals.RoomRevenue.Add(totals.POSRevenue)
	}

	return totals
}

func decimalField(data map[string]interface{}, key string) decimal.Decimal {
	v, ok := data[key]
	if !ok {
		return decimal.Zero
	}
	switch n := v.(type) {
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	}
	return decimal.Zero
}

func nextDay(date string) string {
	t, err := time.Parse(audit.DateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, 1).Format(audit.DateLayout)
}
