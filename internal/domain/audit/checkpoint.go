package audit

import (
	"context"
	"time"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/workflow"
	"github.com/google/uuid"
)

// Well-known checkpoint type tags. The type column is free-form so a
// checklist can introduce new categories without a code change; these
// cover the standard night-audit run.
const (
	CheckpointTypeRoomStatusSync        = "room_status_sync"
	CheckpointTypeRevenueReconciliation = "revenue_reconciliation"
	CheckpointTypePOSClosure            = "pos_closure"
	CheckpointTypeNoShowProcessing      = "no_show_processing"
	CheckpointTypeSystemBackup          = "system_backup"
	CheckpointTypeDateRollover          = "date_rollover"
)

// Triggers for the checkpoint lifecycle
const (
	triggerStart    workflow.Trigger = "START"
	triggerComplete workflow.Trigger = "COMPLETE"
	triggerFail     workflow.Trigger = "FAIL"
	triggerSkip     workflow.Trigger = "SKIP"
)

// Checkpoint is a single verifiable step of a night-audit session. A
// checkpoint belongs to exactly one session and is never deleted.
type Checkpoint struct {
	ID           string                 `json:"id"`
	SessionID    string                 `json:"session_id"`
	Type         string                 `json:"type"`
	Name         string                 `json:"name"`
	Status       CheckpointStatus       `json:"status"`
	OrderIndex   int                    `json:"order_index"`
	IsCritical   bool                   `json:"is_critical"`
	StartedAt    *time.Time             `json:"started_at,omitempty"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Data         map[string]interface{} `json:"data,omitempty"`

	// Version guards concurrent saves; the store rejects an update whose
	// version no longer matches the stored row.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCheckpoint creates a pending checkpoint owned by the given session
func NewCheckpoint(sessionID, checkpointType, name string, orderIndex int, isCritical bool) *Checkpoint {
	now := time.Now().UTC()
	return &Checkpoint{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Type:       checkpointType,
		Name:       name,
		Status:     CheckpointPending,
		OrderIndex: orderIndex,
		IsCritical: isCritical,
		Data:       make(map[string]interface{}),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// machine builds the transition machine seeded with the checkpoint's
// current status. Any checkpoint may advance regardless of its
// OrderIndex; ordering is an orchestrator concern, not a transition rule.
func (c *Checkpoint) machine() (workflow.StateMachine, error) {
	notCritical := func(ctx context.Context) bool { return !c.IsCritical }

	b := workflow.NewBuilder()
	b.Configure(workflow.State(CheckpointPending)).
		Permit(triggerStart, workflow.State(CheckpointInProgress)).
		Permit(triggerComplete, workflow.State(CheckpointCompleted)).
		Permit(triggerFail, workflow.State(CheckpointFailed)).
		PermitIf(triggerSkip, workflow.State(CheckpointSkipped), notCritical)
	b.Configure(workflow.State(CheckpointInProgress)).
		Permit(triggerComplete, workflow.State(CheckpointCompleted)).
		Permit(triggerFail, workflow.State(CheckpointFailed)).
		PermitIf(triggerSkip, workflow.State(CheckpointSkipped), notCritical)
	// Terminal statuses are sinks
	b.Configure(workflow.State(CheckpointCompleted))
	b.Configure(workflow.State(CheckpointFailed))
	b.Configure(workflow.State(CheckpointSkipped))

	return b.Build(workflow.State(c.Status))
}

func (c *Checkpoint) fire(trigger workflow.Trigger) error {
	m, err := c.machine()
	if err != nil {
		return err
	}
	if err := m.Fire(context.Background(), trigger); err != nil {
		return err
	}
	c.Status = CheckpointStatus(m.State())
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Start moves the checkpoint from pending to in-progress
func (c *Checkpoint) Start() error {
	if err := c.fire(triggerStart); err != nil {
		return err
	}
	now := time.Now().UTC()
	c.StartedAt = &now
	return nil
}

// Complete marks the checkpoint as completed and merges the given audit
// evidence into its data payload. Allowed from pending or in-progress.
func (c *Checkpoint) Complete(data map[string]interface{}) error {
	if err := c.fire(triggerComplete); err != nil {
		return err
	}
	now := time.Now().UTC()
	c.CompletedAt = &now
	if c.Data == nil {
		c.Data = make(map[string]interface{}, len(data))
	}
	for k, v := range data {
		c.Data[k] = v
	}
	return nil
}

// Fail marks the checkpoint as failed, recording the error message.
// Allowed from pending or in-progress.
func (c *Checkpoint) Fail(errorMessage string) error {
	if err := c.fire(triggerFail); err != nil {
		return err
	}
	now := time.Now().UTC()
	c.CompletedAt = &now
	c.ErrorMessage = errorMessage
	return nil
}

// Skip marks a non-critical checkpoint as skipped. Critical checkpoints
// are rejected before the transition is even attempted, so a critical
// skip fails the same way from every status.
func (c *Checkpoint) Skip() error {
	if c.IsCritical {
		return ErrCriticalCheckpointSkip
	}
	return c.fire(triggerSkip)
}
