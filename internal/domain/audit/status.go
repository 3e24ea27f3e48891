package audit

// CheckpointStatus represents the lifecycle state of a night-audit checkpoint
type CheckpointStatus string

const (
	CheckpointPending    CheckpointStatus = "PENDING"
	CheckpointInProgress CheckpointStatus = "IN_PROGRESS"
	CheckpointCompleted  CheckpointStatus = "COMPLETED"
	CheckpointFailed     CheckpointStatus = "FAILED"
	CheckpointSkipped    CheckpointStatus = "SKIPPED"
)

var validCheckpointStatuses = map[CheckpointStatus]bool{
	CheckpointPending:    true,
	CheckpointInProgress: true,
	CheckpointCompleted:  true,
	CheckpointFailed:     true,
	CheckpointSkipped:    true,
}

var terminalCheckpointStatuses = map[CheckpointStatus]bool{
	CheckpointCompleted: true,
	CheckpointFailed:    true,
	CheckpointSkipped:   true,
}

// IsTerminal returns true if the status is a sink (no further transitions allowed)
func (s CheckpointStatus) IsTerminal() bool {
	return terminalCheckpointStatuses[s]
}

// IsValid returns true if the status is a known checkpoint status
func (s CheckpointStatus) IsValid() bool {
	return validCheckpointStatuses[s]
}

// String returns the string representation of the status
func (s CheckpointStatus) String() string {
	return string(s)
}

// SessionStatus represents the lifecycle state of a night-audit session
type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionFailed     SessionStatus = "FAILED"
)

var validSessionStatuses = map[SessionStatus]bool{
	SessionInProgress: true,
	SessionCompleted:  true,
	SessionFailed:     true,
}

var terminalSessionStatuses = map[SessionStatus]bool{
	SessionCompleted: true,
	SessionFailed:    true,
}

// IsTerminal returns true if the status is terminal
func (s SessionStatus) IsTerminal() bool {
	return terminalSessionStatuses[s]
}

// IsValid returns true if the status is a known session status
func (s SessionStatus) IsValid() bool {
	return validSessionStatuses[s]
}

// String returns the string representation of the status
func (s SessionStatus) String() string {
	return string(s)
}
