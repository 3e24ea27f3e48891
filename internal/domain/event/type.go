package event

// Type identifies the type of domain event
type Type string

const (
	TypeSessionStarted     Type = "audit.session_started"
	TypeCheckpointAdvanced Type = "audit.checkpoint_advanced"
	TypeSummaryChanged     Type = "audit.summary_changed"
	TypeSessionCompleted   Type = "audit.session_completed"
	TypeSessionFailed      Type = "audit.session_failed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeSessionStarted,
		TypeCheckpointAdvanced,
		TypeSummaryChanged,
		TypeSessionCompleted,
		TypeSessionFailed:
		return true
	default:
		return false
	}
}
