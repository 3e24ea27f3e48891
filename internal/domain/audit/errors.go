package audit

import (
	"errors"
	"fmt"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/workflow"
)

var (
	// ErrInvalidTransition is returned when a status change is not allowed
	// from the current status. The entity is left unchanged.
	ErrInvalidTransition = workflow.ErrInvalidTransition

	// ErrCriticalCheckpointSkip is returned when skip is attempted on a
	// critical checkpoint, regardless of its current status.
	ErrCriticalCheckpointSkip = errors.New("critical checkpoint cannot be skipped")

	// ErrSessionAlreadyActive is returned when a night audit is started
	// while another session is still in progress for the same hotel.
	ErrSessionAlreadyActive = errors.New("an audit session is already in progress")

	// ErrGatingNotMet is the sentinel matched by errors.Is for a
	// *GatingError returned from Session.Complete.
	ErrGatingNotMet = errors.New("audit completion conditions not met")
)

// GatingError reports why a session cannot be completed. The counts are
// exposed individually so the caller can list the specific blockers
// instead of a generic failure.
type GatingError struct {
	CriticalPending int
	Failed          int
	Completed       int
}

func (e *GatingError) Error() string {
	return fmt.Sprintf("audit completion conditions not met: %d critical pending, %d failed, %d completed", e.CriticalPending, e.Failed, e.Completed)
}

// Is makes errors.Is(err, ErrGatingNotMet) match any *GatingError
func (e *GatingError) Is(target error) bool {
	return target == ErrGatingNotMet
}

// Reasons returns the unmet conditions as human-readable messages, one
// per blocker, suitable for direct display.
func (e *GatingError) Reasons() []string {
	var reasons []string
	if e.CriticalPending > 0 {
		reasons = append(reasons, fmt.Sprintf("%d critical checkpoint(s) still pending", e.CriticalPending))
	}
	if e.Failed > 0 {
		reasons = append(reasons, fmt.Sprintf("%d checkpoint(s) failed and must be corrected", e.Failed))
	}
	if e.Completed == 0 {
		reasons = append(reasons, "no checkpoint has been completed")
	}
	return reasons
}
