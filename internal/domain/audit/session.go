package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar layout used for audit business dates
const DateLayout = "2006-01-02"

// Session is the aggregate root of a night audit. It owns the checkpoint
// set for one business date of one hotel, is append-only, and reaches
// exactly one terminal status.
type Session struct {
	ID        string        `json:"id"`
	HotelID   string        `json:"hotel_id"`
	AuditDate string        `json:"audit_date"`
	Status    SessionStatus `json:"status"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Business date before/after the rollover, kept for the audit trail
	HotelDateBefore string `json:"hotel_date_before"`
	HotelDateAfter  string `json:"hotel_date_after,omitempty"`

	// FailureReason is set when the session itself is failed
	FailureReason string `json:"failure_reason,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an in-progress session for the given hotel and
// business date. The caller is responsible for checking that no other
// session is active for the hotel.
func NewSession(hotelID, auditDate, hotelDateBefore string) (*Session, error) {
	if _, err := time.Parse(DateLayout, auditDate); err != nil {
		return nil, fmt.Errorf("invalid audit date %q: %w", auditDate, err)
	}
	if _, err := time.Parse(DateLayout, hotelDateBefore); err != nil {
		return nil, fmt.Errorf("invalid hotel date %q: %w", hotelDateBefore, err)
	}

	now := time.Now().UTC()
	return &Session{
		ID:              uuid.NewString(),
		HotelID:         hotelID,
		AuditDate:       auditDate,
		Status:          SessionInProgress,
		StartedAt:       now,
		HotelDateBefore: hotelDateBefore,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Complete finalizes the session. It requires an in-progress session and
// a summary that satisfies the gating condition; otherwise a
// *GatingError with the unmet counts is returned and nothing changes.
func (s *Session) Complete(summary Summary, hotelDateAfter string) error {
	if s.Status != SessionInProgress {
		return fmt.Errorf("%w: cannot complete session in status %s", ErrInvalidTransition, s.Status)
	}
	if !summary.CanComplete() {
		return &GatingError{
			CriticalPending: summary.CriticalPending,
			Failed:          summary.Failed,
			Completed:       summary.Completed,
		}
	}
	if _, err := time.Parse(DateLayout, hotelDateAfter); err != nil {
		return fmt.Errorf("invalid hotel date %q: %w", hotelDateAfter, err)
	}

	now := time.Now().UTC()
	s.Status = SessionCompleted
	s.CompletedAt = &now
	s.HotelDateAfter = hotelDateAfter
	s.UpdatedAt = now
	return nil
}

// Fail marks the whole audit as failed, e.g. after an irrecoverable
// checkpoint failure. Only an in-progress session can fail.
func (s *Session) Fail(reason string) error {
	if s.Status != SessionInProgress {
		return fmt.Errorf("%w: cannot fail session in status %s", ErrInvalidTransition, s.Status)
	}

	now := time.Now().UTC()
	s.Status = SessionFailed
	s.CompletedAt = &now
	s.FailureReason = reason
	s.UpdatedAt = now
	return nil
}
