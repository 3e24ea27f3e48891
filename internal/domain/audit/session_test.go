package audit

import (
	"errors"
	"testing"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession("hotel-1", "2025-03-14", "2025-03-14")
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	return s
}

func TestNewSession(t *testing.T) {
	s := newTestSession(t)

	if s.Status != SessionInProgress {
		t.Errorf("Status = %v, want %v", s.Status, SessionInProgress)
	}
	if s.ID == "" {
		t.Error("ID should be generated")
	}
	if s.CompletedAt != nil {
		t.Error("CompletedAt should not be set at creation")
	}
}

func TestNewSession_RejectsBadDates(t *testing.T) {
	if _, err := NewSession("hotel-1", "14/03/2025", "2025-03-14"); err == nil {
		t.Error("NewSession() should reject a malformed audit date")
	}
	if _, err := NewSession("hotel-1", "2025-03-14", "yesterday"); err == nil {
		t.Error("NewSession() should reject a malformed hotel date")
	}
}

func TestSession_Complete(t *testing.T) {
	s := newTestSession(t)
	summary := Summary{Total: 3, Completed: 3, Progress: 100}

	if err := s.Complete(summary, "2025-03-15"); err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if s.Status != SessionCompleted {
		t.Errorf("Status = %v, want %v", s.Status, SessionCompleted)
	}
	if s.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
	if s.HotelDateAfter != "2025-03-15" {
		t.Errorf("HotelDateAfter = %q", s.HotelDateAfter)
	}
}

func TestSession_CompleteGatingNotMet(t *testing.T) {
	s := newTestSession(t)
	summary := Summary{Total: 3, Completed: 2, CriticalPending: 1}

	err := s.Complete(summary, "2025-03-15")
	if !errors.Is(err, ErrGatingNotMet) {
		t.Fatalf("Complete() error = %v, want ErrGatingNotMet", err)
	}

	var gating *GatingError
	if !errors.As(err, &gating) {
		t.Fatal("error should be a *GatingError")
	}
	if gating.CriticalPending != 1 {
		t.Errorf("CriticalPending = %d, want 1", gating.CriticalPending)
	}
	if len(gating.Reasons()) != 1 {
		t.Errorf("Reasons() = %v, want one reason", gating.Reasons())
	}

	if s.Status != SessionInProgress {
		t.Errorf("rejected completion must not change status, got %v", s.Status)
	}
	if s.CompletedAt != nil {
		t.Error("rejected completion must not set CompletedAt")
	}
}

func TestGatingError_Reasons(t *testing.T) {
	e := &GatingError{CriticalPending: 2, Failed: 1, Completed: 0}

	reasons := e.Reasons()
	if len(reasons) != 3 {
		t.Fatalf("Reasons() = %v, want 3 entries", reasons)
	}
}

func TestSession_CompleteTwice(t *testing.T) {
	s := newTestSession(t)
	summary := Summary{Total: 1, Completed: 1, Progress: 100}

	if err := s.Complete(summary, "2025-03-15"); err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if err := s.Complete(summary, "2025-03-16"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second Complete() error = %v, want ErrInvalidTransition", err)
	}
	if s.HotelDateAfter != "2025-03-15" {
		t.Errorf("HotelDateAfter changed on rejected completion: %q", s.HotelDateAfter)
	}
}

func TestSession_Fail(t *testing.T) {
	s := newTestSession(t)

	if err := s.Fail("ledger export corrupted"); err != nil {
		t.Fatalf("Fail() failed: %v", err)
	}
	if s.Status != SessionFailed {
		t.Errorf("Status = %v, want %v", s.Status, SessionFailed)
	}
	if s.FailureReason != "ledger export corrupted" {
		t.Errorf("FailureReason = %q", s.FailureReason)
	}

	if err := s.Fail("again"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fail() on terminal session error = %v, want ErrInvalidTransition", err)
	}
}
