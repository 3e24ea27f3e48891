package audit

import (
	"errors"
	"testing"
)

func newTestCheckpoint(status CheckpointStatus, critical bool) *Checkpoint {
	cp := NewCheckpoint("session-1", CheckpointTypeRevenueReconciliation, "Reconcile daily revenue", 1, critical)
	cp.Status = status
	return cp
}

func TestCheckpointStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   CheckpointStatus
		expected bool
	}{
		{CheckpointPending, false},
		{CheckpointInProgress, false},
		{CheckpointCompleted, true},
		{CheckpointFailed, true},
		{CheckpointSkipped, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCheckpoint_Start(t *testing.T) {
	cp := newTestCheckpoint(CheckpointPending, false)

	if err := cp.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if cp.Status != CheckpointInProgress {
		t.Errorf("Status = %v, want %v", cp.Status, CheckpointInProgress)
	}
	if cp.StartedAt == nil {
		t.Error("StartedAt should be set")
	}
}

func TestCheckpoint_StartFromCompleted(t *testing.T) {
	cp := newTestCheckpoint(CheckpointCompleted, false)

	err := cp.Start()
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Start() error = %v, want ErrInvalidTransition", err)
	}
	if cp.Status != CheckpointCompleted {
		t.Errorf("failed transition must not change status, got %v", cp.Status)
	}
	if cp.StartedAt != nil {
		t.Error("failed transition must not set StartedAt")
	}
}

func TestCheckpoint_Complete(t *testing.T) {
	tests := []struct {
		name    string
		initial CheckpointStatus
		wantErr bool
	}{
		{"from pending", CheckpointPending, false},
		{"from in progress", CheckpointInProgress, false},
		{"from completed", CheckpointCompleted, true},
		{"from failed", CheckpointFailed, true},
		{"from skipped", CheckpointSkipped, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := newTestCheckpoint(tt.initial, false)
			err := cp.Complete(map[string]interface{}{"total_revenue": "1250.50"})

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("Complete() error = %v, want ErrInvalidTransition", err)
				}
				if cp.Status != tt.initial {
					t.Errorf("failed transition must not change status, got %v", cp.Status)
				}
				return
			}

			if err != nil {
				t.Fatalf("Complete() failed: %v", err)
			}
			if cp.Status != CheckpointCompleted {
				t.Errorf("Status = %v, want %v", cp.Status, CheckpointCompleted)
			}
			if cp.CompletedAt == nil {
				t.Error("CompletedAt should be set")
			}
			if cp.Data["total_revenue"] != "1250.50" {
				t.Errorf("Data not merged, got %v", cp.Data)
			}
		})
	}
}

func TestCheckpoint_CompleteMergesData(t *testing.T) {
	cp := newTestCheckpoint(CheckpointInProgress, false)
	cp.Data = map[string]interface{}{"rooms_checked": 42}

	if err := cp.Complete(map[string]interface{}{"total_revenue": "100.00"}); err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if cp.Data["rooms_checked"] != 42 || cp.Data["total_revenue"] != "100.00" {
		t.Errorf("Data should merge, got %v", cp.Data)
	}
}

func TestCheckpoint_Fail(t *testing.T) {
	cp := newTestCheckpoint(CheckpointInProgress, true)

	if err := cp.Fail("POS terminal 2 did not settle"); err != nil {
		t.Fatalf("Fail() failed: %v", err)
	}
	if cp.Status != CheckpointFailed {
		t.Errorf("Status = %v, want %v", cp.Status, CheckpointFailed)
	}
	if cp.ErrorMessage != "POS terminal 2 did not settle" {
		t.Errorf("ErrorMessage = %q", cp.ErrorMessage)
	}
	if cp.CompletedAt == nil {
		t.Error("CompletedAt should be set on failure")
	}
}

func TestCheckpoint_Skip(t *testing.T) {
	for _, initial := range []CheckpointStatus{CheckpointPending, CheckpointInProgress} {
		cp := newTestCheckpoint(initial, false)
		if err := cp.Skip(); err != nil {
			t.Fatalf("Skip() from %v failed: %v", initial, err)
		}
		if cp.Status != CheckpointSkipped {
			t.Errorf("Status = %v, want %v", cp.Status, CheckpointSkipped)
		}
	}
}

func TestCheckpoint_SkipCriticalAlwaysRejected(t *testing.T) {
	statuses := []CheckpointStatus{
		CheckpointPending,
		CheckpointInProgress,
		CheckpointCompleted,
		CheckpointFailed,
		CheckpointSkipped,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			cp := newTestCheckpoint(status, true)

			err := cp.Skip()
			if !errors.Is(err, ErrCriticalCheckpointSkip) {
				t.Fatalf("Skip() error = %v, want ErrCriticalCheckpointSkip", err)
			}
			if cp.Status != status {
				t.Errorf("rejected skip must not change status, got %v", cp.Status)
			}
		})
	}
}

func TestCheckpoint_TerminalStatusesAreSinks(t *testing.T) {
	terminals := []CheckpointStatus{CheckpointCompleted, CheckpointFailed, CheckpointSkipped}

	for _, status := range terminals {
		t.Run(string(status), func(t *testing.T) {
			cp := newTestCheckpoint(status, false)

			if err := cp.Start(); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Start() error = %v, want ErrInvalidTransition", err)
			}
			if err := cp.Complete(nil); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Complete() error = %v, want ErrInvalidTransition", err)
			}
			if err := cp.Fail("x"); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Fail() error = %v, want ErrInvalidTransition", err)
			}
			if err := cp.Skip(); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Skip() error = %v, want ErrInvalidTransition", err)
			}
			if cp.Status != status {
				t.Errorf("terminal status must not change, got %v", cp.Status)
			}
		})
	}
}
