package provisioning

import (
	"context"
	"testing"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/audit"
	"go.uber.org/zap"
)

func TestProvision(t *testing.T) {
	templates := []CheckpointTemplate{
		{Type: audit.CheckpointTypeRoomStatusSync, Name: "Synchronize room statuses", Critical: true},
		{Type: audit.CheckpointTypeSystemBackup, Name: "Run system backup", Critical: false},
	}

	p := NewConfigProvisioner(templates, zap.NewNop())
	checkpoints, err := p.Provision(context.Background(), "sess-1", "2025-03-14")
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	if len(checkpoints) != 2 {
		t.Fatalf("len(checkpoints) = %d, want 2", len(checkpoints))
	}
	for i, cp := range checkpoints {
		if cp.SessionID != "sess-1" {
			t.Errorf("checkpoint %d SessionID = %q, want sess-1", i, cp.SessionID)
		}
		if cp.Status != audit.CheckpointPending {
			t.Errorf("checkpoint %d Status = %v, want Pending", i, cp.Status)
		}
		if cp.OrderIndex != i+1 {
			t.Errorf("checkpoint %d OrderIndex = %d, want %d", i, cp.OrderIndex, i+1)
		}
	}
	if !checkpoints[0].IsCritical {
		t.Error("first checkpoint should be critical")
	}
	if checkpoints[1].IsCritical {
		t.Error("second checkpoint should not be critical")
	}
}

func TestProvision_EmptyFallsBackToDefaults(t *testing.T) {
	p := NewConfigProvisioner(nil, zap.NewNop())
	checkpoints, err := p.Provision(context.Background(), "sess-1", "2025-03-14")
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if len(checkpoints) != len(DefaultTemplates()) {
		t.Fatalf("len(checkpoints) = %d, want %d", len(checkpoints), len(DefaultTemplates()))
	}
}

func TestProvision_InvalidTemplate(t *testing.T) {
	p := NewConfigProvisioner([]CheckpointTemplate{{Type: "", Name: "nameless"}}, zap.NewNop())
	if _, err := p.Provision(context.Background(), "sess-1", "2025-03-14"); err == nil {
		t.Error("Provision() should reject a template without a type")
	}
}

func TestDefaultTemplates(t *testing.T) {
	var critical int
	for _, tpl := range DefaultTemplates() {
		if tpl.Critical {
			critical++
		}
	}
	if critical != 4 {
		t.Errorf("critical templates = %d, want 4", critical)
	}
}
