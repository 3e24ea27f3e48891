// Package provisioning supplies the checkpoint set a new audit session
// starts with. Which checks exist, their order and their criticality is
// configuration; the audit core never hardcodes checklist content.
package provisioning

import (
	"context"
	"fmt"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/audit"
	"go.uber.org/zap"
)

// CheckpointTemplate describes one configured checklist entry
type CheckpointTemplate struct {
	Type     string `mapstructure:"type"`
	Name     string `mapstructure:"name"`
	Critical bool   `mapstructure:"critical"`
}

// ConfigProvisioner implements port.ChecklistProvisioner from a
// configured template list
type ConfigProvisioner struct {
	templates []CheckpointTemplate
	logger    *zap.Logger
}

// NewConfigProvisioner creates a provisioner. With no templates
// configured it falls back to the standard night-audit checklist.
func NewConfigProvisioner(templates []CheckpointTemplate, logger *zap.Logger) *ConfigProvisioner {
	if len(templates) == 0 {
		templates = DefaultTemplates()
	}
	return &ConfigProvisioner{templates: templates, logger: logger}
}

// Provision builds the ordered pending checkpoint set for a session
func (p *ConfigProvisioner) Provision(ctx context.Context, sessionID, auditDate string) ([]*audit.Checkpoint, error) {
	checkpoints := make([]*audit.Checkpoint, 0, len(p.templates))
	for i, tpl := range p.templates {
		if tpl.Type == "" || tpl.Name == "" {
			return nil, fmt.Errorf("checklist template %d is missing type or name", i)
		}
		checkpoints = append(checkpoints, audit.NewCheckpoint(sessionID, tpl.Type, tpl.Name, i+1, tpl.Critical))
	}

	p.logger.Info("Checklist provisioned",
		zap.String("session_id", sessionID),
		zap.String("audit_date", auditDate),
		zap.Int("checkpoints", len(checkpoints)))

	return checkpoints, nil
}

// DefaultTemplates is the standard night-audit run for a hotel
func DefaultTemplates() []CheckpointTemplate {
	return []CheckpointTemplate{
		{Type: audit.CheckpointTypeRoomStatusSync, Name: "Synchronize room statuses", Critical: true},
		{Type: audit.CheckpointTypeNoShowProcessing, Name: "Process no-show reservations", Critical: false},
		{Type: audit.CheckpointTypePOSClosure, Name: "Close POS terminals", Critical: true},
		{Type: audit.CheckpointTypeRevenueReconciliation, Name: "Reconcile daily revenue", Critical: true},
		{Type: audit.CheckpointTypeSystemBackup, Name: "Run system backup", Critical: false},
		{Type: audit.CheckpointTypeDateRollover, Name: "Roll hotel business date", Critical: true},
	}
}
