// Package closure writes the daily closure snapshot produced when a
// night audit completes: one ledger row plus a spreadsheet for the
// front office, emitted exactly once per completed session.
package closure

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/application/port"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/audit"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Emitter implements port.ClosureEmitter
type Emitter struct {
	db        *sql.DB
	outputDir string
	logger    *zap.Logger
}

// NewEmitter creates a closure emitter writing workbooks under outputDir
func NewEmitter(db *sql.DB, outputDir string, logger *zap.Logger) *Emitter {
	return &Emitter{db: db, outputDir: outputDir, logger: logger}
}

// Emit records the closure row and writes the workbook. Any failure is
// returned to the caller, which aborts session completion. Emission is
// idempotent per session: a completion retried after a crash or a lost
// session save replays the same closure, overwriting the earlier row
// and workbook instead of duplicating them.
func (e *Emitter) Emit(ctx context.Context, session *audit.Session, totals port.ClosureTotals) error {
	if err := e.insertClosure(ctx, session, totals); err != nil {
		return err
	}

	path, err := e.writeWorkbook(session, totals)
	if err != nil {
		return err
	}

	e.logger.Info("Daily closure emitted",
		zap.String("session_id", session.ID),
		zap.String("hotel_id", session.HotelID),
		zap.String("workbook", path),
		zap.String("total_revenue", totals.TotalRevenue.String()))

	return nil
}

func (e *Emitter) insertClosure(ctx context.Context, session *audit.Session, totals port.ClosureTotals) error {
	query := `
		INSERT INTO daily_closures (
			session_id, hotel_id, closure_date, hotel_date_before, hotel_date_after,
			total_revenue, room_revenue, pos_revenue, rooms_occupied, checkpoint_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			hotel_date_after = excluded.hotel_date_after,
			total_revenue = excluded.total_revenue,
			room_revenue = excluded.room_revenue,
			pos_revenue = excluded.pos_revenue,
			rooms_occupied = excluded.rooms_occupied,
			checkpoint_count = excluded.checkpoint_count
	`

	_, err := e.db.ExecContext(ctx, query,
		session.ID,
		session.HotelID,
		session.AuditDate,
		session.HotelDateBefore,
		session.HotelDateAfter,
		totals.TotalRevenue.String(),
		totals.RoomRevenue.String(),
		totals.POSRevenue.String(),
		totals.RoomsOccupied,
		totals.CheckpointCount,
	)
	if err != nil {
		return fmt.Errorf("failed to record daily closure: %w", err)
	}
	return nil
}

func (e *Emitter) writeWorkbook(session *audit.Session, totals port.ClosureTotals) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create closure directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	cells := []struct {
		cell  string
		value interface{}
	}{
		{"A1", "Daily Closure"},
		{"A2", "Hotel"},
		{"B2", session.HotelID},
		{"A3", "Business date closed"},
		{"B3", session.AuditDate},
		{"A4", "New business date"},
		{"B4", session.HotelDateAfter},
		{"A6", "Total revenue"},
		{"B6", totals.TotalRevenue.String()},
		{"A7", "Room revenue"},
		{"B7", totals.RoomRevenue.String()},
		{"A8", "POS revenue"},
		{"B8", totals.POSRevenue.String()},
		{"A9", "Rooms occupied"},
		{"B9", totals.RoomsOccupied},
		{"A10", "Checkpoints run"},
		{"B10", totals.CheckpointCount},
	}
	for _, c := range cells {
		if err := f.SetCellValue(sheet, c.cell, c.value); err != nil {
			return "", fmt.Errorf("failed to fill closure workbook: %w", err)
		}
	}

	path := filepath.Join(e.outputDir, fmt.Sprintf("closure_%s_%s.xlsx", session.HotelID, session.AuditDate))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save closure workbook: %w", err)
	}

	return path, nil
}
