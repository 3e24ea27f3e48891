package closure

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/application/port"
	"github.com/SOMET1010/africa-suite-pulse-sub010/internal/domain/audit"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newClosureDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE daily_closures (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id        TEXT NOT NULL UNIQUE,
			hotel_id          TEXT NOT NULL,
			closure_date      TEXT NOT NULL,
			hotel_date_before TEXT NOT NULL,
			hotel_date_after  TEXT NOT NULL,
			total_revenue     TEXT NOT NULL,
			room_revenue      TEXT NOT NULL,
			pos_revenue       TEXT NOT NULL,
			rooms_occupied    INTEGER NOT NULL DEFAULT 0,
			checkpoint_count  INTEGER NOT NULL DEFAULT 0,
			created_at        DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func testSession(t *testing.T) *audit.Session {
	t.Helper()
	session, err := audit.NewSession("hotel-1", "2025-03-14", "2025-03-14")
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	session.HotelDateAfter = "2025-03-15"
	return session
}

func TestEmit(t *testing.T) {
	db := newClosureDB(t)
	dir := t.TempDir()
	e := NewEmitter(db, dir, zap.NewNop())

	session := testSession(t)
	totals := port.ClosureTotals{
		TotalRevenue:    decimal.RequireFromString("1500.50"),
		RoomRevenue:     decimal.RequireFromString("1200.00"),
		POSRevenue:      decimal.RequireFromString("300.50"),
		RoomsOccupied:   42,
		CheckpointCount: 6,
	}

	if err := e.Emit(context.Background(), session, totals); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	var total string
	if err := db.QueryRow(`SELECT total_revenue FROM daily_closures WHERE session_id = ?`, session.ID).Scan(&total); err != nil {
		t.Fatalf("closure row: %v", err)
	}
	if total != "1500.5" {
		t.Errorf("total_revenue = %q, want 1500.5", total)
	}

	workbook := filepath.Join(dir, "closure_hotel-1_2025-03-14.xlsx")
	if _, err := os.Stat(workbook); err != nil {
		t.Errorf("workbook not written: %v", err)
	}
}

func TestEmit_ReplayKeepsOneClosure(t *testing.T) {
	db := newClosureDB(t)
	e := NewEmitter(db, t.TempDir(), zap.NewNop())

	session := testSession(t)
	totals := port.ClosureTotals{
		TotalRevenue: decimal.RequireFromString("100"),
		RoomRevenue:  decimal.RequireFromString("100"),
		POSRevenue:   decimal.Zero,
	}

	// First emission lands, then the session save fails and the
	// completion is retried with corrected figures
	if err := e.Emit(context.Background(), session, totals); err != nil {
		t.Fatalf("first Emit() error = %v", err)
	}
	totals.TotalRevenue = decimal.RequireFromString("150")
	if err := e.Emit(context.Background(), session, totals); err != nil {
		t.Fatalf("replayed Emit() error = %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM daily_closures WHERE session_id = ?`, session.ID).Scan(&count); err != nil {
		t.Fatalf("count closures: %v", err)
	}
	if count != 1 {
		t.Fatalf("closures for session = %d, want 1", count)
	}

	var total string
	if err := db.QueryRow(`SELECT total_revenue FROM daily_closures WHERE session_id = ?`, session.ID).Scan(&total); err != nil {
		t.Fatalf("closure row: %v", err)
	}
	if total != "150" {
		t.Errorf("total_revenue after replay = %q, want 150", total)
	}
}
