package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bjorkvang/internal/domain"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB is the sqlite-backed booking store. It owns the authoritative
// booking collection and the notification outbox.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
	newID  func() string
	now    func() time.Time
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(sqlDB); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("db_path", path).Msg("database initialized")
	return &DB{DB: sqlDB, logger: logger, newID: uuid.NewString, now: time.Now}, nil
}

// SetClock overrides the time source, for tests.
func (db *DB) SetClock(clock domain.Clock) {
	if clock != nil {
		db.now = clock.Now
	}
}

// SetIDGenerator overrides the id source, for tests.
func (db *DB) SetIDGenerator(gen domain.IDGenerator) {
	if gen != nil {
		db.newID = gen.NewID
	}
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            start DATETIME NOT NULL,
            end DATETIME NOT NULL,
            requester_name TEXT NOT NULL,
            requester_email TEXT NOT NULL,
            requester_phone TEXT,
            event_type TEXT,
            spaces TEXT,
            services TEXT,
            attendees INTEGER NOT NULL DEFAULT 0,
            message TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            version INTEGER NOT NULL DEFAULT 1
        )`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            kind TEXT NOT NULL,
            booking_id TEXT NOT NULL,
            recipient TEXT NOT NULL,
            payload TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_start ON bookings(start)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications(status)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_booking_id ON notifications(booking_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}
