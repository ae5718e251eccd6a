package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dkarlov/faretrack/internal/snapshot"
	"github.com/dkarlov/faretrack/pkg/logger"
)

// StoredSnapshot is one persisted record together with its timestamp key.
type StoredSnapshot struct {
	Key      string
	Snapshot snapshot.Snapshot
}

// SnapshotStorage persists one immutable snapshot record per capture run,
// keyed by timestamp. Records are never mutated or deleted by this system.
type SnapshotStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// Open opens (or creates) the snapshot database at the given path.
func Open(path string, log *logger.Logger) (*SnapshotStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	storage := &SnapshotStorage{
		db:     db,
		logger: log.Named("sqlite-snapshots"),
	}

	if err := storage.initDB(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize snapshot storage: %w", err)
	}

	return storage, nil
}

// initDB initializes the database tables
func (s *SnapshotStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			key TEXT PRIMARY KEY,
			captured_at TIMESTAMP NOT NULL,
			document TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_snapshots_captured_at ON snapshots(captured_at)`)
	if err != nil {
		return fmt.Errorf("failed to create snapshot index: %w", err)
	}

	return nil
}

// KeyFor derives the record key from a capture instant. Normal daily runs at
// exactly midnight UTC get a date-only key; ad hoc intraday runs keep the
// full instant.
func KeyFor(ts time.Time) string {
	ts = ts.UTC()
	if ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0 && ts.Nanosecond() == 0 {
		return ts.Format("2006-01-02")
	}
	return ts.Format(time.RFC3339)
}

// Put persists exactly one record for the given capture instant. Re-running
// within the same instant replaces the record rather than duplicating it.
func (s *SnapshotStorage) Put(snap *snapshot.Snapshot, ts time.Time) (string, error) {
	document, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key := KeyFor(ts)
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO snapshots (key, captured_at, document, created_at)
		VALUES (?, ?, ?, ?)`,
		key,
		ts.UTC().Format(time.RFC3339),
		string(document),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	s.logger.Info("Snapshot persisted", logger.String("key", key))
	return key, nil
}

// ListAll returns every persisted record with its key, in no particular
// order; the aggregator is responsible for sorting. A record whose document
// cannot be parsed is skipped with a warning, never fatal to the listing.
func (s *SnapshotStorage) ListAll() ([]StoredSnapshot, error) {
	rows, err := s.db.Query(`SELECT key, document FROM snapshots`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var records []StoredSnapshot
	for rows.Next() {
		var key, document string
		if err := rows.Scan(&key, &document); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		var snap snapshot.Snapshot
		if err := json.Unmarshal([]byte(document), &snap); err != nil {
			s.logger.Warn("Skipping unreadable snapshot record",
				logger.String("key", key),
				logger.Error(err))
			continue
		}

		records = append(records, StoredSnapshot{Key: key, Snapshot: snap})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot rows: %w", err)
	}

	return records, nil
}

// Close closes the underlying database.
func (s *SnapshotStorage) Close() error {
	return s.db.Close()
}
