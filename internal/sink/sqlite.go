package sink

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// StoredArtifact is a row of the artifacts table
type StoredArtifact struct {
	ID        string
	Name      string
	Size      int
	Data      []byte
	CreatedAt time.Time
}

// SQLiteSink stores blobs in a SQLite database
type SQLiteSink struct {
	db   *sql.DB
	path string
}

// SQLiteConfig holds configuration for the SQLite sink
type SQLiteConfig struct {
	Path string
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/artifacts.db",
	}
}

// NewSQLiteSink opens or creates the database
func NewSQLiteSink(cfg SQLiteConfig) (*SQLiteSink, error) {
	if cfg.Path == "" {
		cfg = DefaultSQLiteConfig()
	}

	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, storageError(err, "sink.sqlite.open", "failed to create directory")
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, storageError(err, "sink.sqlite.open", "failed to open database")
	}

	s := &SQLiteSink{db: db, path: cfg.Path}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, storageError(err, "sink.sqlite.open", "failed to initialize schema")
	}

	return s, nil
}

// initSchema creates the necessary tables
func (s *SQLiteSink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		size INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_name ON artifacts(name);
	CREATE INDEX IF NOT EXISTS idx_artifacts_created ON artifacts(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Store inserts the blob and returns a locator of the form <db path>#<id>
func (s *SQLiteSink) Store(ctx context.Context, name string, data []byte) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, name, size, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, len(data), data, time.Now().UTC(),
	)
	if err != nil {
		return "", storageError(err, "sink.sqlite.store", "failed to insert artifact")
	}
	return fmt.Sprintf("%s#%s", s.path, id), nil
}

// Get loads a stored artifact by id
func (s *SQLiteSink) Get(ctx context.Context, id string) (*StoredArtifact, error) {
	a := &StoredArtifact{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, size, data, created_at FROM artifacts WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Size, &a.Data, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("artifact not found: %s", id)
	}
	if err != nil {
		return nil, storageError(err, "sink.sqlite.get", "failed to load artifact")
	}
	return a, nil
}

// List returns stored artifacts without their data, newest first
func (s *SQLiteSink) List(ctx context.Context, limit int) ([]*StoredArtifact, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, size, created_at FROM artifacts ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, storageError(err, "sink.sqlite.list", "failed to list artifacts")
	}
	defer rows.Close()

	var artifacts []*StoredArtifact
	for rows.Next() {
		a := &StoredArtifact{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Size, &a.CreatedAt); err != nil {
			return nil, storageError(err, "sink.sqlite.list", "failed to scan artifact")
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// Ping checks the database connection
func (s *SQLiteSink) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
