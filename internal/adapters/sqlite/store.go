package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"oot/internal/domain"
	"oot/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Store implements ports.StateStore on SQLite. Each record is one row; its
// children and ancestor chain travel as a CBOR payload.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Ensure Store implements StateStore
var _ ports.StateStore = (*Store)(nil)

// Open opens (creating if needed) the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pragmas + schema in single batch
	_, err = db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS records (
			path TEXT PRIMARY KEY,
			parent TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			synced_at INTEGER NOT NULL DEFAULT 0,
			soft_excluded_at INTEGER NOT NULL DEFAULT 0,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_records_parent ON records(parent);
		CREATE INDEX IF NOT EXISTS idx_records_error ON records(error);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// DatabasePath returns the default database location for a vault.
func DatabasePath(vaultPath string) string {
	// XDG data directory
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "oot", hashVaultPath(vaultPath)+".db")
}

// hashVaultPath returns a short hash of the vault path
func hashVaultPath(vaultPath string) string {
	h := sha256.Sum256([]byte(vaultPath))
	return hex.EncodeToString(h[:8]) // First 8 bytes = 16 hex chars
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads every record. A database that was never saved yields a nil
// state. Rows whose payload cannot be decoded are reported and skipped.
func (s *Store) Load(ctx context.Context) (*domain.State, []domain.LoadIssue, error) {
	meta, err := s.loadMeta(ctx)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := meta["schema_version"]; !ok {
		return nil, nil, nil
	}
	if v := meta["schema_version"]; v != schemaVersion {
		return nil, nil, fmt.Errorf("unsupported state schema version %q", v)
	}

	state := &domain.State{
		PropertyName:   meta["property_name"],
		IgnoredFolders: splitFolders(meta["ignored_folders"]),
		Files:          make(map[string]*domain.Record),
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, parent, error, synced_at, soft_excluded_at, payload
		FROM records ORDER BY path
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var issues []domain.LoadIssue
	for rows.Next() {
		var (
			path, parent, errName string
			syncedAt, excludedAt  int64
			payload               []byte
		)
		if err := rows.Scan(&path, &parent, &errName, &syncedAt, &excludedAt, &payload); err != nil {
			return nil, nil, err
		}

		rec, err := decodeRecord(path, parent, errName, syncedAt, excludedAt, payload)
		if err != nil {
			issues = append(issues, domain.LoadIssue{Path: path, Reason: err.Error()})
			continue
		}
		state.Files[path] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return state, issues, nil
}

// Save replaces the stored state in one transaction.
func (s *Store) Save(ctx context.Context, state *domain.State) error {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.clear(); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	for _, rec := range state.Files {
		if err := tx.upsertRecord(rec); err != nil {
			return fmt.Errorf("failed to store %s: %w", rec.Path, err)
		}
	}
	meta := map[string]string{
		"schema_version":  schemaVersion,
		"property_name":   state.PropertyName,
		"ignored_folders": strings.Join(state.IgnoredFolders, "\n"),
	}
	for k, v := range meta {
		if err := tx.setMeta(k, v); err != nil {
			return fmt.Errorf("failed to update metadata: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) loadMeta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (s *Store) beginTx(ctx context.Context) (*stateTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &stateTx{tx: tx}, nil
}

func decodeRecord(path, parent, errName string, syncedAt, excludedAt int64, payload []byte) (*domain.Record, error) {
	var p recordPayload
	if err := unmarshalPayload(payload, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if len(p.Chain) == 0 {
		return nil, errors.New("empty ancestor chain")
	}
	kind, err := domain.ParseErrorKind(errName)
	if err != nil {
		return nil, err
	}

	rec := &domain.Record{
		Path:     path,
		Parent:   parent,
		Children: p.Children,
		Chain:    p.Chain,
		Error:    kind,
	}
	if rec.Children == nil {
		rec.Children = []string{}
	}
	rec.LastSyncedAt = fromUnixNano(syncedAt)
	rec.SoftExcludedAt = fromUnixNano(excludedAt)
	return rec, nil
}

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func splitFolders(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
