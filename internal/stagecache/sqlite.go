package stagecache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. Old state databases
// are rejected; deleting them only costs a full rebuild.
const schemaVersion = 1

// ErrSchemaMismatch indicates the state database was written by a different
// schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// SQLiteStore persists task records in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the state database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild from scratch)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, task string) (*Record, error) {
	var (
		rec         Record
		runID       sql.NullString
		completedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT task, signature, output_hash, run_id, completed_at FROM task_records WHERE task = ?`,
		task,
	).Scan(&rec.Task, &rec.Signature, &rec.OutputHash, &runID, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", task, err)
	}
	rec.RunID = runID.String
	rec.CompletedAt = parseTime(completedAt)

	inputs, err := s.inputs(ctx, task)
	if err != nil {
		return nil, err
	}
	rec.InputHashes = inputs
	return &rec, nil
}

func (s *SQLiteStore) inputs(ctx context.Context, task string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, hash FROM task_inputs WHERE task = ?`, task)
	if err != nil {
		return nil, fmt.Errorf("load inputs for %s: %w", task, err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, fmt.Errorf("scan input for %s: %w", task, err)
		}
		hashes[path] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inputs for %s: %w", task, err)
	}
	return hashes, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	completed := rec.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_inputs WHERE task = ?`, rec.Task); err != nil {
		return fmt.Errorf("clear inputs for %s: %w", rec.Task, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO task_records (task, signature, output_hash, run_id, completed_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(task) DO UPDATE SET
             signature = excluded.signature,
             output_hash = excluded.output_hash,
             run_id = excluded.run_id,
             completed_at = excluded.completed_at`,
		rec.Task,
		rec.Signature,
		rec.OutputHash,
		nullableString(rec.RunID),
		completed.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("save %s: %w", rec.Task, err)
	}
	for path, hash := range rec.InputHashes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_inputs (task, path, hash) VALUES (?, ?, ?)`,
			rec.Task, path, hash,
		); err != nil {
			return fmt.Errorf("save input %s for %s: %w", path, rec.Task, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save %s: %w", rec.Task, err)
	}
	return nil
}

func (s *SQLiteStore) Forget(ctx context.Context, task string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM task_records WHERE task = ?`, task); err != nil {
		return fmt.Errorf("forget %s: %w", task, err)
	}
	return nil
}

func (s *SQLiteStore) ForgetAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM task_records`); err != nil {
		return fmt.Errorf("forget all: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT task, signature, output_hash, run_id, completed_at FROM task_records ORDER BY task`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	var records []Record
	for rows.Next() {
		var (
			rec         Record
			runID       sql.NullString
			completedAt string
		)
		if err := rows.Scan(&rec.Task, &rec.Signature, &rec.OutputHash, &runID, &completedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.RunID = runID.String
		rec.CompletedAt = parseTime(completedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	_ = rows.Close()

	for i := range records {
		inputs, err := s.inputs(ctx, records[i].Task)
		if err != nil {
			return nil, err
		}
		records[i].InputHashes = inputs
	}
	return records, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
