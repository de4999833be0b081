package stagecache

import "context"

// SetSchemaVersionForTest rewrites the stored schema version.
func SetSchemaVersionForTest(ctx context.Context, s *SQLiteStore, version int) error {
	_, err := s.db.ExecContext(ctx, "UPDATE schema_version SET version = ?", version)
	return err
}
