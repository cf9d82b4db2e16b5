// Package sqlite implements the chunk store on top of SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/localforge/ragcore/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/core/ports/driven"
)

// Store is a SQLite-backed ChunkStore. Identifiers are the table's
// AUTOINCREMENT primary key, which is exactly the monotonic, dense,
// append-only allocation the chunk store contract requires.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.ChunkStore = (*Store)(nil)

// NewStore opens (creating if absent) a SQLite chunk store at dataDir.
// If dataDir is empty, defaults to ~/.ragcore/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: getting home directory: %v", domain.ErrConfiguration, err)
		}
		dataDir = filepath.Join(home, ".ragcore", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", domain.ErrResource, err)
	}

	dbPath := filepath.Join(dataDir, "chunks.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", domain.ErrResource, err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling foreign keys: %v", domain.ErrResource, err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %v", domain.ErrResource, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending up migrations, in ascending version order.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// InsertBatch assigns identifiers in caller order and persists the batch
// inside a single transaction.
func (s *Store) InsertBatch(ctx context.Context, records []domain.ChunkRecord) ([]int64, error) {
	if len(records) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: beginning transaction: %v", domain.ErrTransientIO, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (content, source_uri, source_type, chunk_index, total_chunks, created_at, vector_digest)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: preparing statement: %v", domain.ErrTransientIO, err)
	}
	defer stmt.Close()

	ids := make([]int64, len(records))
	for i, r := range records {
		res, err := stmt.ExecContext(ctx, r.Content, r.SourceURI, r.SourceType,
			r.ChunkIndex, r.TotalChunks, r.CreatedAt, r.VectorDigest)
		if err != nil {
			return nil, fmt.Errorf("%w: inserting chunk %d: %v", domain.ErrTransientIO, i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("%w: reading inserted id: %v", domain.ErrTransientIO, err)
		}
		ids[i] = id
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing transaction: %v", domain.ErrTransientIO, err)
	}
	return ids, nil
}

// Get performs a point lookup by identifier.
func (s *Store) Get(ctx context.Context, id int64) (*domain.ChunkRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, content, source_uri, source_type, chunk_index, total_chunks, created_at, vector_digest
		FROM chunks WHERE id = ?
	`, id)
	return scanChunkRow(row)
}

// GetBatch looks up multiple identifiers, silently skipping any that no
// longer exist.
func (s *Store) GetBatch(ctx context.Context, ids []int64) ([]domain.ChunkRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, content, source_uri, source_type, chunk_index, total_chunks, created_at, vector_digest
		FROM chunks WHERE id IN (%s)
	`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %v", domain.ErrTransientIO, err)
	}
	defer rows.Close()

	return scanChunkRows(rows)
}

// ListBySourceURI returns all chunk records for a source, ordered by
// ChunkIndex.
func (s *Store) ListBySourceURI(ctx context.Context, sourceURI string) ([]domain.ChunkRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, source_uri, source_type, chunk_index, total_chunks, created_at, vector_digest
		FROM chunks WHERE source_uri = ? ORDER BY chunk_index
	`, sourceURI)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %v", domain.ErrTransientIO, err)
	}
	defer rows.Close()

	return scanChunkRows(rows)
}

// Size returns the number of chunk records currently stored.
func (s *Store) Size(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting chunks: %v", domain.ErrTransientIO, err)
	}
	return count, nil
}

// Reset deletes all records and resets identifier allocation to 1.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrTransientIO, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("%w: clearing chunks: %v", domain.ErrTransientIO, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = 'chunks'"); err != nil {
		return fmt.Errorf("%w: resetting id sequence: %v", domain.ErrTransientIO, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing reset: %v", domain.ErrTransientIO, err)
	}
	return nil
}

func scanChunkRow(row *sql.Row) (*domain.ChunkRecord, error) {
	var r domain.ChunkRecord
	if err := row.Scan(&r.ID, &r.Content, &r.SourceURI, &r.SourceType,
		&r.ChunkIndex, &r.TotalChunks, &r.CreatedAt, &r.VectorDigest); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning chunk: %v", domain.ErrDataIntegrity, err)
	}
	return &r, nil
}

func scanChunkRows(rows *sql.Rows) ([]domain.ChunkRecord, error) {
	var records []domain.ChunkRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.ChunkRecord
		if err := rows.Scan(&r.ID, &r.Content, &r.SourceURI, &r.SourceType,
			&r.ChunkIndex, &r.TotalChunks, &r.CreatedAt, &r.VectorDigest); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %v", domain.ErrDataIntegrity, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %v", domain.ErrTransientIO, err)
	}
	return records, nil
}
