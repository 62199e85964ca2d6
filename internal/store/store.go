package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jobhunt-app/jobhunt/internal/resource"
)

// Store executes catalog-driven SQL against one open database. It is safe
// for concurrent use; all state is the connection pool and the immutable
// registry.
type Store struct {
	db       *sql.DB
	dialect  Dialect
	registry *resource.Registry
	logger   *zap.Logger
}

// New wraps an open database in a Store.
func New(db *sql.DB, dialect Dialect, registry *resource.Registry, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, dialect: dialect, registry: registry, logger: logger}
}

// Open opens the database URL and wraps it in a Store.
func Open(databaseURL string, registry *resource.Registry, logger *zap.Logger) (*Store, error) {
	db, dialect, err := OpenDB(databaseURL)
	if err != nil {
		return nil, err
	}
	return New(db, dialect, registry, logger), nil
}

// DB exposes the underlying connection for health checks and migrations.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// selectColumns is the explicit column list for reads: the primary key
// followed by the descriptor's own columns.
func selectColumns(desc *resource.Descriptor) []string {
	return append([]string{"id"}, desc.Columns()...)
}

// Get fetches one record by primary key. Missing rows yield ErrNotFound.
func (s *Store) Get(ctx context.Context, desc *resource.Descriptor, id int64) (map[string]interface{}, error) {
	columns := selectColumns(desc)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = $1",
		strings.Join(columns, ", "), desc.TableName,
	)
	record, err := scanRow(s.db.QueryRowContext(ctx, query, id), columns)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List fetches a page of records ordered by primary key.
func (s *Store) List(ctx context.Context, desc *resource.Descriptor, limit, offset int) ([]map[string]interface{}, error) {
	columns := selectColumns(desc)
	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY id LIMIT $1 OFFSET $2",
		strings.Join(columns, ", "), desc.TableName,
	)
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, convertDBError(err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Count returns the total number of records of one type.
func (s *Store) Count(ctx context.Context, desc *resource.Descriptor) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", desc.TableName)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, convertDBError(err)
	}
	return n, nil
}

// Insert creates a record from a column map and returns the stored row.
// Unknown columns are dropped; the payload parser upstream only admits
// declared ones anyway.
func (s *Store) Insert(ctx context.Context, desc *resource.Descriptor, values map[string]interface{}) (map[string]interface{}, error) {
	columns := writableColumns(desc, values)

	var id int64
	if len(columns) == 0 {
		// A record of nothing but defaults.
		query := fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING id", desc.TableName)
		if err := s.db.QueryRowContext(ctx, query).Scan(&id); err != nil {
			return nil, convertDBError(err)
		}
		return s.Get(ctx, desc, id)
	}

	placeholders := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[col]
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		desc.TableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return nil, convertDBError(err)
	}
	return s.Get(ctx, desc, id)
}

// Update applies a column map to one record and returns the stored row.
// An empty map is a no-op read. Missing rows yield ErrNotFound.
func (s *Store) Update(ctx context.Context, desc *resource.Descriptor, id int64, values map[string]interface{}) (map[string]interface{}, error) {
	columns := writableColumns(desc, values)
	if len(columns) == 0 {
		return s.Get(ctx, desc, id)
	}

	assignments := make([]string, len(columns))
	args := make([]interface{}, 0, len(columns)+1)
	for i, col := range columns {
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, values[col])
	}
	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d",
		desc.TableName, strings.Join(assignments, ", "), len(columns)+1,
	)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, convertDBError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, desc, id)
}

// Delete removes one record. Deleting an absent record is not an error;
// callers treat destroy as idempotent.
func (s *Store) Delete(ctx context.Context, desc *resource.Descriptor, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", desc.TableName)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return convertDBError(err)
	}
	return nil
}

// writableColumns intersects a value map with the descriptor's columns,
// sorted for deterministic SQL.
func writableColumns(desc *resource.Descriptor, values map[string]interface{}) []string {
	allowed := make(map[string]bool)
	for _, col := range desc.Columns() {
		allowed[col] = true
	}
	var columns []string
	for col := range values {
		if allowed[col] {
			columns = append(columns, col)
		}
	}
	sort.Strings(columns)
	return columns
}
