package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jobhunt-app/jobhunt/internal/resource"
)

// Migrate creates every table the registry implies: one table per
// descriptor, the join tables referenced by through-relationships and join
// attributes, and the api_key table. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.schemaStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", convertDBError(err))
		}
	}
	s.logger.Info("schema migration complete", zap.Int("tables", len(s.schemaStatements())))
	return nil
}

func (s *Store) schemaStatements() []string {
	var stmts []string
	for _, desc := range s.registry.All() {
		stmts = append(stmts, s.createTable(desc))
	}
	stmts = append(stmts, s.createJoinTables()...)
	stmts = append(stmts, s.createAPIKeyTable())
	return stmts
}

func (s *Store) idColumn() string {
	if s.dialect == DialectPostgres {
		return "id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	}
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (s *Store) createTable(desc *resource.Descriptor) string {
	defs := []string{s.idColumn()}
	for _, col := range tableColumns(s.registry, desc) {
		defs = append(defs, col+" "+columnType(col))
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		desc.TableName, strings.Join(defs, ",\n\t"),
	)
}

// tableColumns merges the descriptor's own columns with reverse foreign keys
// contributed by has-one and has-many relationships declared on other types.
func tableColumns(registry *resource.Registry, desc *resource.Descriptor) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, col := range desc.Columns() {
		seen[col] = true
		columns = append(columns, col)
	}
	var reverse []string
	for _, other := range registry.All() {
		for _, rel := range other.Relationships {
			if rel.TargetType != desc.TypeName {
				continue
			}
			if rel.Kind != resource.HasOne && rel.Kind != resource.HasMany {
				continue
			}
			if !seen[rel.ForeignKey] {
				seen[rel.ForeignKey] = true
				reverse = append(reverse, rel.ForeignKey)
			}
		}
	}
	sort.Strings(reverse)
	return append(columns, reverse...)
}

// createJoinTables derives every join table from through-relationships and
// join attributes across the catalog, merging column sets when both sides
// declare the same table.
func (s *Store) createJoinTables() []string {
	tables := make(map[string]map[string]bool)
	add := func(table string, cols ...string) {
		if tables[table] == nil {
			tables[table] = make(map[string]bool)
		}
		for _, c := range cols {
			tables[table][c] = true
		}
	}

	for _, desc := range s.registry.All() {
		for _, rel := range desc.Relationships {
			if rel.Kind == resource.ManyThrough {
				add(rel.JoinTable, rel.SelfKey, rel.TargetKey)
				if rel.OrderBy != "" {
					add(rel.JoinTable, rel.OrderBy)
				}
			}
		}
		for _, ja := range desc.JoinAttributes {
			add(ja.JoinTable, ja.ParentKey, ja.ChildKey, ja.Column)
		}
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	stmts := make([]string, 0, len(names))
	for _, name := range names {
		cols := make([]string, 0, len(tables[name]))
		for c := range tables[name] {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		defs := []string{s.idColumn()}
		for _, c := range cols {
			defs = append(defs, c+" "+columnType(c))
		}
		stmts = append(stmts, fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
			name, strings.Join(defs, ",\n\t"),
		))
	}
	return stmts
}

func (s *Store) createAPIKeyTable() string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS api_key (\n\t%s,\n\tname TEXT,\n\tprefix TEXT,\n\tkey_hash TEXT,\n\tscopes TEXT,\n\tcreated_at TEXT\n)",
		s.idColumn(),
	)
}

// columnType picks a portable column affinity from the column name. Both
// dialects accept these; SQLite treats them as affinities anyway.
func columnType(col string) string {
	switch {
	case strings.HasSuffix(col, "_id"):
		return "INTEGER"
	case col == "favorite" || col == "active" || col == "position":
		return "INTEGER"
	case col == "score":
		return "REAL"
	default:
		return "TEXT"
	}
}
