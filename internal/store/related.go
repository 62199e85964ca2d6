package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jobhunt-app/jobhunt/internal/resource"
)

// Related fetches the target entities of a declared relationship. BelongsTo
// follows the foreign key on the given entity; HasOne and HasMany select on
// the target table; ManyThrough joins through the link table, honoring its
// declared ordering.
func (s *Store) Related(ctx context.Context, rel resource.Relationship, entity map[string]interface{}) ([]map[string]interface{}, error) {
	target, ok := s.registry.Get(rel.TargetType)
	if !ok {
		return nil, fmt.Errorf("unknown target type %q", rel.TargetType)
	}

	switch rel.Kind {
	case resource.BelongsTo:
		fk, ok := entityInt(entity[rel.ForeignKey])
		if !ok || fk == 0 {
			return nil, nil
		}
		record, err := s.Get(ctx, target, fk)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []map[string]interface{}{record}, nil

	case resource.HasOne, resource.HasMany:
		id, ok := entityInt(entity["id"])
		if !ok {
			return nil, nil
		}
		columns := selectColumns(target)
		query := fmt.Sprintf(
			"SELECT %s FROM %s WHERE %s = $1 ORDER BY id",
			strings.Join(columns, ", "), target.TableName, rel.ForeignKey,
		)
		rows, err := s.db.QueryContext(ctx, query, id)
		if err != nil {
			return nil, convertDBError(err)
		}
		defer rows.Close()
		return scanRows(rows)

	case resource.ManyThrough:
		id, ok := entityInt(entity["id"])
		if !ok {
			return nil, nil
		}
		columns := selectColumns(target)
		qualified := make([]string, len(columns))
		for i, col := range columns {
			qualified[i] = "t." + col
		}
		orderBy := "t.id"
		if rel.OrderBy != "" {
			orderBy = "j." + rel.OrderBy
		}
		query := fmt.Sprintf(
			"SELECT %s FROM %s t JOIN %s j ON j.%s = t.id WHERE j.%s = $1 ORDER BY %s",
			strings.Join(qualified, ", "), target.TableName,
			rel.JoinTable, rel.TargetKey, rel.SelfKey, orderBy,
		)
		rows, err := s.db.QueryContext(ctx, query, id)
		if err != nil {
			return nil, convertDBError(err)
		}
		defer rows.Close()
		return scanRows(rows)

	default:
		return nil, fmt.Errorf("unknown relationship kind %v", rel.Kind)
	}
}

// JoinValue fetches one column of the join row linking a parent to a child.
// The second return reports whether a join row exists at all.
func (s *Store) JoinValue(ctx context.Context, ja resource.JoinAttribute, parentID, childID int64) (interface{}, bool, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1 AND %s = $2 LIMIT 1",
		ja.Column, ja.JoinTable, ja.ParentKey, ja.ChildKey,
	)
	var value interface{}
	err := s.db.QueryRowContext(ctx, query, parentID, childID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, convertDBError(err)
	}
	return value, true, nil
}

func entityInt(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case float64:
		return int64(t), true
	case []byte:
		n, err := strconv.ParseInt(string(t), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
