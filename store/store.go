// Package store implements generic record operations against the relational
// store. Every operation runs inside a caller-owned transaction and binds all
// values as parameters; identifiers are checked against a strict pattern so no
// caller input is ever interpolated into SQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrNoMatch signals an ensure-exists check found no matching record.
	ErrNoMatch = errors.New("store: no matching record")
	// ErrBadIdentifier signals a table or column name outside the allowed pattern.
	ErrBadIdentifier = errors.New("store: invalid identifier")
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Conditions maps column names to required values; entries combine with AND.
type Conditions map[string]any

// Row is a single record keyed by column name.
type Row map[string]any

// Int64 reads an integral column, tolerating the width the driver picked.
func (r Row) Int64(column string) int64 {
	switch v := r[column].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int16:
		return int64(v)
	case int:
		return int64(v)
	}
	return 0
}

// String reads a text column, returning "" for NULL or absent columns.
func (r Row) String(column string) string {
	if v, ok := r[column].(string); ok {
		return v
	}
	return ""
}

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrBadIdentifier, name)
	}
	return nil
}

// sortedColumns returns the map keys in deterministic order so generated SQL
// is stable across runs.
func sortedColumns[V any](m map[string]V) ([]string, error) {
	columns := make([]string, 0, len(m))
	for column := range m {
		if err := checkIdent(column); err != nil {
			return nil, err
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns, nil
}

// whereClause renders the conditions as "a = $n AND b = $n+1" starting at the
// given placeholder ordinal and appends the bound values to args.
func whereClause(where Conditions, start int, args []any) (string, []any, error) {
	columns, err := sortedColumns(where)
	if err != nil {
		return "", nil, err
	}
	parts := make([]string, 0, len(columns))
	for i, column := range columns {
		parts = append(parts, fmt.Sprintf("%s = $%d", column, start+i))
		args = append(args, where[column])
	}
	return strings.Join(parts, " AND "), args, nil
}

// InsertRecord inserts one row with the given column values.
func InsertRecord(ctx context.Context, tx pgx.Tx, table string, values Row) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	columns, err := sortedColumns(values)
	if err != nil {
		return err
	}
	placeholders := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for i, column := range columns {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, values[column])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("store: insert into %s: %w", table, err)
	}
	return nil
}

// UpdateRecord updates the rows matching where with the given column values.
func UpdateRecord(ctx context.Context, tx pgx.Tx, table string, values Row, where Conditions) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	columns, err := sortedColumns(values)
	if err != nil {
		return err
	}
	sets := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+len(where))
	for i, column := range columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, i+1))
		args = append(args, values[column])
	}
	clause, args, err := whereClause(where, len(columns)+1, args)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(sets, ", "), clause)
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("store: update %s: %w", table, err)
	}
	return nil
}

// DeleteRecords deletes every row matching where and reports how many went.
func DeleteRecords(ctx context.Context, tx pgx.Tx, table string, where Conditions) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	clause, args, err := whereClause(where, 1, nil)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, clause)
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("store: delete from %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// SearchRecords returns every row matching where as column-keyed maps.
func SearchRecords(ctx context.Context, tx pgx.Tx, table string, where Conditions) ([]Row, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	clause, args, err := whereClause(where, 1, nil)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s", table, clause)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var result []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("store: read %s row: %w", table, err)
		}
		record := make(Row, len(fields))
		for i, field := range fields {
			record[field.Name] = values[i]
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate %s rows: %w", table, err)
	}
	return result, nil
}

// EnsureExists fails with ErrNoMatch unless at least one row matches where,
// returning the first match otherwise.
func EnsureExists(ctx context.Context, tx pgx.Tx, table string, where Conditions) (Row, error) {
	records, err := SearchRecords(ctx, tx, table, where)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s matching %v", ErrNoMatch, table, where)
	}
	return records[0], nil
}
