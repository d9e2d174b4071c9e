package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/de-tools/vsstate/pkg/store/duckdb"
	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store filters dataset tables with condition lists.
type Store interface {
	// Query returns the rows of table matching l. No columns selects all.
	Query(ctx context.Context, table string, l *condition.List, columns ...string) ([]condition.MapRow, error)
	Count(ctx context.Context, table string, l *condition.List) (int64, error)
	// Distinct returns the distinct values of column matching l, ordered.
	Distinct(ctx context.Context, table, column string, l *condition.List) ([]any, error)
	// LoadCSV creates or replaces table from a CSV file.
	LoadCSV(ctx context.Context, table, path string) error
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{db: db}, nil
}

func quote(ident string) (string, error) {
	if !identPattern.MatchString(ident) {
		return "", fmt.Errorf("invalid identifier %q", ident)
	}
	return `"` + ident + `"`, nil
}

func where(l *condition.List) (string, []any, error) {
	if l == nil || l.IsEmpty() {
		return "", nil, nil
	}
	clause, args, err := condition.ToSQL(l)
	if err != nil {
		return "", nil, fmt.Errorf("render condition list: %w", err)
	}
	return " WHERE " + clause, args, nil
}

func (s *defaultStore) Query(
	ctx context.Context,
	table string,
	l *condition.List,
	columns ...string,
) ([]condition.MapRow, error) {
	from, err := quote(table)
	if err != nil {
		return nil, err
	}
	sel := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			if quoted[i], err = quote(c); err != nil {
				return nil, err
			}
		}
		sel = strings.Join(quoted, ", ")
	}
	w, args, err := where(l)
	if err != nil {
		return nil, err
	}

	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, "SELECT "+sel+" FROM "+from+w, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func (s *defaultStore) Count(ctx context.Context, table string, l *condition.List) (int64, error) {
	from, err := quote(table)
	if err != nil {
		return 0, err
	}
	w, args, err := where(l)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, "SELECT COUNT(*) FROM "+from+w, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *defaultStore) Distinct(ctx context.Context, table, column string, l *condition.List) ([]any, error) {
	from, err := quote(table)
	if err != nil {
		return nil, err
	}
	col, err := quote(column)
	if err != nil {
		return nil, err
	}
	w, args, err := where(l)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT DISTINCT %[1]s FROM %[2]s%[3]s ORDER BY %[1]s", col, from, w)
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	out := make([]any, 0)
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan distinct value: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *defaultStore) LoadCSV(ctx context.Context, table, path string) error {
	name, err := quote(table)
	if err != nil {
		return err
	}
	// read_csv_auto does not take a bound parameter for the path
	lit := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	_, err = duckdb.Conn(ctx, s.db).ExecContext(ctx,
		fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(%s)", name, lit))
	if err != nil {
		return fmt.Errorf("load %s into %s: %w", path, table, err)
	}
	return nil
}

func scanRows(rows *sql.Rows) ([]condition.MapRow, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	out := make([]condition.MapRow, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(condition.MapRow, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
