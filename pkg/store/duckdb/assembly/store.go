package assembly

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/vsstate/pkg/models/store"
	"github.com/de-tools/vsstate/pkg/store/duckdb"
)

var ErrNotFound = errors.New("not found")

// Store persists viewsheets and the serialized infos of their assemblies.
type Store interface {
	ListViewsheets(ctx context.Context) ([]store.Viewsheet, error)
	CreateViewsheet(ctx context.Context, name string) error
	DeleteViewsheet(ctx context.Context, name string) error

	ListAssemblies(ctx context.Context, viewsheet string) ([]store.Assembly, error)
	GetAssembly(ctx context.Context, id store.AssemblyIdentity) (*store.Assembly, error)
	SaveAssembly(ctx context.Context, a store.Assembly) error
	SaveAssemblies(ctx context.Context, viewsheet string, assemblies []store.Assembly) error
	DeleteAssembly(ctx context.Context, id store.AssemblyIdentity) error
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) ListViewsheets(ctx context.Context) ([]store.Viewsheet, error) {
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT name, created_at, updated_at FROM viewsheets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query viewsheets: %w", err)
	}
	defer rows.Close()

	out := make([]store.Viewsheet, 0)
	for rows.Next() {
		var vs store.Viewsheet
		if err := rows.Scan(&vs.Name, &vs.CreatedAt, &vs.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan viewsheet: %w", err)
		}
		out = append(out, vs)
	}
	return out, rows.Err()
}

func (s *defaultStore) CreateViewsheet(ctx context.Context, name string) error {
	_, err := duckdb.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO viewsheets (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("create viewsheet %s: %w", name, err)
	}
	return nil
}

func (s *defaultStore) DeleteViewsheet(ctx context.Context, name string) error {
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		conn := duckdb.Conn(ctx, s.db)
		if _, err := conn.ExecContext(ctx, `DELETE FROM assemblies WHERE viewsheet = ?`, name); err != nil {
			return fmt.Errorf("delete assemblies of %s: %w", name, err)
		}
		res, err := conn.ExecContext(ctx, `DELETE FROM viewsheets WHERE name = ?`, name)
		if err != nil {
			return fmt.Errorf("delete viewsheet %s: %w", name, err)
		}
		return expectAffected(res, name)
	})
}

func (s *defaultStore) ListAssemblies(ctx context.Context, viewsheet string) ([]store.Assembly, error) {
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT viewsheet, name, kind, position, xml, updated_at
		FROM assemblies
		WHERE viewsheet = ?
		ORDER BY position, name`, viewsheet)
	if err != nil {
		return nil, fmt.Errorf("query assemblies: %w", err)
	}
	defer rows.Close()

	out := make([]store.Assembly, 0)
	for rows.Next() {
		a, err := scanAssembly(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *defaultStore) GetAssembly(ctx context.Context, id store.AssemblyIdentity) (*store.Assembly, error) {
	row := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT viewsheet, name, kind, position, xml, updated_at
		FROM assemblies
		WHERE viewsheet = ? AND name = ?`, id.Viewsheet, id.Name)
	a, err := scanAssembly(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: assembly %s/%s", ErrNotFound, id.Viewsheet, id.Name)
	}
	return a, err
}

func (s *defaultStore) SaveAssembly(ctx context.Context, a store.Assembly) error {
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		conn := duckdb.Conn(ctx, s.db)
		if err := s.CreateViewsheet(ctx, a.Viewsheet); err != nil {
			return err
		}
		_, err := conn.ExecContext(ctx, `
			INSERT INTO assemblies (viewsheet, name, kind, position, xml, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (viewsheet, name) DO UPDATE SET
				kind = excluded.kind,
				position = excluded.position,
				xml = excluded.xml,
				updated_at = excluded.updated_at`,
			a.Viewsheet, a.Name, a.Kind, a.Position, a.XML, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("save assembly %s/%s: %w", a.Viewsheet, a.Name, err)
		}
		_, err = conn.ExecContext(ctx,
			`UPDATE viewsheets SET updated_at = ? WHERE name = ?`, time.Now().UTC(), a.Viewsheet)
		if err != nil {
			return fmt.Errorf("touch viewsheet %s: %w", a.Viewsheet, err)
		}
		return nil
	})
}

// SaveAssemblies replaces every assembly of viewsheet. Rows are upserted
// first and stale rows pruned after, so no key is deleted and re-inserted
// within the transaction.
func (s *defaultStore) SaveAssemblies(ctx context.Context, viewsheet string, assemblies []store.Assembly) error {
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		if err := s.CreateViewsheet(ctx, viewsheet); err != nil {
			return err
		}
		names := make([]string, 0, len(assemblies))
		for i, a := range assemblies {
			a.Viewsheet = viewsheet
			a.Position = i
			if err := s.SaveAssembly(ctx, a); err != nil {
				return err
			}
			names = append(names, a.Name)
		}

		query := `DELETE FROM assemblies WHERE viewsheet = ?`
		args := []any{viewsheet}
		if len(names) > 0 {
			query += fmt.Sprintf(" AND name NOT IN (%s)", strings.TrimSuffix(strings.Repeat("?,", len(names)), ","))
			for _, n := range names {
				args = append(args, n)
			}
		}
		if _, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("prune assemblies of %s: %w", viewsheet, err)
		}
		return nil
	})
}

func (s *defaultStore) DeleteAssembly(ctx context.Context, id store.AssemblyIdentity) error {
	res, err := duckdb.Conn(ctx, s.db).ExecContext(ctx,
		`DELETE FROM assemblies WHERE viewsheet = ? AND name = ?`, id.Viewsheet, id.Name)
	if err != nil {
		return fmt.Errorf("delete assembly %s/%s: %w", id.Viewsheet, id.Name, err)
	}
	return expectAffected(res, id.Viewsheet+"/"+id.Name)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssembly(row scanner) (*store.Assembly, error) {
	var a store.Assembly
	if err := row.Scan(&a.Viewsheet, &a.Name, &a.Kind, &a.Position, &a.XML, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan assembly: %w", err)
	}
	return &a, nil
}

func expectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return nil
}
