package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ViewsheetTableSchema = `
	CREATE TABLE IF NOT EXISTS viewsheets (
		name VARCHAR NOT NULL PRIMARY KEY,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`
const AssemblyTableSchema = `
	CREATE TABLE IF NOT EXISTS assemblies (
		viewsheet VARCHAR NOT NULL,
		name VARCHAR NOT NULL,
		kind VARCHAR NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		xml VARCHAR NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (viewsheet, name)
	);
`

var bootQueries = []string{
	ViewsheetTableSchema,
	AssemblyTableSchema,
}

const inMemoryPath = ":memory:"

type Settings struct {
	DbPath  string
	Threads int
}

func NewDB(settings Settings) (*sql.DB, error) {
	threads := settings.Threads
	if threads <= 0 {
		threads = 4
	}
	path := settings.DbPath
	if path == inMemoryPath {
		// the driver only special-cases the bare in-memory name
		path = ""
	}
	dsn := fmt.Sprintf("%s?threads=%d", path, threads)
	c, err := duckdb.NewConnector(dsn, func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return fmt.Errorf("boot query: %w", err)
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
