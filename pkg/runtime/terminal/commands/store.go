package commands

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/vsstate/pkg/adapters"
	"github.com/de-tools/vsstate/pkg/models/store"
	"github.com/de-tools/vsstate/pkg/store/duckdb/assembly"
	"github.com/de-tools/vsstate/pkg/store/duckdb/dataset"
)

const commandTimeout = 60 * time.Second

// OpenDB opens the database configured for the command.
type OpenDB func(ctx context.Context) (*sql.DB, error)

type ImportCmd struct {
	name   string
	openDB OpenDB
}

func NewImportCmd(openDB OpenDB) *cobra.Command {
	ic := &ImportCmd{openDB: openDB}
	cmd := &cobra.Command{
		Use:   "import <file.xml>",
		Short: "Store the assemblies of a viewsheet XML file",
		Args:  cobra.ExactArgs(1),
		RunE:  ic.run,
	}
	cmd.Flags().StringVar(&ic.name, "name", "", "Viewsheet name, defaults to the name in the file")
	return cmd
}

func (ic *ImportCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	vs, err := LoadViewsheet(args[0])
	if err != nil {
		return err
	}
	name := ic.name
	if name == "" {
		name = vs.Name()
	}
	if name == "" {
		return fmt.Errorf("viewsheet has no name, pass --name")
	}

	db, err := ic.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	assemblies, err := assembly.NewStore(db)
	if err != nil {
		return err
	}

	records := make([]store.Assembly, 0, vs.Len())
	for i, ai := range vs.Assemblies() {
		records = append(records, adapters.MapInfoToStoreAssembly(name, i, ai))
	}
	if err := assemblies.SaveAssemblies(ctx, name, records); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}

	zerolog.Ctx(ctx).Info().Str("viewsheet", name).Int("assemblies", len(records)).Msg("viewsheet imported")
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d assemblies into %s\n", len(records), name)
	return err
}

type LoadCSVCmd struct {
	openDB OpenDB
}

func NewLoadCSVCmd(openDB OpenDB) *cobra.Command {
	lc := &LoadCSVCmd{openDB: openDB}
	return &cobra.Command{
		Use:   "load-csv <table> <file.csv>",
		Short: "Create or replace a dataset table from a CSV file",
		Args:  cobra.ExactArgs(2),
		RunE:  lc.run,
	}
}

func (lc *LoadCSVCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	db, err := lc.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	datasets, err := dataset.NewStore(db)
	if err != nil {
		return err
	}
	table, path := args[0], args[1]
	if err := datasets.LoadCSV(ctx, table, path); err != nil {
		return err
	}
	n, err := datasets.Count(ctx, table, nil)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "loaded %d rows into %s\n", n, table)
	return err
}
