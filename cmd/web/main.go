package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/de-tools/vsstate/pkg/server"
	"github.com/de-tools/vsstate/pkg/services/config"
	"github.com/de-tools/vsstate/pkg/services/viewsheet"
	"github.com/de-tools/vsstate/pkg/store/duckdb"
	"github.com/de-tools/vsstate/pkg/store/duckdb/assembly"
	"github.com/de-tools/vsstate/pkg/store/duckdb/dataset"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the viewsheet state web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Logger = logger
	ctx := logger.WithContext(cmd.Context())

	catalog := config.EmptyCatalog()
	if cfg.Catalog.Path != "" {
		catalog, err = config.NewCatalog(cfg.Catalog.Path)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		locales, _ := catalog.Locales(ctx)
		logger.Info().Strs("locales", locales).Msgf("Catalog found at `%s` successfully loaded.", cfg.Catalog.Path)
	}

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath:  cfg.Database.Path,
		Threads: cfg.Database.Threads,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer db.Close()

	assemblyStore, err := assembly.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create assembly store: %w", err)
	}
	datasetStore, err := dataset.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create dataset store: %w", err)
	}

	viewsheets, err := assemblyStore.ListViewsheets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list viewsheets: %w", err)
	}
	logger.Info().Int("viewsheets", len(viewsheets)).Str("db", cfg.Database.Path).Msg("database opened")

	ctrl := viewsheet.NewController(assemblyStore, datasetStore)
	janitor := viewsheet.NewJanitor(ctrl, viewsheet.JanitorConfig{
		TTL:           cfg.Session.TTL,
		SweepInterval: cfg.Session.SweepInterval,
	})
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	go janitor.Run(janitorCtx)
	defer func() {
		stopJanitor()
		<-janitor.Done()
	}()

	api := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Viewsheets: ctrl,
			Assemblies: assemblyStore,
			Catalog:    catalog,
			Locale:     cfg.Catalog.Locale,
		},
	})
	return api.Start()
}
