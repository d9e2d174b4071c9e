package terminal

import (
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/vsstate/pkg/runtime/terminal/commands"
	"github.com/de-tools/vsstate/pkg/runtime/terminal/export"
	"github.com/de-tools/vsstate/pkg/services/config"
	"github.com/de-tools/vsstate/pkg/store/duckdb"
)

// CLI represents the command-line interface
type CLI struct {
	reporter *export.Reporter
	logger   zerolog.Logger
	rootCmd  *cobra.Command

	configPath string
	dbPath     string
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	Logger *zerolog.Logger
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	cli := &CLI{
		reporter: export.NewReporter(opts.Output),
		logger:   logger,
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.ExecuteContext(cli.logger.WithContext(context.Background()))
}

// SetArgs overrides the command line, mainly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) openDB(_ context.Context) (*sql.DB, error) {
	path := cli.dbPath
	threads := 0
	if path == "" {
		cfg, err := config.LoadConfig(cli.configPath)
		if err != nil {
			return nil, err
		}
		path = cfg.Database.Path
		threads = cfg.Database.Threads
	}
	return duckdb.NewDB(duckdb.Settings{DbPath: path, Threads: threads})
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vsstate",
		Short:         "Viewsheet assembly state tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "", "Path to the config file")
	cmd.PersistentFlags().StringVar(&cli.dbPath, "db", "", "DuckDB file, overrides database.path")

	cmd.AddCommand(commands.NewInspectCmd(cli.reporter))
	cmd.AddCommand(commands.NewRangeCmd(cli.reporter))
	cmd.AddCommand(commands.NewImportCmd(cli.openDB))
	cmd.AddCommand(commands.NewLoadCSVCmd(cli.openDB))

	return cmd
}
