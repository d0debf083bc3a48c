package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sqlrover/mssql-mcp/internal/config"
	"github.com/sqlrover/mssql-mcp/internal/debuglog"
	"github.com/sqlrover/mssql-mcp/mcp"
)

var rootCmd = &cobra.Command{
	Use:   "mssql-mcp",
	Short: "An MCP server for Microsoft SQL Server",
	Long: `mssql-mcp is a CLI tool that exposes SQL Server introspection and
query-execution tools over an MCP stdio transport. It processes JSON-RPC
requests from stdin, runs the corresponding database operations, and returns
JSON-RPC responses to stdout.

The connection string can be supplied via --connection-string, the
MSSQL_CONNECTION_STRING environment variable, or a YAML config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		g, ctx := errgroup.WithContext(ctx)

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		if !verbose {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}

		g.Go(func() error {
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			config.FromEnv(cfg)
			if connectionString != "" {
				cfg.ConnectionString = connectionString
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debug
			}
			if logDir != "" {
				cfg.LogDir = logDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			db, err := sql.Open("sqlserver", cfg.ConnectionString)
			if err != nil {
				return fmt.Errorf("error opening database: %w", err)
			}
			defer db.Close()

			server, err := mcp.NewServer(
				mcp.WithDB(db),
				mcp.WithServerInfo("mssql-mcp", version),
				mcp.WithLogger(logger),
			)
			if err != nil {
				return fmt.Errorf("error creating server: %w", err)
			}

			var opts []mcp.TransportOption
			if cfg.Debug {
				logger.Info("debug logging enabled", "dir", cfg.LogDir)
				logs, err := debuglog.Open(cfg.LogDir)
				if err != nil {
					return fmt.Errorf("error opening debug logs: %w", err)
				}
				defer logs.Close()
				opts = append(opts, mcp.WithDebugLogs(logs))
			}

			transport := mcp.NewStdioTransport(server, os.Stdin, os.Stdout, os.Stderr, opts...)
			return transport.Run(ctx)
		})

		return g.Wait()
	},
}

var (
	configPath       string
	connectionString string
	debug            bool
	logDir           string
	verbose          bool

	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().StringVar(&connectionString, "connection-string", "", "SQL Server connection string (overrides config file and environment)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Mirror wire traffic to the log directory")
	rootCmd.Flags().StringVar(&logDir, "log-dir", "", "Directory for debug logs")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging to stderr")

	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built at: %s)", version, commit, date)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
