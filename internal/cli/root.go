// Package cli implements the cnstock command line interface.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hsliu/cnstock/internal/common"
	"github.com/hsliu/cnstock/internal/mcp"
)

var (
	// Global flags
	flagJSON           bool
	flagStreamableHTTP bool
	flagHost           string
	flagPort           int
	flagConfig         string
	flagLogLevel       string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cnstock",
	Short: "MCP server for Chinese stock market data",
	Long: `cnstock exposes Chinese stock market data as MCP tools: historical and
real-time quotes, financial statements, fund flows, macro series and more,
pulled from several upstream providers with automatic fallback.

By default the server speaks MCP over stdio for local clients. With
--streamable-http it listens on an HTTP port instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
		os.Exit(getExitCode(err))
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output in JSON format")

	rootCmd.Flags().BoolVar(&flagStreamableHTTP, "streamable-http", false, "Serve MCP over streamable HTTP instead of stdio")
	rootCmd.Flags().StringVar(&flagHost, "host", "", "Listen host for HTTP transport (default: 0.0.0.0)")
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "Listen port for HTTP transport (default: 8081)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Path to TOML config file")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(versionCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := common.LoadConfig(flagConfig)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flagHost != "" {
		cfg.Server.Host = flagHost
	}
	if flagPort != 0 {
		cfg.Server.Port = flagPort
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}

	log := common.NewLogger(cfg.Logging.Level)

	srv, err := mcp.NewServer(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagStreamableHTTP {
		return srv.ServeHTTP(ctx, cfg.Server.Addr())
	}

	if isTerminal(os.Stdin) {
		fmt.Fprintln(os.Stderr, "Serving MCP on stdio; this mode is meant for MCP clients, not interactive use.")
	}
	return srv.ServeStdio(ctx)
}
