// Command docscan turns photos of paper documents into flat black and white
// scans. It runs as an HTTP upload service, an MCP stdio server, or a
// one-shot converter.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/docscan/internal/config"
	"github.com/ironsheep/docscan/internal/logging"
	"github.com/ironsheep/docscan/internal/placeholder"
	"github.com/ironsheep/docscan/internal/scanner"
	"github.com/ironsheep/docscan/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type app struct {
	cfgFile string
	envFile string
	verbose bool

	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "docscan",
		Short: "Turn photos of documents into clean black and white scans",
		Long: `docscan finds the outline of a sheet of paper in a photo, flattens it with a
perspective warp and binarizes it with a local threshold.

Run it as an HTTP service for the web front end (serve), as an MCP server
over stdio (mcp), or on a single file (scan).`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path (YAML)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file with DOCSCAN_* overrides")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.serveCmd(), a.mcpCmd(), a.scanCmd(), versionCmd())
	return root
}

// setup loads configuration and builds the logger before any subcommand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile, a.envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	a.log = logging.New(logging.Config{
		Level:   level,
		Format:  cfg.Log.Format,
		Output:  cmd.ErrOrStderr(),
		Service: "docscan",
	})
	return nil
}

// newScanner wires the configured backend and placeholder into a Scanner.
func (a *app) newScanner() (*scanner.Scanner, error) {
	backend, err := vision.New(a.cfg.Scanner.Backend)
	if err != nil {
		return nil, err
	}

	opts := []scanner.Option{
		scanner.WithBackend(backend),
		scanner.WithLogger(a.log.With().Str("component", "scanner").Logger()),
	}
	if path := a.cfg.Scanner.Placeholder; path != "" {
		img, err := placeholder.Load(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, scanner.WithPlaceholder(img))
	}

	a.log.Debug().Str("backend", backend.Name()).Msg("scanner ready")
	return scanner.New(opts...), nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "docscan %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
