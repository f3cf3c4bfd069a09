package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/docscan/internal/server"
)

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdin/stdout",
		Long: `Run the Model Context Protocol server. Requests arrive as JSON-RPC on stdin and
responses are written to stdout, so all logging goes to stderr. Configure it in
an MCP client with the command "docscan mcp".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc, err := a.newScanner()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.log.Debug().
				Str("version", Version).
				Str("build_time", BuildTime).
				Str("commit", GitCommit).
				Msg("MCP server starting")

			srv := server.New(sc, a.log, server.Options{
				Version:          Version,
				OCRLanguage:      a.cfg.OCR.Language,
				BatchConcurrency: a.cfg.Batch.Concurrency,
			})
			return srv.Run(ctx)
		},
	}
}
