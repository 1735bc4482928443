package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/adapters/memory"
	"github.com/aretw0/parley/internal/adapters/mcpserver"
	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/session"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the engine as an MCP server over stdio.
This allows AI agent hosts to drive conversations as tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := runOptionsFromFlags(cmd, args)

		// Logs must go to stderr so they don't corrupt JSON-RPC on stdout.
		logger := logging.New(slog.LevelInfo)
		log.SetOutput(os.Stderr)

		eng, err := cli.BuildEngine(context.Background(), opts, logger)
		if err != nil {
			logger.Error("engine initialization failed", "err", err)
			os.Exit(1)
		}
		if err := eng.Validate(); err != nil {
			logger.Error("flow validation failed", "err", err)
			os.Exit(1)
		}

		srv := mcpserver.NewServer(eng, session.NewManager(memory.NewStore()))

		logger.Info("Starting Parley MCP Server (stdio)", "flow", opts.FlowPath)
		if err := srv.ServeStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "MCP server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
