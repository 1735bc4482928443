package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/parley/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the conversation interactively in the terminal",
	Long:  `Starts the engine in interactive mode with the given flow definition.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := runOptionsFromFlags(cmd, args)
		watch, _ := cmd.Flags().GetBool("watch")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := cli.RunInteractive(ctx, opts, watch); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runOptionsFromFlags(cmd *cobra.Command, args []string) cli.RunOptions {
	flow, _ := cmd.Flags().GetString("flow")
	if !cmd.Flags().Changed("flow") && len(args) > 0 {
		flow = args[0]
	}
	debug, _ := cmd.Flags().GetBool("debug")
	sessionID, _ := cmd.Flags().GetString("session")
	sessionDir, _ := cmd.Flags().GetString("session-dir")
	fresh, _ := cmd.Flags().GetBool("fresh")
	baseURL, _ := cmd.Flags().GetString("base-url")

	return cli.RunOptions{
		FlowPath:   flow,
		SessionID:  sessionID,
		SessionDir: sessionDir,
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		BaseURL:    baseURL,
		Fresh:      fresh,
		Debug:      debug,
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("session", "", "Session ID to persist and resume (file-backed)")
	runCmd.Flags().String("session-dir", "", "Directory for file-backed sessions")
	runCmd.Flags().Bool("fresh", false, "Discard any persisted session with the same ID")
	runCmd.Flags().String("base-url", "", "OpenAI-compatible API base URL")
	runCmd.Flags().BoolP("watch", "w", false, "Hot-reload the flow definition on change")

	// Make 'run' the default when no subcommand is given.
	rootCmd.Run = runCmd.Run
}
