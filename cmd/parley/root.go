package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Parley is a hybrid dialogue engine for conversational agents",
	Long: `Parley drives conversations through a deterministic state machine and
falls back to a generative model only when scripted logic cannot handle
the user's message.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("flow", "f", "flow.yaml", "Path to the conversation definition YAML")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable verbose logging to stderr")
}
