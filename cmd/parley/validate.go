package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/adapters/file"
	"github.com/aretw0/parley/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the flow definition for consistency",
	Long:  `Loads the flow and reports dangling transitions, unreachable states and empty fields.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := runOptionsFromFlags(cmd, args)

		def, err := file.NewLoader(opts.FlowPath).Load(context.Background())
		if err != nil {
			fmt.Printf("Failed to load flow: %v\n", err)
			os.Exit(1)
		}

		findings := validator.Validate(def)
		if len(findings) == 0 {
			fmt.Println("Flow is valid! ✅")
			return
		}

		failed := false
		for _, f := range findings {
			fmt.Println(f)
			if f.Severity == validator.SeverityError {
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
