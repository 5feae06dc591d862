// Package main provides the catalogctl entrypoint for offline catalog work.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/partsmarket/backend/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Inspect and import car-parts catalog files",
		Long: `catalogctl works on catalog files (YAML, JSON or CSV) without a running server.

Use it to:
- Print the brand and model selector lists a catalog produces
- Preview the storefront filter for a brand, model and name query
- Import a catalog file into a SQLite catalog database`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Config{
				Level:  logLevel,
				Format: "console",
				Output: cmd.ErrOrStderr(),
			})
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newOptionsCmd())
	root.AddCommand(newFilterCmd())
	root.AddCommand(newImportCmd())

	return root
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
