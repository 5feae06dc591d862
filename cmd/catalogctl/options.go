package main

import (
	"fmt"

	"github.com/partsmarket/backend/internal/infrastructure/catalogfile"
	"github.com/partsmarket/backend/internal/usecase"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

// newOptionsCmd creates the options subcommand.
func newOptionsCmd() *cobra.Command {
	var (
		file   string
		locale string
	)

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Print the brand and model selector lists for a catalog file",
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := language.Parse(locale)
			if err != nil {
				return fmt.Errorf("invalid locale %q: %w", locale, err)
			}

			products, err := catalogfile.Load(file)
			if err != nil {
				return err
			}

			options := usecase.ExtractFitmentOptionsForLocale(products, tag)
			return writeJSON(cmd.OutOrStdout(), options)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file (.yaml, .json or .csv)")
	cmd.Flags().StringVar(&locale, "locale", "ar", "collation locale for sorting")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
