package main

import (
	"github.com/partsmarket/backend/internal/domain"
	"github.com/partsmarket/backend/internal/infrastructure/catalogfile"
	"github.com/partsmarket/backend/internal/usecase"
	"github.com/spf13/cobra"
)

type filterOutput struct {
	Items        []domain.Product `json:"items"`
	UncertainIDs []string         `json:"uncertainIds"`
	Total        int              `json:"total"`
}

// newFilterCmd creates the filter subcommand.
func newFilterCmd() *cobra.Command {
	var (
		file  string
		input domain.FilterInput
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Preview the storefront filter against a catalog file",
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := usecase.NormalizeSelection(input)
			if err != nil {
				return err
			}

			products, err := catalogfile.Load(file)
			if err != nil {
				return err
			}

			result := usecase.FilterHomeProducts(products, selection)
			return writeJSON(cmd.OutOrStdout(), filterOutput{
				Items:        result.Items,
				UncertainIDs: result.UncertainIDList(),
				Total:        len(result.Items),
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file (.yaml, .json or .csv)")
	cmd.Flags().StringVar(&input.SelectedBrand, "brand", "", "selected car brand")
	cmd.Flags().StringVar(&input.SelectedModel, "model", "", "selected car model")
	cmd.Flags().StringVarP(&input.NameQuery, "query", "q", "", "product name query")
	cmd.Flags().BoolVar(&input.IncludeUncertain, "include-uncertain", false, "keep products whose fitment is uncertain")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
