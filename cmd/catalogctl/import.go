package main

import (
	"context"
	"fmt"
	"time"

	"github.com/partsmarket/backend/internal/infrastructure/catalogfile"
	"github.com/partsmarket/backend/internal/infrastructure/store"
	"github.com/partsmarket/backend/internal/usecase"
	"github.com/spf13/cobra"
)

// newImportCmd creates the import subcommand.
func newImportCmd() *cobra.Command {
	var (
		file   string
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a catalog file into a SQLite catalog database",
		Long: `Import upserts every product of the file into the database. Products that
are already stored but absent from the file are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			repo, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			service := usecase.NewCatalogService(repo, nil, usecase.CatalogServiceConfig{})
			count, err := service.SyncFrom(ctx, catalogfile.Source{Path: file})
			if err != nil {
				return err
			}

			snapshot, err := service.Snapshot()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d products into %s (%d total)\n", count, dbPath, snapshot.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file (.yaml, .json or .csv)")
	cmd.Flags().StringVar(&dbPath, "db", "data/catalog.db", "SQLite catalog database path")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
