package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tillflow/tillflow/internal/cli"
	"github.com/tillflow/tillflow/internal/common"
	"github.com/tillflow/tillflow/internal/ingest"
	"github.com/tillflow/tillflow/internal/pipeline"
	"github.com/tillflow/tillflow/internal/storage"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full ETL pipeline",
		Long: `Reads the raw POS export and the category reference workbook,
transforms them into the star schema, and replaces the output tables
in SQLite. The replacement is atomic: a failed run leaves the
previous load untouched.`,
		RunE: runPipeline,
	}

	cmd.Flags().String("input", "", "path to the POS export workbook (required)")
	cmd.Flags().String("categories", "", "path to the category reference workbook (defaults to the input workbook)")
	cmd.Flags().String("sales-sheet", ingest.DefaultSalesSheet, "worksheet holding the raw sales rows")
	cmd.Flags().String("categories-sheet", ingest.DefaultReferenceSheet, "worksheet holding the category reference")
	_ = cmd.MarkFlagRequired("input")

	_ = viper.BindPFlag("input.sales", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("input.categories", cmd.Flags().Lookup("categories"))
	_ = viper.BindPFlag("input.sales_sheet", cmd.Flags().Lookup("sales-sheet"))
	_ = viper.BindPFlag("input.categories_sheet", cmd.Flags().Lookup("categories-sheet"))

	return cmd
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	salesPath := viper.GetString("input.sales")
	refPath := viper.GetString("input.categories")
	if refPath == "" {
		refPath = salesPath
	}

	raw, err := ingest.ReadSales(salesPath, viper.GetString("input.sales_sheet"))
	if err != nil {
		return fmt.Errorf("failed to read sales export: %w", err)
	}
	refs, err := ingest.ReadCategoryReference(refPath, viper.GetString("input.categories_sheet"))
	if err != nil {
		return fmt.Errorf("failed to read category reference: %w", err)
	}

	slog.Info("input loaded", "sales_rows", len(raw), "category_refs", len(refs))

	ds, report, err := pipeline.New().Run(raw, refs)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	// The sink handle is scoped to the load, never held as ambient
	// state.
	store, err := storage.NewSQLiteStorage(viper.GetString("database.path"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	if err := store.ReplaceDataset(ctx, ds); err != nil {
		// Diagnostics still go out on a failed load so drift stays
		// visible to the operator.
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRunReport(report, nil))
		return common.NewUserError("failed to load star schema; the previous load is untouched", err)
	}

	counts, err := store.TableCounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count loaded tables: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRunReport(report, counts))
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("pipeline executed successfully"))
	return nil
}
