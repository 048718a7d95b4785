package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tillflow/tillflow/internal/cli"
	"github.com/tillflow/tillflow/internal/common"
	"github.com/tillflow/tillflow/internal/score"
	"github.com/tillflow/tillflow/internal/storage"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Annotate loaded items with nutrition grades",
		Long: `Batch-scores every item in dim_items into a Nutri-Score grade
(A-E) via the configured text-generation service and writes the
grades to the item_scores table. Best effort: items the service
cannot grade fall back to "` + score.DefaultGrade + `".`,
		RunE: runScore,
	}

	cmd.Flags().String("api-key", "", "scoring service API key")
	cmd.Flags().String("model", "", "scoring model name")
	cmd.Flags().Bool("progress", true, "show a progress bar")

	_ = viper.BindPFlag("scoring.api_key", cmd.Flags().Lookup("api-key"))
	_ = viper.BindPFlag("scoring.model", cmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("scoring.progress", cmd.Flags().Lookup("progress"))

	return cmd
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	apiKey := viper.GetString("scoring.api_key")
	if apiKey == "" {
		return fmt.Errorf("%w: scoring.api_key (or --api-key)", common.ErrMissingConfig)
	}

	client, err := score.NewGeminiClient(score.Config{
		APIKey: apiKey,
		Model:  viper.GetString("scoring.model"),
	})
	if err != nil {
		return fmt.Errorf("failed to create scoring client: %w", err)
	}

	store, err := storage.NewSQLiteStorage(viper.GetString("database.path"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	items, err := store.GetItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to read items: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: dim_items is empty, run the pipeline first", common.ErrEmptyInput)
	}

	annotator := score.NewAnnotator(
		score.NewEstimator(client, time.Second),
		viper.GetBool("scoring.progress"),
	)
	scores := annotator.ScoreItems(ctx, items)

	if err := store.ReplaceItemScores(ctx, scores); err != nil {
		return fmt.Errorf("failed to save item scores: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("scored %d of %d items", len(scores), len(items))))
	return nil
}
