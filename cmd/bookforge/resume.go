package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/bookforge/pkg/bookforge"
)

var (
	resumeRunID string
	resumeStage string
	replayStage bool
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume an interrupted run from its latest checkpoint",
	Long: `Resume continues a run from its latest checkpoint. The restored state
routes to exactly the stage that had not yet run, so nothing is redone.

Pass --from-stage to restart from an earlier checkpoint instead, for
example to re-export after a disk failure.`,
	Example: `  bookforge resume --run-id 7d443b3e-...
  bookforge resume --run-id 7d443b3e-... --from-stage awaiting_review`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if resumeRunID == "" {
			return fmt.Errorf("--run-id is required")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		engine, store, err := buildEngine(cmd, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		logger := slog.Default()
		ctx := bookforge.NewContext(cmd.Context(),
			bookforge.WithLogger(logger),
			bookforge.WithContextRunID(resumeRunID))

		opts := []bookforge.ResumeOption{
			bookforge.WithStateValidation(bookforge.BookState.Validate),
		}
		if replayStage {
			opts = append(opts, bookforge.WithReplayStage())
		}

		var final bookforge.BookState
		if resumeStage != "" {
			stage, err := bookforge.ParseStage(resumeStage)
			if err != nil {
				return err
			}
			final, err = engine.ResumeFrom(ctx, store, resumeRunID, stage, opts...)
			printSummary(cmd, resumeRunID, final)
			if err != nil {
				return fmt.Errorf("resume %s: %w", resumeRunID, err)
			}
			return nil
		}

		final, err = engine.Resume(ctx, store, resumeRunID, opts...)
		printSummary(cmd, resumeRunID, final)
		if err != nil {
			return fmt.Errorf("resume %s: %w", resumeRunID, err)
		}
		return nil
	},
}

func init() {
	resumeCmd.Flags().StringVar(&resumeRunID, "run-id", "", "run identifier to resume (required)")
	resumeCmd.Flags().StringVar(&resumeStage, "from-stage", "", "resume from this stage's checkpoint instead of the latest")
	resumeCmd.Flags().BoolVar(&replayStage, "replay", false, "re-execute the checkpointed stage itself")

	resumeCmd.Flags().String("model", "", "model name")
	resumeCmd.Flags().String("output-dir", "", "directory for the exported document")
	resumeCmd.Flags().String("checkpoint-db", "", "checkpoint database path")
	resumeCmd.Flags().String("api-key", "", "Gemini API key (or BOOKFORGE_API_KEY)")
	resumeCmd.Flags().String("project", "", "Vertex AI project")
	resumeCmd.Flags().String("location", "", "Vertex AI location")
}
