package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/bookforge/pkg/bookforge"
	"github.com/randalmurphal/bookforge/pkg/bookforge/checkpoint"
	"github.com/randalmurphal/bookforge/pkg/bookforge/config"
	"github.com/randalmurphal/bookforge/pkg/bookforge/document"
	"github.com/randalmurphal/bookforge/pkg/bookforge/llm"
	"github.com/randalmurphal/bookforge/pkg/bookforge/observability"
)

var runID string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a book from a theme, genre, and audience",
	Example: `  bookforge run --theme "a lighthouse keeper's last winter" \
      --genre "literary fiction" --audience adults`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		id := runID
		if id == "" {
			id = uuid.New().String()
		}

		engine, store, err := buildEngine(cmd, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		logger := slog.Default()
		logger.Info("starting book generation",
			"run_id", id,
			"theme", cfg.Theme,
			"genre", cfg.Genre,
			"audience", cfg.Audience,
			"chapters", cfg.ChapterCount,
		)

		ctx := bookforge.NewContext(cmd.Context(),
			bookforge.WithLogger(logger),
			bookforge.WithContextRunID(id))

		final, err := engine.Run(ctx, bookforge.NewBookState(cfg.Theme, cfg.Genre, cfg.Audience),
			bookforge.WithCheckpointing(store),
			bookforge.WithRunID(id),
			bookforge.WithObservabilityLogger(logger),
			bookforge.WithMetrics(observability.NewMetricsRecorder()),
			bookforge.WithTracing(observability.NewSpanManager()),
		)
		printSummary(cmd, id, final)
		if err != nil {
			return fmt.Errorf("run %s: %w", id, err)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().String("theme", "", "book theme (required)")
	runCmd.Flags().String("genre", "", "book genre (required)")
	runCmd.Flags().String("audience", "", "target audience (required)")
	runCmd.Flags().Int("chapters", config.DefaultChapterCount, "number of chapters to outline")
	runCmd.Flags().String("model", config.DefaultModel, "model name")
	runCmd.Flags().Int("max-retries", config.DefaultMaxRetries, "retries per chapter before failing the run")
	runCmd.Flags().Int("min-chapter-chars", config.DefaultMinChapterChars, "minimum plausible chapter length")
	runCmd.Flags().String("output-dir", ".", "directory for the exported document")
	runCmd.Flags().String("checkpoint-db", "bookforge.db", "checkpoint database path")
	runCmd.Flags().String("api-key", "", "Gemini API key (or BOOKFORGE_API_KEY)")
	runCmd.Flags().String("project", "", "Vertex AI project")
	runCmd.Flags().String("location", "", "Vertex AI location")
	runCmd.Flags().StringVar(&runID, "run-id", "", "run identifier (default: random UUID)")
}

// buildEngine wires the generator, writer, and checkpoint store.
func buildEngine(cmd *cobra.Command, cfg config.Config) (*bookforge.Engine, checkpoint.Store, error) {
	gen, err := llm.NewGemini(cmd.Context(), llm.GeminiConfig{
		APIKey:   cfg.APIKey,
		Project:  cfg.Project,
		Location: cfg.Location,
		Model:    cfg.ModelName,
	})
	if err != nil {
		return nil, nil, err
	}

	store, err := checkpoint.NewSQLiteStore(cfg.CheckpointPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open checkpoint store: %w", err)
	}

	writer := document.NewDocxWriter(cfg.OutputDir)
	pipeline := bookforge.NewPipeline(gen, writer, cfg)
	return bookforge.NewEngine(pipeline), store, nil
}

// printSummary reports the run outcome on stdout.
func printSummary(cmd *cobra.Command, id string, final bookforge.BookState) {
	out := cmd.OutOrStdout()
	switch final.Status {
	case bookforge.StatusCompleted:
		fmt.Fprintf(out, "Completed run %s\n", id)
		fmt.Fprintf(out, "  Title:    %s\n", final.Title)
		fmt.Fprintf(out, "  Chapters: %d\n", len(final.Chapters))
		fmt.Fprintf(out, "  Artifact: %s\n", final.ArtifactPath)
	case bookforge.StatusFailed:
		fmt.Fprintf(out, "Failed run %s at stage %s: %s\n", id, final.FailedStage, final.ErrorMessage)
		fmt.Fprintf(out, "  Progress kept: title=%q outline=%d chapters=%d\n",
			final.Title, len(final.Outline), len(final.Chapters))
		fmt.Fprintf(out, "  Resume with: bookforge resume --run-id %s\n", id)
	default:
		fmt.Fprintf(out, "Run %s stopped at stage %s\n", id, bookforge.Route(final))
		fmt.Fprintf(out, "  Resume with: bookforge resume --run-id %s\n", id)
	}
}
