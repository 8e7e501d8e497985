package main

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/randalmurphal/bookforge/pkg/bookforge/config"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "bookforge",
	Short: "Multi-stage book generation workflow",
	Long: `Bookforge turns a (theme, genre, audience) triple into a complete
multi-chapter book document.

The workflow advances through ordered stages: title, outline, a
per-chapter writing loop, review, and DOCX export. State is
checkpointed after every stage, so an interrupted run can be resumed
with "bookforge resume".`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./bookforge.yaml or ~/.bookforge/bookforge.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn, error",
	)
	rootCmd.PersistentFlags().StringVar(
		&logFormat, "log-format", "text", "log format: text or json",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger())
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger from the persistent flags.
func newLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(logFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// flagBindings maps config keys to the command flag that overrides them.
var flagBindings = map[string]string{
	"theme":                 "theme",
	"genre":                 "genre",
	"audience":              "audience",
	"chapter_count":         "chapters",
	"model_name":            "model",
	"max_retries_per_stage": "max-retries",
	"min_chapter_chars":     "min-chapter-chars",
	"output_dir":            "output-dir",
	"checkpoint_path":       "checkpoint-db",
	"api_key":               "api-key",
	"project":               "project",
	"location":              "location",
}

// loadConfig builds the effective configuration. Precedence, lowest to
// highest: built-in defaults, config file, BOOKFORGE_* environment,
// command flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := viper.New()

	def := config.Default()
	v.SetDefault("theme", "")
	v.SetDefault("genre", "")
	v.SetDefault("audience", "")
	v.SetDefault("chapter_count", def.ChapterCount)
	v.SetDefault("model_name", def.ModelName)
	v.SetDefault("max_retries_per_stage", def.MaxRetriesPerStage)
	v.SetDefault("min_chapter_chars", def.MinChapterChars)
	v.SetDefault("output_dir", def.OutputDir)
	v.SetDefault("checkpoint_path", def.CheckpointPath)
	v.SetDefault("api_key", "")
	v.SetDefault("project", "")
	v.SetDefault("location", "")

	v.SetEnvPrefix("BOOKFORGE")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("bookforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bookforge")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return def, err
		}
		// No config file is fine; defaults, env, and flags apply.
	}

	for key, name := range flagBindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return def, err
			}
		}
	}

	return config.Config{
		Theme:              v.GetString("theme"),
		Genre:              v.GetString("genre"),
		Audience:           v.GetString("audience"),
		ChapterCount:       v.GetInt("chapter_count"),
		ModelName:          v.GetString("model_name"),
		MaxRetriesPerStage: v.GetInt("max_retries_per_stage"),
		MinChapterChars:    v.GetInt("min_chapter_chars"),
		OutputDir:          v.GetString("output_dir"),
		CheckpointPath:     v.GetString("checkpoint_path"),
		APIKey:             v.GetString("api_key"),
		Project:            v.GetString("project"),
		Location:           v.GetString("location"),
	}, nil
}
