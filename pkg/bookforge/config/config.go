// Package config defines the immutable run configuration for bookforge.
//
// Precedence, lowest to highest: built-in defaults, config file,
// environment variables (BOOKFORGE_*). The CLI layers its flags on top
// and hands the finished Config to the engine; nothing mutates it after
// that point.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults for recognized options.
const (
	DefaultChapterCount    = 8
	DefaultMaxRetries      = 2
	DefaultMinChapterChars = 600
	DefaultModel           = "gemini-1.5-pro"
)

// Outline size bounds requested from the model.
const (
	MinChapterCount = 5
	MaxChapterCount = 15
)

// Config is the single configuration object consumed at workflow start.
type Config struct {
	// Book inputs. All three are required and must be non-blank.
	Theme    string `yaml:"theme"`
	Genre    string `yaml:"genre"`
	Audience string `yaml:"audience"`

	// Generation tuning.
	ChapterCount       int    `yaml:"chapter_count"`
	ModelName          string `yaml:"model_name"`
	MaxRetriesPerStage int    `yaml:"max_retries_per_stage"`
	MinChapterChars    int    `yaml:"min_chapter_chars"`

	// Output and persistence.
	OutputDir      string `yaml:"output_dir"`
	CheckpointPath string `yaml:"checkpoint_path"`

	// Model backend credentials. APIKey selects the Gemini API;
	// Project/Location select Vertex AI.
	APIKey   string `yaml:"api_key"`
	Project  string `yaml:"project"`
	Location string `yaml:"location"`
}

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		ChapterCount:       DefaultChapterCount,
		ModelName:          DefaultModel,
		MaxRetriesPerStage: DefaultMaxRetries,
		MinChapterChars:    DefaultMinChapterChars,
		OutputDir:          ".",
		CheckpointPath:     "bookforge.db",
	}
}

// Validation errors.
var (
	ErrMissingTheme    = errors.New("theme is required")
	ErrMissingGenre    = errors.New("genre is required")
	ErrMissingAudience = errors.New("audience is required")
)

// Validate checks the configuration for a runnable workflow.
// Blank (empty or whitespace-only) book inputs are rejected.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Theme) == "" {
		return ErrMissingTheme
	}
	if strings.TrimSpace(c.Genre) == "" {
		return ErrMissingGenre
	}
	if strings.TrimSpace(c.Audience) == "" {
		return ErrMissingAudience
	}
	if c.ChapterCount < MinChapterCount || c.ChapterCount > MaxChapterCount {
		return fmt.Errorf("chapter_count %d out of range [%d, %d]",
			c.ChapterCount, MinChapterCount, MaxChapterCount)
	}
	if c.MaxRetriesPerStage < 0 {
		return fmt.Errorf("max_retries_per_stage must be >= 0, got %d", c.MaxRetriesPerStage)
	}
	if c.MinChapterChars < 0 {
		return fmt.Errorf("min_chapter_chars must be >= 0, got %d", c.MinChapterChars)
	}
	return nil
}

// envPrefix is prepended to upper-cased field names for overrides,
// e.g. BOOKFORGE_CHAPTER_COUNT.
const envPrefix = "BOOKFORGE_"

// ApplyEnv returns a copy of c with any BOOKFORGE_* environment
// variables applied. Unset variables leave the existing value alone;
// unparseable numeric values are reported as errors.
func (c Config) ApplyEnv() (Config, error) {
	lookupStr := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}
	lookupInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s%s: %w", envPrefix, key, err)
		}
		*dst = n
		return nil
	}

	lookupStr("THEME", &c.Theme)
	lookupStr("GENRE", &c.Genre)
	lookupStr("AUDIENCE", &c.Audience)
	lookupStr("MODEL_NAME", &c.ModelName)
	lookupStr("OUTPUT_DIR", &c.OutputDir)
	lookupStr("CHECKPOINT_PATH", &c.CheckpointPath)
	lookupStr("API_KEY", &c.APIKey)
	lookupStr("PROJECT", &c.Project)
	lookupStr("LOCATION", &c.Location)

	for key, dst := range map[string]*int{
		"CHAPTER_COUNT":         &c.ChapterCount,
		"MAX_RETRIES_PER_STAGE": &c.MaxRetriesPerStage,
		"MIN_CHAPTER_CHARS":     &c.MinChapterChars,
	} {
		if err := lookupInt(key, dst); err != nil {
			return c, err
		}
	}

	return c, nil
}
