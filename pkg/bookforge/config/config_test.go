package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Default()
	cfg.Theme = "a lighthouse keeper's last winter"
	cfg.Genre = "literary fiction"
	cfg.Audience = "adults"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultChapterCount, cfg.ChapterCount)
	assert.Equal(t, DefaultModel, cfg.ModelName)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetriesPerStage)
	assert.Equal(t, DefaultMinChapterChars, cfg.MinChapterChars)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "bookforge.db", cfg.CheckpointPath)
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing theme", func(t *testing.T) {
		cfg := validConfig()
		cfg.Theme = "   "
		assert.ErrorIs(t, cfg.Validate(), ErrMissingTheme)
	})

	t.Run("missing genre", func(t *testing.T) {
		cfg := validConfig()
		cfg.Genre = ""
		assert.ErrorIs(t, cfg.Validate(), ErrMissingGenre)
	})

	t.Run("missing audience", func(t *testing.T) {
		cfg := validConfig()
		cfg.Audience = ""
		assert.ErrorIs(t, cfg.Validate(), ErrMissingAudience)
	})

	t.Run("chapter count below range", func(t *testing.T) {
		cfg := validConfig()
		cfg.ChapterCount = MinChapterCount - 1
		assert.Error(t, cfg.Validate())
	})

	t.Run("chapter count above range", func(t *testing.T) {
		cfg := validConfig()
		cfg.ChapterCount = MaxChapterCount + 1
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative retries", func(t *testing.T) {
		cfg := validConfig()
		cfg.MaxRetriesPerStage = -1
		assert.Error(t, cfg.Validate())
	})
}

func TestFromYAML(t *testing.T) {
	cfg, err := FromYAML([]byte(`
theme: the last train out of the valley
genre: thriller
audience: young adults
chapter_count: 10
model_name: gemini-1.5-flash
output_dir: /tmp/books
`))
	require.NoError(t, err)

	assert.Equal(t, "the last train out of the valley", cfg.Theme)
	assert.Equal(t, "thriller", cfg.Genre)
	assert.Equal(t, "young adults", cfg.Audience)
	assert.Equal(t, 10, cfg.ChapterCount)
	assert.Equal(t, "gemini-1.5-flash", cfg.ModelName)
	assert.Equal(t, "/tmp/books", cfg.OutputDir)
	// Absent fields keep defaults.
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetriesPerStage)
	assert.Equal(t, "bookforge.db", cfg.CheckpointPath)
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := FromYAML([]byte("chapter_count: [not an int"))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: tides\ngenre: poetry\n"), 0o644))

	cfg, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tides", cfg.Theme)
	assert.Equal(t, "poetry", cfg.Genre)
}

func TestFromFile_Missing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BOOKFORGE_THEME", "orbital decay")
	t.Setenv("BOOKFORGE_CHAPTER_COUNT", "12")
	t.Setenv("BOOKFORGE_MODEL_NAME", "gemini-1.5-flash")

	cfg, err := Default().ApplyEnv()
	require.NoError(t, err)

	assert.Equal(t, "orbital decay", cfg.Theme)
	assert.Equal(t, 12, cfg.ChapterCount)
	assert.Equal(t, "gemini-1.5-flash", cfg.ModelName)
	// Untouched fields keep their values.
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetriesPerStage)
}

func TestApplyEnv_BadInt(t *testing.T) {
	t.Setenv("BOOKFORGE_CHAPTER_COUNT", "eight")

	_, err := Default().ApplyEnv()
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: from file\nchapter_count: 9\n"), 0o644))

	t.Setenv("BOOKFORGE_THEME", "from env")

	cfg, err := Load(path)
	require.NoError(t, err)

	// Environment wins over the file; the file wins over defaults.
	assert.Equal(t, "from env", cfg.Theme)
	assert.Equal(t, 9, cfg.ChapterCount)
	assert.Equal(t, DefaultModel, cfg.ModelName)
}
