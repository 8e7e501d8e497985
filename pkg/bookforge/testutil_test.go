package bookforge

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/randalmurphal/bookforge/pkg/bookforge/config"
	"github.com/randalmurphal/bookforge/pkg/bookforge/document"
	"github.com/randalmurphal/bookforge/pkg/bookforge/llm"
)

// testConfig returns a small, fast configuration for tests.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Theme = "a lighthouse keeper's last winter"
	cfg.Genre = "literary fiction"
	cfg.Audience = "adults"
	cfg.ChapterCount = 2
	cfg.MinChapterChars = 10
	return cfg
}

// contains builds a substring prompt matcher for llm.Mock rules.
func contains(sub string) func(string) bool {
	return func(prompt string) bool {
		return strings.Contains(prompt, sub)
	}
}

const testOutlineJSON = `[` +
	`{"chapter_number":1,"title":"Arrival","description":"The keeper takes up his post."},` +
	`{"chapter_number":2,"title":"The Storm","description":"A winter storm cuts the island off."}` +
	`]`

const testReviewJSON = `{"overall_assessment":"solid","suggestions":["tighten the ending"]}`

func testChapterText(n int) string {
	switch n {
	case 1:
		return "The keeper rowed out in October, when the water still forgave small mistakes."
	default:
		return "The storm arrived without ceremony, the way the worst things always did."
	}
}

// happyMock scripts a deterministic generator covering the full workflow.
func happyMock() *llm.Mock {
	m := llm.NewMock()
	m.Respond(contains("Propose a compelling title"), "The Last Light")
	m.Respond(contains("Create a chapter outline"), testOutlineJSON)
	m.Respond(contains("chapter 1, titled"), testChapterText(1))
	m.Respond(contains("chapter 2, titled"), testChapterText(2))
	m.Respond(contains("overall_assessment"), testReviewJSON)
	return m
}

// fakeWriter is a deterministic document.Writer for engine tests.
type fakeWriter struct {
	mu           sync.Mutex
	err          error
	calls        int
	lastTitle    string
	lastMeta     document.Meta
	lastChapters []document.Chapter
}

func (w *fakeWriter) Write(title string, meta document.Meta, chapters []document.Chapter) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.calls++
	w.lastTitle = title
	w.lastMeta = meta
	w.lastChapters = chapters
	if w.err != nil {
		return "", w.err
	}
	return "/books/" + document.SanitizeFilename(title) + ".docx", nil
}

// testMetrics is a recording observability.MetricsRecorder.
type testMetrics struct {
	mu          sync.Mutex
	stages      []string
	stageErrors int
	runs        int
	runSuccess  []bool
	chapters    []int
	checkpoints int
}

func (m *testMetrics) RecordStageExecution(_ context.Context, stage string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, stage)
	if err != nil {
		m.stageErrors++
	}
}

func (m *testMetrics) RecordRun(_ context.Context, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	m.runSuccess = append(m.runSuccess, success)
}

func (m *testMetrics) RecordChapterWritten(_ context.Context, chapter int, _ int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chapters = append(m.chapters, chapter)
}

func (m *testMetrics) RecordCheckpoint(_ context.Context, _ string, _ int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints++
}

// testPipeline wires a mock generator and fake writer into a pipeline.
func testPipeline(gen llm.Generator) (*Pipeline, *fakeWriter) {
	w := &fakeWriter{}
	return NewPipeline(gen, w, testConfig()), w
}

// writtenState builds a state that has finished the writing loop.
func writtenState() BookState {
	st := NewBookState("a lighthouse keeper's last winter", "literary fiction", "adults")
	st.Title = "The Last Light"
	st.Outline = []ChapterOutline{
		{Number: 1, Title: "Arrival", Description: "The keeper takes up his post."},
		{Number: 2, Title: "The Storm", Description: "A winter storm cuts the island off."},
	}
	st.Chapters = map[int]string{
		1: testChapterText(1),
		2: testChapterText(2),
	}
	st.CurrentChapter = 2
	return st
}
