package bookforge

import (
	"github.com/randalmurphal/bookforge/pkg/bookforge/config"
	"github.com/randalmurphal/bookforge/pkg/bookforge/document"
	"github.com/randalmurphal/bookforge/pkg/bookforge/llm"
)

// Pipeline owns the injected collaborators and exposes the five stage
// functions. Stages never call each other; the Engine invokes them
// according to the Router's decisions.
type Pipeline struct {
	gen    llm.Generator
	writer document.Writer
	cfg    config.Config
}

// NewPipeline creates a pipeline over a text generator, a document
// writer, and the run configuration.
func NewPipeline(gen llm.Generator, writer document.Writer, cfg config.Config) *Pipeline {
	return &Pipeline{
		gen:    gen,
		writer: writer,
		cfg:    cfg,
	}
}

// genOpts builds the per-call generator options: the configured model
// plus any stage-specific tuning.
func (p *Pipeline) genOpts(extra ...llm.Option) []llm.Option {
	var opts []llm.Option
	if p.cfg.ModelName != "" {
		opts = append(opts, llm.WithModel(p.cfg.ModelName))
	}
	return append(opts, extra...)
}

// StageFunc returns the stage function for a non-terminal stage.
// Returns false for terminal stages, which have no work to do.
func (p *Pipeline) StageFunc(stage Stage) (StageFunc, bool) {
	switch stage {
	case StageAwaitingTitle:
		return p.GetBookInfo, true
	case StageAwaitingOutline:
		return p.CreateOutline, true
	case StageWritingChapters:
		return p.WriteChapter, true
	case StageAwaitingReview:
		return p.ReviewAndEdit, true
	case StageAwaitingExport:
		return p.ExportBook, true
	default:
		return nil, false
	}
}
