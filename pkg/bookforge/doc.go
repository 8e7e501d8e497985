// Package bookforge orchestrates a multi-stage generative workflow that
// turns a (theme, genre, audience) triple into a complete multi-chapter
// book document.
//
// The workflow advances a shared BookState through ordered stages:
// title, outline, a per-chapter writing loop, review, and export. A pure
// Router derives the next stage from the current state; the Engine
// drives stage functions according to the Router's decisions, commits
// and checkpoints the state after every stage, and surfaces the final
// state or a terminal error. Because routing is a function of state
// alone, a run can be resumed from any checkpoint.
//
// Text generation is an injected capability (llm.Generator); document
// assembly is an injected document.Writer. The five stage functions live
// on Pipeline and never call each other directly — all transitions are
// mediated by the Router.
//
// Basic usage:
//
//	pipe := bookforge.NewPipeline(gen, writer, cfg)
//	engine := bookforge.NewEngine(pipe)
//	ctx := bookforge.NewContext(context.Background())
//	final, err := engine.Run(ctx, bookforge.NewBookState(cfg.Theme, cfg.Genre, cfg.Audience))
package bookforge
