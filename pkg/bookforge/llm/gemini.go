package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-pro"

// Gemini implements Generator using Google's Gemini API.
// It supports both the Gemini API (API key) and Vertex AI
// (project + location) backends.
type Gemini struct {
	client *genai.Client
	model  string
}

// GeminiConfig configures a Gemini generator.
type GeminiConfig struct {
	// APIKey selects the Gemini API backend. Mutually exclusive with Project.
	APIKey string
	// Project and Location select the Vertex AI backend.
	Project  string
	Location string
	// Model is the default model for Generate calls.
	Model string
}

// NewGemini creates a Gemini-backed generator.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" && cfg.Project == "" {
		return nil, fmt.Errorf("gemini: either an API key or a Vertex AI project is required")
	}

	cc := &genai.ClientConfig{}
	if cfg.Project != "" {
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	} else {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &Gemini{client: client, model: model}, nil
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	o := buildOptions(opts)

	model := o.Model
	if model == "" {
		model = g.model
	}

	gc := &genai.GenerateContentConfig{}
	if o.Temperature != nil {
		gc.Temperature = o.Temperature
	}
	if o.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = o.MaxOutputTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), gc)
	if err != nil {
		if ctx.Err() != nil {
			return "", NewError("generate", ctx.Err(), false)
		}
		return "", NewError("generate", err, isRetryableMessage(err.Error()))
	}

	text := resp.Text()
	if text == "" {
		// Blocked or empty candidates; callers decide whether to retry.
		return "", NewError("generate", fmt.Errorf("model %s returned no text", model), true)
	}
	return text, nil
}
