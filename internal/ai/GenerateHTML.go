package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"ui_forge_server/internal/ai/prompts"
	"ui_forge_server/internal/ai/utils"
	"ui_forge_server/internal/types"
)

// GenerateHTML runs the whole pipeline for one input: analyze, compose, call
// the model once, clean the document, check its scripts and build the result.
// Nothing is retried and no partial result is returned on failure.
func (g *Generator) GenerateHTML(ctx context.Context, input types.GenerationInput, req types.GenerationRequirements, progress ProgressReporter) (*types.GenerationResult, error) {
	if !g.model.Configured() {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	result, err := g.generateHTML(ctx, input, req, progress, start)
	if err != nil {
		g.report(progress, types.StageError, "Error: "+err.Error(), 0)
		return nil, err
	}
	return result, nil
}

func (g *Generator) generateHTML(ctx context.Context, input types.GenerationInput, req types.GenerationRequirements, progress ProgressReporter, start time.Time) (*types.GenerationResult, error) {
	g.report(progress, types.StageAnalyzing, "Analyzing input...", 10)
	analysis, err := g.AnalyzeInput(ctx, input)
	if err != nil {
		return nil, err
	}

	g.report(progress, types.StageGenerating, "Generating HTML code...", 40)
	raw, err := g.GenerateCode(ctx, analysis, req)
	if err != nil {
		return nil, err
	}
	document := utils.CleanHTML(raw)
	if document == "" {
		return nil, fmt.Errorf("html generation failed: %w", ErrEmptyResponse)
	}

	g.report(progress, types.StageValidating, "Checking inline scripts...", 70)
	warnings := utils.ValidateScripts(document)
	for _, w := range warnings {
		log.Printf("WARN: generated page %q: %s", req.Name, w)
	}

	g.report(progress, types.StageComplete, "HTML generated successfully!", 100)

	return &types.GenerationResult{
		ID:          NewResultID(),
		Name:        req.Name,
		HTML:        document,
		Description: types.Description(input),
		Features:    utils.ExtractFeatures(document, req),
		CreatedAt:   time.Now(),
		Metadata: types.GenerationMetadata{
			InputType:      input.Kind(),
			OriginalInput:  types.EchoInput(input),
			Requirements:   req,
			AIModel:        g.model.Name(),
			GenerationTime: time.Since(start).Milliseconds(),
			Context:        analysis,
			ScriptWarnings: warnings,
		},
	}, nil
}

// GenerateCode sends the composed prompt and returns the raw model text.
func (g *Generator) GenerateCode(ctx context.Context, analysis string, req types.GenerationRequirements) (string, error) {
	temperature := g.settings.Temperature
	out, err := g.model.Generate(ctx, []Part{TextPart(prompts.HTMLGenerationPrompt(analysis, req))}, GenerateOptions{
		Temperature:     &temperature,
		MaxOutputTokens: g.settings.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("html generation failed: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("html generation failed: %w", ErrEmptyResponse)
	}
	return out.Text, nil
}

// NewResultID returns a time-ordered identifier with random low bits.
func NewResultID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
