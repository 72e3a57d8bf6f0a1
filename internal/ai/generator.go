package ai

import (
	"ui_forge_server/internal/types"
)

// Settings are the fixed sampling parameters of HTML generation.
type Settings struct {
	Temperature float32
	MaxTokens   int
}

// DefaultSettings match the provider defaults used by the web client.
func DefaultSettings() Settings {
	return Settings{Temperature: 0.7, MaxTokens: 4000}
}

// ProgressReporter observes pipeline milestones.
type ProgressReporter interface {
	Report(p types.Progress)
}

// ProgressFunc adapts a function to ProgressReporter.
type ProgressFunc func(p types.Progress)

func (f ProgressFunc) Report(p types.Progress) { f(p) }

type Generator struct {
	model      Model
	imageModel Model
	settings   Settings
}

// NewGenerator wires the text model and the image model. imageModel may be nil,
// in which case image requests go to model.
func NewGenerator(model Model, imageModel Model, settings Settings) *Generator {
	if imageModel == nil {
		imageModel = model
	}
	return &Generator{
		model:      model,
		imageModel: imageModel,
		settings:   settings,
	}
}

// ModelName is the identifier recorded in result metadata.
func (g *Generator) ModelName() string { return g.model.Name() }

func (g *Generator) report(r ProgressReporter, stage types.Stage, message string, progress int) {
	if r == nil {
		return
	}
	r.Report(types.Progress{Stage: stage, Message: message, Progress: progress})
}

// Configured reports whether the text model has a credential.
func (g *Generator) Configured() bool { return g.model.Configured() }
