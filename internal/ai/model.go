package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ui_forge_server/internal/types"
)

var (
	// ErrNotConfigured is returned before any network call when the provider credential is missing.
	ErrNotConfigured = errors.New("AI service is not configured. Please set your provider API key")
	// ErrEmptyResponse is returned when the provider answers without any candidate.
	ErrEmptyResponse = errors.New("no response from AI")
	// ErrUnsupportedInput is matched by every *UnsupportedInputError.
	ErrUnsupportedInput = errors.New("unsupported input type")
)

// UnsupportedInputError reports an input variant the normalizer does not know.
type UnsupportedInputError struct {
	Kind types.InputKind
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("unsupported input type: %q", e.Kind)
}

func (e *UnsupportedInputError) Is(target error) bool { return target == ErrUnsupportedInput }

// ProviderStatusError is a non-success HTTP answer from the generation provider.
type ProviderStatusError struct {
	Provider   string
	StatusCode int
	Status     string
	Body       string
}

func (e *ProviderStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s API error: %s", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s API error: %s: %s", e.Provider, e.Status, e.Body)
}

// Part is one piece of a multimodal prompt: text, or inline binary data.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

func TextPart(text string) Part { return Part{Text: text} }

func ImagePart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

func (p Part) isInline() bool { return len(p.Data) > 0 }

// GenerateOptions are the sampling parameters of one call.
// A nil Temperature and zero MaxOutputTokens leave the provider defaults.
type GenerateOptions struct {
	Temperature     *float32
	MaxOutputTokens int
	WantImage       bool
}

// InlineImage is binary image output.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// Output is the raw provider answer.
type Output struct {
	Text   string
	Images []InlineImage
}

// Model is a generative-AI endpoint. Implementations issue exactly one request per call.
type Model interface {
	Name() string
	Configured() bool
	Generate(ctx context.Context, parts []Part, opts GenerateOptions) (*Output, error)
}

// ProviderConfig selects and configures a Model implementation.
type ProviderConfig struct {
	Provider string // "gemini" or "openai"
	APIKey   string
	BaseURL  string
	Model    string
}

// NewModel builds the Model named by cfg.Provider.
func NewModel(cfg ProviderConfig) (Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini", "google":
		return NewGeminiClient(cfg.APIKey, cfg.BaseURL, cfg.Model, nil), nil
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	}
	return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
}
