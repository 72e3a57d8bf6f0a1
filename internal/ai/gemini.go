package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-2.0-flash-exp"
)

// GeminiClient adapts the Google GenAI SDK to Model.
type GeminiClient struct {
	apiKey  string
	model   string
	client  *genai.Client
	initErr error
}

// NewGeminiClient creates a client. An empty baseURL or model selects the defaults;
// a nil httpClient selects the SDK default.
func NewGeminiClient(apiKey, baseURL, model string, httpClient *http.Client) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	c := &GeminiClient{apiKey: apiKey, model: model}
	if apiKey == "" {
		return c
	}

	c.client, c.initErr = genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: strings.TrimRight(baseURL, "/") + "/"},
	})
	if c.initErr != nil {
		log.Printf("WARN: failed to create gemini client: %v", c.initErr)
	}
	return c
}

func (c *GeminiClient) Name() string { return c.model }

func (c *GeminiClient) Configured() bool { return c.apiKey != "" }

// Generate sends one generateContent request.
func (c *GeminiClient) Generate(ctx context.Context, parts []Part, opts GenerateOptions) (*Output, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if c.initErr != nil {
		return nil, fmt.Errorf("gemini client unavailable: %w", c.initErr)
	}

	content := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.isInline() {
			content = append(content, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		content = append(content, genai.NewPartFromText(p.Text))
	}

	config := &genai.GenerateContentConfig{
		Temperature:     opts.Temperature,
		MaxOutputTokens: int32(opts.MaxOutputTokens),
	}
	if opts.WantImage {
		config.ResponseModalities = []string{"TEXT", "IMAGE"}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		genai.NewContentFromParts(content, genai.RoleUser),
	}, config)
	if err != nil {
		return nil, convertGeminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}

	out := &Output{}
	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		if p.InlineData != nil {
			out.Images = append(out.Images, InlineImage{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data})
			continue
		}
		text.WriteString(p.Text)
	}
	out.Text = text.String()
	return out, nil
}

func convertGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		log.Printf("gemini API error response: %d %s", apiErr.Code, apiErr.Message)
		return &ProviderStatusError{
			Provider:   "gemini",
			StatusCode: apiErr.Code,
			Status:     apiErr.Status,
			Body:       apiErr.Message,
		}
	}
	return fmt.Errorf("failed to send request to gemini: %w", err)
}
