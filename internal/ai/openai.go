package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"ui_forge_server/internal/utils"
)

// DefaultOpenAIModel is used when no OpenAI chat model is configured.
const DefaultOpenAIModel = openai.GPT4o

// OpenAIClient adapts the go-openai client to Model.
type OpenAIClient struct {
	client     *openai.Client
	apiKey     string
	model      string
	imageModel string
}

func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" || strings.HasPrefix(model, "gemini") {
		model = DefaultOpenAIModel
	}
	imageModel := openai.CreateImageModelDallE3
	if isOpenAIImageModel(model) {
		imageModel = model
	}
	return &OpenAIClient{
		client:     openai.NewClientWithConfig(config),
		apiKey:     apiKey,
		model:      model,
		imageModel: imageModel,
	}
}

// isOpenAIImageModel reports whether model names an images-endpoint model
// such as dall-e-2 or gpt-image-1.
func isOpenAIImageModel(model string) bool {
	return strings.HasPrefix(model, "dall-e") || strings.HasPrefix(model, "gpt-image")
}

func (c *OpenAIClient) Name() string { return c.model }

func (c *OpenAIClient) Configured() bool { return c.apiKey != "" }

// Generate issues a chat completion, or an image request when an image is
// wanted and the prompt has no inline reference.
func (c *OpenAIClient) Generate(ctx context.Context, parts []Part, opts GenerateOptions) (*Output, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	hasInline := false
	for _, p := range parts {
		if p.isInline() {
			hasInline = true
			break
		}
	}
	if opts.WantImage && !hasInline {
		return c.generateImage(ctx, parts)
	}

	multi := make([]openai.ChatMessagePart, 0, len(parts))
	for _, p := range parts {
		if p.isInline() {
			multi = append(multi, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    utils.DataURI(p.MIMEType, p.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			})
			continue
		}
		multi = append(multi, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: p.Text})
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: multi},
		},
		MaxTokens: opts.MaxOutputTokens,
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
		if req.Temperature == 0 {
			// go-openai drops a zero temperature from the request body.
			req.Temperature = math.SmallestNonzeroFloat32
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, convertOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return &Output{Text: resp.Choices[0].Message.Content}, nil
}

func (c *OpenAIClient) generateImage(ctx context.Context, parts []Part) (*Output, error) {
	var prompt strings.Builder
	for _, p := range parts {
		prompt.WriteString(p.Text)
	}

	req := openai.ImageRequest{
		Prompt: prompt.String(),
		Model:  c.imageModel,
		N:      1,
		Size:   openai.CreateImageSize1024x1024,
	}
	// gpt-image models always answer in base64 and reject response_format.
	if strings.HasPrefix(c.imageModel, "dall-e") {
		req.ResponseFormat = openai.CreateImageResponseFormatB64JSON
	}
	resp, err := c.client.CreateImage(ctx, req)
	if err != nil {
		return nil, convertOpenAIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrEmptyResponse
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode openai image: %w", err)
	}
	return &Output{Images: []InlineImage{{MIMEType: "image/png", Data: data}}}, nil
}

func convertOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderStatusError{
			Provider:   "openai",
			StatusCode: apiErr.HTTPStatusCode,
			Status:     apiErr.HTTPStatus,
			Body:       apiErr.Message,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderStatusError{
			Provider:   "openai",
			StatusCode: reqErr.HTTPStatusCode,
			Status:     reqErr.HTTPStatus,
			Body:       string(reqErr.Body),
		}
	}
	return fmt.Errorf("openai request failed: %w", err)
}
