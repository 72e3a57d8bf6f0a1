package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wire shapes of the generateContent request, as seen by the test server.
type wireInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type wireRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string          `json:"text"`
			InlineData *wireInlineData `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig *struct {
		Temperature        *float32 `json:"temperature"`
		MaxOutputTokens    int      `json:"maxOutputTokens"`
		ResponseModalities []string `json:"responseModalities"`
	} `json:"generationConfig"`
}

func TestGeminiClient_NotConfiguredMakesNoRequest(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	client := NewGeminiClient("", srv.URL, "", srv.Client())
	_, err := client.Generate(context.Background(), []Part{TextPart("hello")}, GenerateOptions{})

	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, atomic.LoadInt32(&hits))
	assert.False(t, client.Configured())
}

func TestGeminiClient_Generate(t *testing.T) {
	var got wireRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"<html>"},{"text":"</html>"}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("secret", srv.URL, "test-model", srv.Client())
	temperature := float32(0.7)
	out, err := client.Generate(context.Background(), []Part{
		TextPart("describe"),
		ImagePart("image/png", []byte{0x89, 'P', 'N', 'G'}),
	}, GenerateOptions{Temperature: &temperature, MaxOutputTokens: 4000})
	require.NoError(t, err)

	assert.Equal(t, "<html></html>", out.Text)
	assert.Empty(t, out.Images)

	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 2)
	assert.Equal(t, "describe", got.Contents[0].Parts[0].Text)
	require.NotNil(t, got.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/png", got.Contents[0].Parts[1].InlineData.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}), got.Contents[0].Parts[1].InlineData.Data)
	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, 4000, got.GenerationConfig.MaxOutputTokens)
	require.NotNil(t, got.GenerationConfig.Temperature)
	assert.InDelta(t, 0.7, *got.GenerationConfig.Temperature, 0.0001)
	assert.Empty(t, got.GenerationConfig.ResponseModalities)
}

func TestGeminiClient_InlineImageResponse(t *testing.T) {
	var got wireRequest
	png := []byte("fake-png")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		resp := map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{
					map[string]any{"text": "here you go"},
					map[string]any{"inlineData": map[string]any{"mimeType": "image/png", "data": base64.StdEncoding.EncodeToString(png)}},
				}},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewGeminiClient("secret", srv.URL, "", srv.Client())
	out, err := client.Generate(context.Background(), []Part{TextPart("a cat")}, GenerateOptions{WantImage: true})
	require.NoError(t, err)

	require.Len(t, out.Images, 1)
	assert.Equal(t, "image/png", out.Images[0].MIMEType)
	assert.Equal(t, png, out.Images[0].Data)
	assert.Equal(t, "here you go", out.Text)
	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, []string{"TEXT", "IMAGE"}, got.GenerationConfig.ResponseModalities)
}

func TestGeminiClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("secret", srv.URL, "", srv.Client())
	_, err := client.Generate(context.Background(), []Part{TextPart("x")}, GenerateOptions{})

	var statusErr *ProviderStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "quota exceeded", statusErr.Body)
	assert.Equal(t, "gemini", statusErr.Provider)
}

func TestGeminiClient_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("secret", srv.URL, "", srv.Client())
	_, err := client.Generate(context.Background(), []Part{TextPart("x")}, GenerateOptions{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewModel(t *testing.T) {
	m, err := NewModel(ProviderConfig{Provider: "google", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &GeminiClient{}, m)
	assert.Equal(t, DefaultGeminiModel, m.Name())

	m, err = NewModel(ProviderConfig{Provider: "OpenAI", Model: "gemini-2.0-flash-exp"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, m)
	assert.Equal(t, "gpt-4o", m.Name())
	assert.False(t, m.Configured())

	_, err = NewModel(ProviderConfig{Provider: "anthropic"})
	assert.Error(t, err)
}

func TestOpenAIClient_NotConfigured(t *testing.T) {
	_, err := NewOpenAIClient("", "", "").Generate(context.Background(), []Part{TextPart("x")}, GenerateOptions{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
