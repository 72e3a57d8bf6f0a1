package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_forge_server/internal/types"
)

// fakeModel returns canned outputs in order and records every call.
type fakeModel struct {
	name       string
	configured bool
	outputs    []*Output
	err        error
	calls      [][]Part
	opts       []GenerateOptions
}

func (m *fakeModel) Name() string     { return m.name }
func (m *fakeModel) Configured() bool { return m.configured }

func (m *fakeModel) Generate(ctx context.Context, parts []Part, opts GenerateOptions) (*Output, error) {
	m.calls = append(m.calls, parts)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.outputs) == 0 {
		return &Output{}, nil
	}
	out := m.outputs[0]
	m.outputs = m.outputs[1:]
	return out, nil
}

func newFakeModel(outputs ...*Output) *fakeModel {
	return &fakeModel{name: "fake-model", configured: true, outputs: outputs}
}

type progressLog []types.Progress

func (l *progressLog) Report(p types.Progress) { *l = append(*l, p) }

func TestAnalyzeInput(t *testing.T) {
	g := NewGenerator(newFakeModel(), nil, DefaultSettings())
	ctx := context.Background()

	design, err := g.AnalyzeInput(ctx, types.DesignInput{URL: "https://www.figma.com/file/AbC123/Landing", Description: "Landing page"})
	require.NoError(t, err)
	assert.Equal(t, "Figma design with ID: AbC123. Create an HTML page based on this Figma design. Landing page", design)

	text, err := g.AnalyzeInput(ctx, types.TextInput{Description: "A pricing card", Requirements: []string{"two tiers", "dark mode"}})
	require.NoError(t, err)
	assert.Equal(t, "A pricing card\n\nAdditional requirements:\n- two tiers\n- dark mode", text)

	empty, err := g.AnalyzeInput(ctx, types.TextInput{Description: "Just this"})
	require.NoError(t, err)
	assert.NotEmpty(t, empty)
}

func TestAnalyzeInput_UnknownFigmaURL(t *testing.T) {
	assert.Equal(t, "unknown", ExtractFigmaID("https://example.com/design"))
	assert.Equal(t, "XyZ9", ExtractFigmaID("https://figma.com/file/XyZ9"))
}

func TestAnalyzeInput_Image(t *testing.T) {
	model := newFakeModel(&Output{Text: "A hero section with a blue button"})
	g := NewGenerator(model, nil, DefaultSettings())

	got, err := g.AnalyzeInput(context.Background(), types.ImageInput{Data: []byte("\x89PNG\r\n\x1a\n"), MIMEType: "image/png", Description: "hero"})
	require.NoError(t, err)
	assert.Equal(t, "A hero section with a blue button", got)

	require.Len(t, model.calls, 1)
	require.Len(t, model.calls[0], 2)
	assert.Contains(t, model.calls[0][0].Text, "Additional context: hero")
	assert.Equal(t, "image/png", model.calls[0][1].MIMEType)
}

func TestAnalyzeInput_ImageEmptyAnswer(t *testing.T) {
	g := NewGenerator(newFakeModel(&Output{Text: "  "}), nil, DefaultSettings())
	_, err := g.AnalyzeInput(context.Background(), types.ImageInput{Data: []byte("x"), MIMEType: "image/png"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnalyzeInput_Unsupported(t *testing.T) {
	g := NewGenerator(newFakeModel(), nil, DefaultSettings())

	_, err := g.AnalyzeInput(context.Background(), &types.TextInput{Description: "pointer variant"})
	assert.ErrorIs(t, err, ErrUnsupportedInput)
	var unsupported *UnsupportedInputError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, types.InputText, unsupported.Kind)

	_, err = g.AnalyzeInput(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnsupportedInput)
}

func TestGenerateHTML(t *testing.T) {
	model := newFakeModel(&Output{Text: "```html\n<html><body><nav></nav><script>let a = 1;</script></body></html>\n```"})
	g := NewGenerator(model, nil, DefaultSettings())
	var progress progressLog

	req := types.GenerationRequirements{Name: "Pricing", Framework: types.FrameworkTailwind, Responsive: true}
	result, err := g.GenerateHTML(context.Background(), types.TextInput{Description: "A pricing card", Requirements: []string{"two tiers"}}, req, &progress)
	require.NoError(t, err)

	assert.Equal(t, "<!DOCTYPE html>\n<html><body><nav></nav><script>let a = 1;</script></body></html>", result.HTML)
	assert.Equal(t, "Pricing", result.Name)
	assert.Equal(t, "A pricing card", result.Description)
	assert.Equal(t, []string{"Navigation", "Mobile Responsive"}, result.Features)
	assert.Equal(t, types.InputText, result.Metadata.InputType)
	assert.Equal(t, "fake-model", result.Metadata.AIModel)
	assert.Equal(t, req, result.Metadata.Requirements)
	assert.Contains(t, result.Metadata.Context, "- two tiers")
	assert.Empty(t, result.Metadata.ScriptWarnings)
	assert.GreaterOrEqual(t, result.Metadata.GenerationTime, int64(0))
	assert.False(t, result.CreatedAt.IsZero())

	id, err := uuid.Parse(result.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	require.Len(t, model.calls, 1)
	prompt := model.calls[0][0].Text
	assert.Contains(t, prompt, "Responsive design: true")
	assert.Contains(t, prompt, "Framework: tailwind")
	require.NotNil(t, model.opts[0].Temperature)
	assert.InDelta(t, 0.7, *model.opts[0].Temperature, 0.0001)
	assert.Equal(t, 4000, model.opts[0].MaxOutputTokens)

	var stages []types.Stage
	var values []int
	for _, p := range progress {
		stages = append(stages, p.Stage)
		values = append(values, p.Progress)
	}
	assert.Equal(t, []types.Stage{types.StageAnalyzing, types.StageGenerating, types.StageValidating, types.StageComplete}, stages)
	assert.Equal(t, []int{10, 40, 70, 100}, values)
}

func TestGenerateHTML_ScriptWarnings(t *testing.T) {
	model := newFakeModel(&Output{Text: "<!DOCTYPE html><html><script>if (</script></html>"})
	g := NewGenerator(model, nil, DefaultSettings())

	result, err := g.GenerateHTML(context.Background(), types.TextInput{Description: "x"}, types.GenerationRequirements{Name: "x"}, nil)
	require.NoError(t, err)
	assert.Len(t, result.Metadata.ScriptWarnings, 1)
}

func TestGenerateHTML_NotConfigured(t *testing.T) {
	model := &fakeModel{name: "fake-model"}
	g := NewGenerator(model, nil, DefaultSettings())
	var progress progressLog

	_, err := g.GenerateHTML(context.Background(), types.TextInput{Description: "x"}, types.GenerationRequirements{Name: "x"}, &progress)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Empty(t, model.calls)
}

func TestGenerateHTML_EmptyAnswer(t *testing.T) {
	for _, text := range []string{"", "  \n", "```html\n```"} {
		g := NewGenerator(newFakeModel(&Output{Text: text}), nil, DefaultSettings())
		var progress progressLog

		result, err := g.GenerateHTML(context.Background(), types.TextInput{Description: "x"}, types.GenerationRequirements{Name: "x"}, &progress)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrEmptyResponse, "answer %q", text)
		require.NotEmpty(t, progress)
		assert.Equal(t, types.StageError, progress[len(progress)-1].Stage)
	}
}

func TestGenerateHTML_ProviderFailure(t *testing.T) {
	model := newFakeModel()
	model.err = &ProviderStatusError{Provider: "gemini", StatusCode: 500, Status: "500 Internal Server Error"}
	g := NewGenerator(model, nil, DefaultSettings())
	var progress progressLog

	result, err := g.GenerateHTML(context.Background(), types.TextInput{Description: "x"}, types.GenerationRequirements{Name: "x"}, &progress)
	assert.Nil(t, result)

	var statusErr *ProviderStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 500, statusErr.StatusCode)

	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	assert.Equal(t, types.StageError, last.Stage)
	assert.Equal(t, 0, last.Progress)
	assert.True(t, strings.HasPrefix(last.Message, "Error: "))
}

func TestGenerateImage(t *testing.T) {
	imageModel := newFakeModel(&Output{Images: []InlineImage{{MIMEType: "image/png", Data: []byte("png")}}})
	imageModel.name = "image-model"
	g := NewGenerator(newFakeModel(), imageModel, DefaultSettings())

	result, err := g.GenerateImage(context.Background(), types.ImageRequest{
		Prompt:    "a logo",
		Reference: &types.ImageInput{Data: []byte("ref"), MIMEType: "image/jpeg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,cG5n", result.DataURI)
	assert.Equal(t, "image-model", result.Model)

	require.Len(t, imageModel.calls, 1)
	require.Len(t, imageModel.calls[0], 2)
	assert.Equal(t, "image/jpeg", imageModel.calls[0][0].MIMEType)
	assert.Equal(t, "a logo", imageModel.calls[0][1].Text)
	assert.True(t, imageModel.opts[0].WantImage)
}

func TestGenerateImage_TextOnly(t *testing.T) {
	g := NewGenerator(newFakeModel(&Output{Text: "I can only describe it"}), nil, DefaultSettings())
	result, err := g.GenerateImage(context.Background(), types.ImageRequest{Prompt: "a logo"})
	require.NoError(t, err)
	assert.Empty(t, result.DataURI)
	assert.Equal(t, "I can only describe it", result.Text)
}

func TestGenerateImage_Errors(t *testing.T) {
	g := NewGenerator(&fakeModel{}, nil, DefaultSettings())
	_, err := g.GenerateImage(context.Background(), types.ImageRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	model := newFakeModel()
	model.err = errors.New("boom")
	g = NewGenerator(model, nil, DefaultSettings())
	_, err = g.GenerateImage(context.Background(), types.ImageRequest{Prompt: "x"})
	assert.ErrorContains(t, err, "boom")

	_, err = g.GenerateImage(context.Background(), types.ImageRequest{})
	assert.Error(t, err)
}
