package ai

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"ui_forge_server/internal/ai/prompts"
	"ui_forge_server/internal/types"
)

var figmaFileID = regexp.MustCompile(`figma\.com/file/([a-zA-Z0-9]+)`)

// ExtractFigmaID returns the file key of a Figma URL, or "unknown".
func ExtractFigmaID(url string) string {
	if m := figmaFileID.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return "unknown"
}

// AnalyzeInput turns any input variant into the context string fed to the prompt.
// Only image inputs reach the model.
func (g *Generator) AnalyzeInput(ctx context.Context, input types.GenerationInput) (string, error) {
	switch in := input.(type) {
	case types.DesignInput:
		return analyzeDesignInput(in), nil
	case types.ImageInput:
		return g.analyzeImageInput(ctx, in)
	case types.TextInput:
		return analyzeTextInput(in), nil
	case nil:
		return "", &UnsupportedInputError{}
	default:
		return "", &UnsupportedInputError{Kind: input.Kind()}
	}
}

func analyzeDesignInput(in types.DesignInput) string {
	return fmt.Sprintf("Figma design with ID: %s. Create an HTML page based on this Figma design. %s", ExtractFigmaID(in.URL), in.Description)
}

func analyzeTextInput(in types.TextInput) string {
	return fmt.Sprintf("%s\n\nAdditional requirements:\n- %s", in.Description, strings.Join(in.Requirements, "\n- "))
}

func (g *Generator) analyzeImageInput(ctx context.Context, in types.ImageInput) (string, error) {
	if len(in.Data) == 0 {
		return "", fmt.Errorf("image input has no data")
	}
	mimeType := in.MIMEType
	if mimeType == "" {
		mimeType = http.DetectContentType(in.Data)
	}

	out, err := g.model.Generate(ctx, []Part{
		TextPart(prompts.ImageAnalysisPrompt(in.Description)),
		ImagePart(mimeType, in.Data),
	}, GenerateOptions{})
	if err != nil {
		return "", fmt.Errorf("image analysis failed: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("image analysis failed: %w", ErrEmptyResponse)
	}
	return out.Text, nil
}
