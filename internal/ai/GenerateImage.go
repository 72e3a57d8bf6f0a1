package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"ui_forge_server/internal/types"
	"ui_forge_server/internal/utils"
)

// GenerateImage asks the image model for a picture. The first returned image
// becomes a data URI; a text-only answer is passed through as text.
func (g *Generator) GenerateImage(ctx context.Context, req types.ImageRequest) (*types.ImageResult, error) {
	if !g.imageModel.Configured() {
		return nil, ErrNotConfigured
	}
	if req.Prompt == "" {
		return nil, errors.New("image prompt is empty")
	}

	var parts []Part
	if ref := req.Reference; ref != nil && len(ref.Data) > 0 {
		mimeType := ref.MIMEType
		if mimeType == "" {
			mimeType = http.DetectContentType(ref.Data)
		}
		parts = append(parts, ImagePart(mimeType, ref.Data))
	}
	parts = append(parts, TextPart(req.Prompt))

	out, err := g.imageModel.Generate(ctx, parts, GenerateOptions{WantImage: true})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	result := &types.ImageResult{Model: g.imageModel.Name()}
	if len(out.Images) > 0 {
		img := out.Images[0]
		result.DataURI = utils.DataURI(img.MIMEType, img.Data)
		return result, nil
	}
	result.Text = out.Text
	return result, nil
}
