package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ui_forge_server/internal/types"
)

func TestHTMLGenerationPrompt_TextInput(t *testing.T) {
	context := "A pricing card\n\nAdditional requirements:\n- two tiers"
	prompt := HTMLGenerationPrompt(context, types.GenerationRequirements{
		Name:       "Pricing",
		Framework:  types.FrameworkVanilla,
		Responsive: true,
	})

	assert.Contains(t, prompt, "Responsive design: true")
	assert.Contains(t, prompt, "- two tiers")
	assert.Contains(t, prompt, "Page/Component name: Pricing")
	assert.Contains(t, prompt, "Include animations: false")
	assert.Contains(t, prompt, "Implement responsive design with CSS media queries")
	assert.NotContains(t, prompt, "Include smooth CSS animations")
	assert.Contains(t, prompt, `<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
}

func TestHTMLGenerationPrompt_UserTextIsVerbatim(t *testing.T) {
	prompt := HTMLGenerationPrompt(`<script>alert("x")</script>`, types.GenerationRequirements{Name: "A & B"})
	assert.Contains(t, prompt, `<script>alert("x")</script>`)
	assert.Contains(t, prompt, "Page/Component name: A & B")
}

func TestFrameworkInstructions(t *testing.T) {
	assert.Contains(t, FrameworkInstructions(types.FrameworkTailwind), "https://cdn.tailwindcss.com")
	assert.Contains(t, FrameworkInstructions(types.FrameworkBootstrap), "bootstrap@5.3.0")
	assert.Equal(t, FrameworkInstructions(types.FrameworkVanilla), FrameworkInstructions("something-else"))
}

func TestImageAnalysisPrompt(t *testing.T) {
	assert.Contains(t, ImageAnalysisPrompt(""), "No additional description provided")
	assert.Contains(t, ImageAnalysisPrompt("dark theme"), "Additional context: dark theme")
}
