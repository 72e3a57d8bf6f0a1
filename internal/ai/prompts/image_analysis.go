package prompts

import "fmt"

// ImageAnalysisPrompt asks the model to describe an uploaded design for recreation.
func ImageAnalysisPrompt(description string) string {
	if description == "" {
		description = "No additional description provided"
	}
	return fmt.Sprintf(`Analyze this UI/design image and describe its layout, components and visual elements in enough detail to recreate it in HTML/CSS. Cover:
1. Overall layout structure and sections
2. Visual styling (colors, typography, spacing, shadows)
3. Interactive elements (buttons, forms, navigation)
4. Images and media elements
5. Animations or hover effects that are visible or implied

Additional context: %s`, description)
}
