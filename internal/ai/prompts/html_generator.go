package prompts

import (
	"fmt"
	"strings"

	"ui_forge_server/internal/types"
)

// FrameworkInstructions returns the fixed instruction block for a framework.
// Unknown values fall back to the vanilla block.
func FrameworkInstructions(framework types.Framework) string {
	switch framework {
	case types.FrameworkBootstrap:
		return `- Use the Bootstrap 5 CSS framework loaded from a CDN
- Include Bootstrap CSS: <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
- Include Bootstrap JS when components need it: <script src="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/js/bootstrap.bundle.min.js"></script>
- Build layout, components and utilities from Bootstrap classes
- Follow Bootstrap component patterns and its design system`
	case types.FrameworkTailwind:
		return `- Use Tailwind CSS loaded from a CDN
- Include Tailwind: <script src="https://cdn.tailwindcss.com"></script>
- Style everything with Tailwind utility classes
- Use Tailwind responsive prefixes for breakpoints
- Stay within Tailwind's color palette and spacing scale`
	default:
		return `- Use plain HTML, CSS and JavaScript with no external framework
- Write custom CSS using Grid, Flexbox and CSS custom properties
- Drive the theme from CSS variables
- Use CSS media queries for responsive behaviour
- Keep the page self-contained and framework-free`
	}
}

// HTMLGenerationPrompt composes the single instruction sent to the model.
// User text is interpolated as is.
func HTMLGenerationPrompt(context string, req types.GenerationRequirements) string {
	var optional strings.Builder
	if req.Responsive {
		optional.WriteString("- Implement responsive design with CSS media queries\n")
	}
	if req.Animations {
		optional.WriteString("- Include smooth CSS animations and transitions\n")
	}
	if req.Interactive {
		optional.WriteString("- Add JavaScript for interactive functionality\n")
	}

	return fmt.Sprintf(`You are an expert web developer. Build one complete, standalone HTML document from the description below.

CONTEXT:
%s

REQUIREMENTS:
- Page/Component name: %s
- Framework: %s
- Responsive design: %t
- Include animations: %t
- Interactive elements: %t

TECHNICAL REQUIREMENTS:
- Produce exactly ONE HTML file with everything inline
- Put ALL CSS in <style> tags inside <head>
- Put ALL JavaScript in <script> tags when scripting is needed
- Use semantic HTML5 elements
- The page must work on its own without a build step
- Add <meta name="viewport" content="width=device-width, initial-scale=1.0">
%s
FRAMEWORK INSTRUCTIONS:
%s

IMPORTANT:
- Return ONLY the HTML code, with no explanation around it
- No external dependencies except CDN links the framework requires
- Start with <!DOCTYPE html> and set the lang attribute on <html>

Generate the complete HTML file:`,
		context,
		req.Name,
		req.Framework,
		req.Responsive,
		req.Animations,
		req.Interactive,
		optional.String(),
		FrameworkInstructions(req.Framework),
	)
}
