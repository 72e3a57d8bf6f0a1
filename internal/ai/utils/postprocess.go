package utils

import (
	"regexp"
	"strings"

	"ui_forge_server/internal/types"
)

const doctype = "<!DOCTYPE html>"

var htmlFenceOpen = regexp.MustCompile("```html\\n?")

// CleanHTML strips markdown code fences from raw model output, trims it and
// prepends a doctype when the document starts at <html> without one. Output
// that starts with anything else is returned as is.
func CleanHTML(raw string) string {
	cleaned := htmlFenceOpen.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	lower := strings.ToLower(cleaned)
	if !strings.HasPrefix(lower, strings.ToLower(doctype)) && strings.HasPrefix(lower, "<html") {
		cleaned = doctype + "\n" + cleaned
	}
	return cleaned
}

type featureCheck struct {
	name     string
	keywords []string
}

// Order matters: it is the order of the returned tags.
var featureChecks = []featureCheck{
	{"Navigation", []string{"<nav", "navigation"}},
	{"Forms", []string{"<form", "input"}},
	{"Interactive Elements", []string{"<button", "onclick"}},
	{"Responsive Design", []string{"@media", "responsive"}},
	{"Animations", []string{"animation", "transition"}},
	{"Images", []string{"<img", "background-image"}},
	{"Modern Layout", []string{"grid", "flexbox", "flex"}},
	{"JavaScript Functionality", []string{"addEventListener", "function"}},
}

// ExtractFeatures tags a document by keyword presence and by the requested
// options. Duplicates are dropped, keeping first-seen order.
func ExtractFeatures(html string, req types.GenerationRequirements) []string {
	var features []string
	for _, check := range featureChecks {
		for _, kw := range check.keywords {
			if strings.Contains(html, kw) {
				features = append(features, check.name)
				break
			}
		}
	}

	if req.Responsive {
		features = append(features, "Mobile Responsive")
	}
	if req.Animations {
		features = append(features, "CSS Animations")
	}
	if req.Interactive {
		features = append(features, "User Interactions")
	}

	seen := make(map[string]struct{}, len(features))
	unique := make([]string, 0, len(features))
	for _, f := range features {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		unique = append(unique, f)
	}
	return unique
}
