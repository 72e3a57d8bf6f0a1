package types

import (
	"fmt"
	"strings"
	"time"
)

// InputKind names the variant of a GenerationInput.
type InputKind string

const (
	InputFigma InputKind = "figma"
	InputImage InputKind = "image"
	InputText  InputKind = "text"
)

// GenerationInput is one of DesignInput, ImageInput or TextInput.
type GenerationInput interface {
	Kind() InputKind
	isGenerationInput()
}

// DesignInput references a design-tool file by URL. The design itself is never fetched.
type DesignInput struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ImageInput carries an uploaded screenshot or mockup.
type ImageInput struct {
	Data        []byte `json:"-"`
	MIMEType    string `json:"mimeType"`
	FileName    string `json:"fileName,omitempty"`
	Description string `json:"description,omitempty"`
}

// TextInput is a free-text description plus a list of extra requirements.
type TextInput struct {
	Description  string   `json:"description"`
	Requirements []string `json:"requirements,omitempty"`
}

func (DesignInput) Kind() InputKind { return InputFigma }
func (ImageInput) Kind() InputKind  { return InputImage }
func (TextInput) Kind() InputKind   { return InputText }

func (DesignInput) isGenerationInput() {}
func (ImageInput) isGenerationInput()  {}
func (TextInput) isGenerationInput()   {}

// Framework selects the styling approach of the generated page.
type Framework string

const (
	FrameworkVanilla   Framework = "vanilla"
	FrameworkTailwind  Framework = "tailwind"
	FrameworkBootstrap Framework = "bootstrap"
)

// ParseFramework accepts the three framework tokens, case-insensitively.
// An empty string selects vanilla.
func ParseFramework(s string) (Framework, error) {
	switch Framework(strings.ToLower(strings.TrimSpace(s))) {
	case "", FrameworkVanilla:
		return FrameworkVanilla, nil
	case FrameworkTailwind:
		return FrameworkTailwind, nil
	case FrameworkBootstrap:
		return FrameworkBootstrap, nil
	}
	return "", fmt.Errorf("unsupported framework %q (expected vanilla, tailwind or bootstrap)", s)
}

// GenerationRequirements are the structured options of one generation call.
type GenerationRequirements struct {
	Name        string    `json:"name"`
	Framework   Framework `json:"framework"`
	Responsive  bool      `json:"responsive"`
	Animations  bool      `json:"animations"`
	Interactive bool      `json:"interactive"`
}

// InputEcho is the JSON-safe copy of the original input kept in result metadata.
// Image bytes are summarized by size.
type InputEcho struct {
	Type         InputKind `json:"type"`
	Description  string    `json:"description,omitempty"`
	URL          string    `json:"url,omitempty"`
	Requirements []string  `json:"requirements,omitempty"`
	FileName     string    `json:"fileName,omitempty"`
	MIMEType     string    `json:"mimeType,omitempty"`
	Size         int       `json:"size,omitempty"`
}

// EchoInput builds the metadata echo for any input variant.
func EchoInput(in GenerationInput) InputEcho {
	switch v := in.(type) {
	case DesignInput:
		return InputEcho{Type: InputFigma, URL: v.URL, Description: v.Description}
	case ImageInput:
		return InputEcho{Type: InputImage, Description: v.Description, FileName: v.FileName, MIMEType: v.MIMEType, Size: len(v.Data)}
	case TextInput:
		return InputEcho{Type: InputText, Description: v.Description, Requirements: v.Requirements}
	}
	if in == nil {
		return InputEcho{}
	}
	return InputEcho{Type: in.Kind()}
}

// Description returns the user-supplied description of any input variant.
func Description(in GenerationInput) string {
	switch v := in.(type) {
	case DesignInput:
		return v.Description
	case ImageInput:
		return v.Description
	case TextInput:
		return v.Description
	}
	return ""
}

// GenerationMetadata records where a result came from.
type GenerationMetadata struct {
	InputType      InputKind              `json:"inputType"`
	OriginalInput  InputEcho              `json:"originalInput"`
	Requirements   GenerationRequirements `json:"requirements"`
	AIModel        string                 `json:"aiModel"`
	GenerationTime int64                  `json:"generationTime"` // milliseconds
	Context        string                 `json:"context"`
	ScriptWarnings []string               `json:"scriptWarnings,omitempty"`
}

// GenerationResult is the envelope returned by the HTML pipeline.
type GenerationResult struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	HTML        string             `json:"html"`
	Description string             `json:"description"`
	Features    []string           `json:"features"`
	CreatedAt   time.Time          `json:"createdAt"`
	Metadata    GenerationMetadata `json:"metadata"`
}

// Stage is a coarse pipeline milestone.
type Stage string

const (
	StageAnalyzing  Stage = "analyzing"
	StageGenerating Stage = "generating"
	StageValidating Stage = "validating"
	StageComplete   Stage = "complete"
	StageError      Stage = "error"
)

// Progress is a snapshot reported to observers.
type Progress struct {
	Stage    Stage  `json:"stage"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

// ImageRequest asks the provider for an image, optionally guided by a reference image.
type ImageRequest struct {
	Prompt    string
	Reference *ImageInput
}

// ImageResult holds either a data URI or, when the model answered in prose, its text.
type ImageResult struct {
	DataURI string `json:"dataUri,omitempty"`
	Text    string `json:"text,omitempty"`
	Model   string `json:"model"`
}
