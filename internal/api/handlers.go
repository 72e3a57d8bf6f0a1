package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode/utf8"

	"ui_forge_server/internal/ai"
	"ui_forge_server/internal/auth"
	"ui_forge_server/internal/publish"
	"ui_forge_server/internal/session"
	"ui_forge_server/internal/types"
	"ui_forge_server/internal/utils"

	"github.com/gin-gonic/gin"
)

// MaxImageBytes bounds uploaded images.
const MaxImageBytes = 10 << 20

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	models        *ai.Registry
	authClient    *auth.Client
	sessions      *session.Store
	publisher     publish.Publisher
	maxInputChars int
}

// NewAPIHandler initializes a new API handler with its dependencies.
// maxInputChars <= 0 disables the free-text length cap.
func NewAPIHandler(
	models *ai.Registry,
	authCli *auth.Client,
	sessions *session.Store,
	publisher publish.Publisher,
	maxInputChars int,
) *APIHandler {
	return &APIHandler{
		models:        models,
		authClient:    authCli,
		sessions:      sessions,
		publisher:     publisher,
		maxInputChars: maxInputChars,
	}
}

// --- Structs for API Requests/Responses ---

type InputRequest struct {
	Type         string   `json:"type" binding:"required,oneof=figma text"`
	Description  string   `json:"description"`
	URL          string   `json:"url"`
	Requirements []string `json:"requirements"`
}

// ModelChoice optionally overrides the configured provider and model.
type ModelChoice struct {
	Provider string `json:"provider" form:"provider"`
	Model    string `json:"model" form:"model"`
}

type GenerateHTMLRequest struct {
	ModelChoice
	Name        string       `json:"name"`
	Framework   string       `json:"framework"`
	Responsive  bool         `json:"responsive"`
	Animations  bool         `json:"animations"`
	Interactive bool         `json:"interactive"`
	Input       InputRequest `json:"input" binding:"required"`
}

type GenerateFromImageForm struct {
	ModelChoice
	Name        string `form:"name"`
	Framework   string `form:"framework"`
	Responsive  bool   `form:"responsive"`
	Animations  bool   `form:"animations"`
	Interactive bool   `form:"interactive"`
	Description string `form:"description"`
}

type GenerateImageForm struct {
	ModelChoice
	Prompt string `form:"prompt"`
}

// --- API Handlers ---

// POST /generate/html
func (h *APIHandler) GenerateHTML(c *gin.Context) {
	var req GenerateHTMLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	requirements, ok := h.requirements(c, req.Name, req.Framework, req.Responsive, req.Animations, req.Interactive)
	if !ok {
		return
	}
	generator, ok := h.generator(c, req.ModelChoice)
	if !ok {
		return
	}

	var input types.GenerationInput
	switch req.Input.Type {
	case string(types.InputFigma):
		if strings.TrimSpace(req.Input.URL) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a Figma URL"})
			return
		}
		description := req.Input.Description
		if description == "" {
			description = "Figma design: " + req.Input.URL
		}
		input = types.DesignInput{URL: req.Input.URL, Description: description}
	case string(types.InputText):
		if strings.TrimSpace(req.Input.Description) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a description"})
			return
		}
		input = types.TextInput{Description: req.Input.Description, Requirements: nonBlank(req.Input.Requirements)}
	}

	fields := append([]string{req.Input.Description, req.Input.URL}, req.Input.Requirements...)
	if !h.withinLimit(c, fields...) {
		return
	}

	h.runGeneration(c, generator, input, requirements)
}

// POST /generate/html/image
func (h *APIHandler) GenerateHTMLFromImage(c *gin.Context) {
	var form GenerateFromImageForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	requirements, ok := h.requirements(c, form.Name, form.Framework, form.Responsive, form.Animations, form.Interactive)
	if !ok {
		return
	}
	generator, ok := h.generator(c, form.ModelChoice)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select an image"})
		return
	}
	img, err := readImage(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	img.Description = form.Description
	if !h.withinLimit(c, form.Description) {
		return
	}

	h.runGeneration(c, generator, *img, requirements)
}

// POST /generate/image
func (h *APIHandler) GenerateImage(c *gin.Context) {
	var form GenerateImageForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(form.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a prompt"})
		return
	}
	if !h.withinLimit(c, form.Prompt) {
		return
	}
	generator, ok := h.generator(c, form.ModelChoice)
	if !ok {
		return
	}

	req := types.ImageRequest{Prompt: form.Prompt}
	if fileHeader, err := c.FormFile("reference"); err == nil {
		img, err := readImage(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Reference = img
	}

	result, err := generator.GenerateImage(c.Request.Context(), req)
	if err != nil {
		writeGenerationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *APIHandler) runGeneration(c *gin.Context, generator *ai.Generator, input types.GenerationInput, requirements types.GenerationRequirements) {
	ctrl := currentSession(c)
	log.Printf("Received %s generation request %q for session %s (model %s)", input.Kind(), requirements.Name, ctrl.ID, generator.ModelName())

	result, err := generator.GenerateHTML(c.Request.Context(), input, requirements, ctrl)
	if err != nil {
		log.Printf("Error generating HTML for session %s: %v", ctrl.ID, err)
		writeGenerationError(c, err)
		return
	}

	ctrl.SetResult(result)
	log.Printf("HTML generation successful for session %s. Result ID: %s (%d ms)", ctrl.ID, result.ID, result.Metadata.GenerationTime)
	c.JSON(http.StatusCreated, result)
}

// generator resolves the per-request model choice. Unknown providers and
// malformed model names are client errors.
func (h *APIHandler) generator(c *gin.Context, choice ModelChoice) (*ai.Generator, bool) {
	g, err := h.models.Generator(choice.Provider, strings.TrimSpace(choice.Model))
	if err != nil {
		if errors.Is(err, ai.ErrUnknownProvider) || errors.Is(err, ai.ErrInvalidModel) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			log.Printf("Error building model %s/%s: %v", choice.Provider, choice.Model, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initialize AI provider"})
		}
		return nil, false
	}
	return g, true
}

func (h *APIHandler) requirements(c *gin.Context, name, framework string, responsive, animations, interactive bool) (types.GenerationRequirements, bool) {
	if strings.TrimSpace(name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a component name"})
		return types.GenerationRequirements{}, false
	}
	fw, err := types.ParseFramework(framework)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return types.GenerationRequirements{}, false
	}
	if !h.withinLimit(c, name) {
		return types.GenerationRequirements{}, false
	}
	return types.GenerationRequirements{
		Name:        name,
		Framework:   fw,
		Responsive:  responsive,
		Animations:  animations,
		Interactive: interactive,
	}, true
}

// withinLimit rejects free text longer than maxInputChars runes. Text is not escaped.
func (h *APIHandler) withinLimit(c *gin.Context, fields ...string) bool {
	if h.maxInputChars <= 0 {
		return true
	}
	for _, f := range fields {
		if utf8.RuneCountInString(f) > h.maxInputChars {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Input exceeds %d characters", h.maxInputChars)})
			return false
		}
	}
	return true
}

func readImage(fileHeader *multipart.FileHeader) (*types.ImageInput, error) {
	if fileHeader.Size > MaxImageBytes {
		return nil, fmt.Errorf("image is larger than %d MB", MaxImageBytes>>20)
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("image is larger than %d MB", MaxImageBytes>>20)
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !utils.IsImageType(mimeType) {
		mimeType = utils.DetermineImageType(fileHeader.Filename, data)
	}
	if !utils.IsImageType(mimeType) {
		return nil, errors.New("Please select a valid image file")
	}
	return &types.ImageInput{Data: data, MIMEType: mimeType, FileName: fileHeader.Filename}, nil
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// writeGenerationError maps pipeline failures to a status and a user-facing message.
func writeGenerationError(c *gin.Context, err error) {
	var statusErr *ai.ProviderStatusError
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": ai.ErrNotConfigured.Error()})
	case errors.Is(err, ai.ErrUnsupportedInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &statusErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("AI provider error: %d", statusErr.StatusCode)})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Generation failed. Please try again."})
	}
}

// GET /providers
func (h *APIHandler) ListProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.models.Providers()})
}

// ModelName reports the configured generation model, for health checks.
func (h *APIHandler) ModelName() string { return h.models.Default().ModelName() }

// Configured reports whether generation requests can reach a provider.
func (h *APIHandler) Configured() bool { return h.models.Default().Configured() }
