package api

import (
	"bytes"
	"log"
	"net/http"

	"ui_forge_server/internal/ai/utils"
	"ui_forge_server/internal/session"
	"ui_forge_server/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"

	sessionContextKey = "session"
)

// SessionMiddleware attaches the caller's session controller to the request.
// The id comes from the X-Session-ID header or the session_id cookie; a new
// one is issued when neither is present.
func (h *APIHandler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			id, _ = c.Cookie(SessionCookie)
		}
		ctrl := h.sessions.Get(id)
		if ctrl.ID != id {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, ctrl.ID, 0, "/", "", false, true)
		}
		c.Header(SessionHeader, ctrl.ID)
		c.Set(sessionContextKey, ctrl)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Controller {
	return c.MustGet(sessionContextKey).(*session.Controller)
}

type UpdateResultRequest struct {
	HTML string `json:"html" binding:"required"`
	Name string `json:"name"`
}

type PublishResponse struct {
	Target   string `json:"target"`
	Location string `json:"location"`
}

// GET /session/result
func (h *APIHandler) GetResult(c *gin.Context) {
	result := currentSession(c).Result()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No generated HTML yet"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /session/result/preview
func (h *APIHandler) PreviewResult(c *gin.Context) {
	result := currentSession(c).Result()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No generated HTML yet"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(result.HTML))
}

// GET /session/result/analysis renders the context the page was generated from.
func (h *APIHandler) ResultAnalysis(c *gin.Context) {
	result := currentSession(c).Result()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No generated HTML yet"})
		return
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(result.Metadata.Context), &buf); err != nil {
		log.Printf("Error rendering analysis for result %s: %v", result.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render analysis"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// PUT /session/result saves an edited document; features are recomputed.
func (h *APIHandler) UpdateResult(c *gin.Context) {
	var req UpdateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	updated, ok := currentSession(c).UpdateResult(func(r *types.GenerationResult) {
		r.HTML = req.HTML
		if req.Name != "" {
			r.Name = req.Name
		}
		r.Features = utils.ExtractFeatures(r.HTML, r.Metadata.Requirements)
		r.Metadata.ScriptWarnings = utils.ValidateScripts(r.HTML)
	})
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No generated HTML yet"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /session/result
func (h *APIHandler) ResetResult(c *gin.Context) {
	currentSession(c).Reset()
	c.Status(http.StatusNoContent)
}

// POST /session/result/publish
func (h *APIHandler) PublishResult(c *gin.Context) {
	result := currentSession(c).Result()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No generated HTML yet"})
		return
	}

	location, err := h.publisher.Publish(c.Request.Context(), result)
	if err != nil {
		log.Printf("Error publishing result %s: %v", result.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to publish generated HTML"})
		return
	}
	c.JSON(http.StatusOK, PublishResponse{Target: h.publisher.Target(), Location: location})
}

// GET /session/progress
func (h *APIHandler) GetProgress(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Progress())
}
