package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"ui_forge_server/internal/auth"
	"ui_forge_server/internal/session"

	"github.com/gin-gonic/gin"
)

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// POST /auth/signin
func (h *APIHandler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := auth.ValidateSignin(req.Email, req.Password); err != nil {
		writeAuthError(c, err)
		return
	}

	token, err := h.authClient.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	currentSession(c).Set(session.TokenKey, token)
	c.JSON(http.StatusOK, gin.H{"message": "Sign in successful!", "token": token})
}

// POST /auth/signup
func (h *APIHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := auth.ValidateSignup(req.Email, req.Password, req.ConfirmPassword); err != nil {
		writeAuthError(c, err)
		return
	}

	msg, err := h.authClient.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// POST /auth/signout
func (h *APIHandler) Signout(c *gin.Context) {
	currentSession(c).Delete(session.TokenKey)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// GET /auth/me
func (h *APIHandler) Me(c *gin.Context) {
	token := currentSession(c).Token()
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
		return
	}
	info, err := auth.InspectToken(token, time.Now())
	if err != nil {
		// Opaque tokens are fine, there is just nothing to show.
		c.JSON(http.StatusOK, gin.H{"authenticated": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": !info.Expired, "token": info})
}

func writeAuthError(c *gin.Context, err error) {
	var validationErr *auth.ValidationError
	var apiErr *auth.APIError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < 400 {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": apiErr.Message})
	default:
		log.Printf("Auth request failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Network error. Please try again."})
	}
}
