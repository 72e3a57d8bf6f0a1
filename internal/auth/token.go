package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the server can tell about a token without the backend's key.
type TokenInfo struct {
	Subject   string         `json:"subject,omitempty"`
	Email     string         `json:"email,omitempty"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
	Expired   bool           `json:"expired"`
	Claims    map[string]any `json:"claims,omitempty"`
}

// InspectToken decodes a JWT without verifying its signature. Opaque tokens
// return an error; callers treat them as valid but unreadable.
func InspectToken(token string, now time.Time) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("token is not a JWT: %w", err)
	}

	info := &TokenInfo{Claims: claims}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		info.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
		info.Expired = now.After(t)
	}
	return info, nil
}
