package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is used when API_BASE_URL is not set.
const DefaultBaseURL = "http://localhost:5000"

// Client calls the authentication backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new auth API client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Credentials is the JSON body of both endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type signupResponse struct {
	Message string `json:"message"`
	Success *bool  `json:"success,omitempty"`
}

// APIError is a non-2xx answer. Message is the backend's text, meant to be shown verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth API returned %d: %s", e.StatusCode, e.Message)
}

// SignIn posts the credentials to /api/signin and returns the session token.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	var out signinResponse
	if err := c.post(ctx, "/api/signin", Credentials{Email: email, Password: password}, &out, "Sign in failed"); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", &APIError{StatusCode: http.StatusBadGateway, Message: "Sign in failed"}
	}
	return out.Token, nil
}

// SignUp posts the credentials to /api/signup and returns the backend's success message.
func (c *Client) SignUp(ctx context.Context, email, password string) (string, error) {
	var out signupResponse
	if err := c.post(ctx, "/api/signup", Credentials{Email: email, Password: password}, &out, "Signup failed"); err != nil {
		return "", err
	}
	if out.Success != nil && !*out.Success {
		msg := out.Message
		if msg == "" {
			msg = "Signup failed"
		}
		return "", &APIError{StatusCode: http.StatusOK, Message: msg}
	}
	if out.Message == "" {
		return "Account created successfully!", nil
	}
	return out.Message, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any, fallback string) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to auth API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &errBody)
		msg := errBody.Message
		if msg == "" {
			msg = fallback
		}
		log.Printf("auth API %s returned %s", path, resp.Status)
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	return nil
}
