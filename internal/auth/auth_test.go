package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		confirm  string
		field    string
		message  string
	}{
		{"missing email", "", "secret1", "secret1", "email", "Please input your email!"},
		{"invalid email", "not-an-email", "secret1", "secret1", "email", "Please enter a valid email!"},
		{"missing password", "a@b.co", "", "", "password", "Please input your password!"},
		{"mismatch before length", "a@b.co", "abc", "abd", "confirmPassword", "Passwords do not match"},
		{"too short", "a@b.co", "abc", "abc", "password", "Password must be at least 6 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(tt.email, tt.password, tt.confirm)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, tt.message, vErr.Message)
		})
	}
	assert.NoError(t, ValidateSignup("a@b.co", "secret1", "secret1"))
}

func TestValidateSignin(t *testing.T) {
	assert.NoError(t, ValidateSignin("a@b.co", "x"))
	assert.EqualError(t, ValidateSignin("a@b.co", ""), "Please input your password!")
	assert.EqualError(t, ValidateSignin("", "x"), "Please input your email!")
}

func TestSignupMismatchNeverReachesNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()
	client := NewClient(srv.URL, srv.Client())

	for i := 0; i < 2; i++ {
		err := ValidateSignup("a@b.co", "password1", "password2")
		require.EqualError(t, err, "Passwords do not match")
		if err == nil {
			_, _ = client.SignUp(context.Background(), "a@b.co", "password1")
		}
	}
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestClient_SignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/signin", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var creds Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))

		if creds.Password != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok-123"}`))
	}))
	defer srv.Close()
	client := NewClient(srv.URL+"/", srv.Client())

	token, err := client.SignIn(context.Background(), "a@b.co", "right")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	_, err = client.SignIn(context.Background(), "a@b.co", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestClient_SignUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/signup", r.URL.Path)
		var creds Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		switch creds.Email {
		case "taken@b.co":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{}`))
		case "quiet@b.co":
			w.WriteHeader(http.StatusCreated)
		default:
			_, _ = w.Write([]byte(`{"message":"Welcome aboard"}`))
		}
	}))
	defer srv.Close()
	client := NewClient(srv.URL, srv.Client())

	msg, err := client.SignUp(context.Background(), "new@b.co", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome aboard", msg)

	msg, err = client.SignUp(context.Background(), "quiet@b.co", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Account created successfully!", msg)

	_, err = client.SignUp(context.Background(), "taken@b.co", "secret1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "Signup failed", apiErr.Message)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).SignIn(context.Background(), "a@b.co", "x")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.ErrorContains(t, err, "failed to send request to auth API")
}

func TestInspectToken(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "a@b.co",
		"exp":   exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	info, err := InspectToken(token, exp.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "user-1", info.Subject)
	assert.Equal(t, "a@b.co", info.Email)
	require.NotNil(t, info.ExpiresAt)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.False(t, info.Expired)

	info, err = InspectToken(token, exp.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, info.Expired)

	_, err = InspectToken("opaque-token", time.Now())
	assert.Error(t, err)
}
