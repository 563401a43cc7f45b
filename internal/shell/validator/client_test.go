package validator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/tenant"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient(Config{
		BaseURL: "http://localhost:8000/v1/",
		Timeout: 5 * time.Second,
	}, slog.Default())

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8000/v1", client.baseURL)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:8000"}, nil)

	assert.Equal(t, 3*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.logger)
}

func TestClient_Validate_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/tenant/validate", r.URL.Path)
		assert.Equal(t, "acme.platform.com", r.URL.Query().Get("host"))
		assert.Equal(t, "acme", r.URL.Query().Get("slug"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"valid": true,
			"tenant": map[string]string{
				"id":   "t_123",
				"name": "Acme Homes",
				"slug": "acme",
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/v1"}, nil)

	res, err := client.Validate(context.Background(), "acme.platform.com", "acme")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	require.NotNil(t, res.Tenant)
	assert.Equal(t, tenant.Identity{ID: "t_123", Name: "Acme Homes", Slug: "acme"}, *res.Tenant)
}

func TestClient_Validate_OmitsEmptySlug(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom-coop.org", r.URL.Query().Get("host"))
		_, hasSlug := r.URL.Query()["slug"]
		assert.False(t, hasSlug)
		w.Write([]byte(`{"valid": true}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, nil)

	res, err := client.Validate(context.Background(), "custom-coop.org", "")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Nil(t, res.Tenant)
}

func TestClient_Validate_PropagatesRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get("X-Request-ID"))
		w.Write([]byte(`{"valid": false}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, nil)
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")

	_, err := client.Validate(ctx, "acme.platform.com", "acme")
	require.NoError(t, err)
}

func TestClient_Validate_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"valid false", http.StatusOK, `{"valid": false}`},
		{"404", http.StatusNotFound, `{"message": "Tenant not found"}`},
		{"500", http.StatusInternalServerError, `oops`},
		{"malformed json", http.StatusOK, `{"valid": tru`},
		{"empty body", http.StatusOK, ``},
		{"html body", http.StatusOK, `<html>login</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Config{BaseURL: server.URL}, nil)

			res, err := client.Validate(context.Background(), "custom-coop.org", "")
			require.NoError(t, err)
			assert.False(t, res.Valid)
			assert.Nil(t, res.Tenant)
		})
	}
}

func TestClient_Validate_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Config{BaseURL: url}, nil)

	_, err := client.Validate(context.Background(), "acme.platform.com", "acme")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestClient_Validate_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, nil)

	start := time.Now()
	_, err := client.Validate(context.Background(), "acme.platform.com", "acme")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_Validate_InvalidBaseURL(t *testing.T) {
	client := NewClient(Config{BaseURL: "://bad"}, nil)

	_, err := client.Validate(context.Background(), "acme.platform.com", "acme")
	assert.True(t, errors.Is(err, ErrUnavailable))
}
