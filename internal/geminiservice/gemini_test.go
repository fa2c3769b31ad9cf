package geminiservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"Walkmate_V0.1/internal/assistant"
	"Walkmate_V0.1/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateBody(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
}

func newTestClient(srv *httptest.Server, retries int) *Client {
	return NewClient(config.GeminiConfig{
		APIKey:            "key",
		Model:             "test-model",
		BaseURL:           srv.URL,
		MaxRetries:        retries,
		RequestsPerSecond: 1000,
		StructuredOutput:  true,
	}, WithHTTPClient(srv.Client()), WithBackoff(time.Millisecond))
}

func TestClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))

		var payload GeminiPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		if assert.Len(t, payload.Contents, 1) {
			assert.Equal(t, "hello", payload.Contents[0].Parts[0].Text)
		}

		_ = json.NewEncoder(w).Encode(candidateBody(`{"intent":"greeting"}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv, 3).Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"intent":"greeting"}`, got)
}

func TestClient_Generate_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(candidateBody("ok"))
	}))
	defer srv.Close()

	got, err := newTestClient(srv, 3).Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Generate_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 3).Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Generate_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 2).Generate(context.Background(), "p")
	require.ErrorIs(t, err, ErrNoContent)
}

func TestClient_Generate_MissingKey(t *testing.T) {
	c := NewClient(config.GeminiConfig{Model: "m", BaseURL: "http://unused"})
	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)
}

func TestClient_GenerateFor_SendsSchema(t *testing.T) {
	tests := []struct {
		family assistant.Family
		schema *Schema
	}{
		{assistant.FamilyStructured, RecommendationSchema},
		{assistant.FamilyRoute, RouteSchema},
		{assistant.FamilyFreeText, nil},
	}

	for _, tt := range tests {
		t.Run(tt.family.String(), func(t *testing.T) {
			var got GeminiPayload
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				_ = json.NewEncoder(w).Encode(candidateBody("{}"))
			}))
			defer srv.Close()

			_, err := newTestClient(srv, 1).GenerateFor(context.Background(), tt.family, "prompt")
			require.NoError(t, err)

			if tt.schema == nil {
				assert.Nil(t, got.GenerationConfig)
				return
			}
			require.NotNil(t, got.GenerationConfig)
			assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
			assert.Equal(t, tt.schema.Required, got.GenerationConfig.ResponseSchema.Required)
		})
	}
}

func TestClient_GenerateFor_Disabled(t *testing.T) {
	var got GeminiPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(candidateBody("{}"))
	}))
	defer srv.Close()

	c := newTestClient(srv, 1)
	c.structured = false

	_, err := c.GenerateFor(context.Background(), assistant.FamilyStructured, "prompt")
	require.NoError(t, err)
	assert.Nil(t, got.GenerationConfig)
}
