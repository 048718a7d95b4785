package score

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillflow/tillflow/internal/common"
)

func geminiServer(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "contents")

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
			},
		})
	}))
}

func newTestClient(t *testing.T, baseURL string) Client {
	t.Helper()
	client, err := NewGeminiClient(Config{APIKey: "test-key", BaseURL: baseURL})
	require.NoError(t, err)
	return client
}

func TestGeminiScore(t *testing.T) {
	ctx := context.Background()

	t.Run("requires api key", func(t *testing.T) {
		_, err := NewGeminiClient(Config{})
		require.Error(t, err)
	})

	t.Run("parses a clean grade", func(t *testing.T) {
		server := geminiServer(t, http.StatusOK, "A")
		defer server.Close()

		grade, err := newTestClient(t, server.URL).Score(ctx, "Water", "Drinks", "Still")
		require.NoError(t, err)
		assert.Equal(t, "A", grade)
	})

	t.Run("normalizes whitespace and case", func(t *testing.T) {
		server := geminiServer(t, http.StatusOK, " e\n")
		defer server.Close()

		grade, err := newTestClient(t, server.URL).Score(ctx, "Soda", "Drinks", "Cold")
		require.NoError(t, err)
		assert.Equal(t, "E", grade)
	})

	t.Run("rejects chatty responses", func(t *testing.T) {
		server := geminiServer(t, http.StatusOK, "The score is B")
		defer server.Close()

		_, err := newTestClient(t, server.URL).Score(ctx, "Wrap", "Food", "Wraps")
		require.Error(t, err)
	})

	t.Run("maps 429 to the rate limit error", func(t *testing.T) {
		server := geminiServer(t, http.StatusTooManyRequests, "C")
		defer server.Close()

		_, err := newTestClient(t, server.URL).Score(ctx, "Wrap", "Food", "Wraps")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrRateLimit)
	})

	t.Run("maps server errors to the unavailable error", func(t *testing.T) {
		server := geminiServer(t, http.StatusServiceUnavailable, "C")
		defer server.Close()

		_, err := newTestClient(t, server.URL).Score(ctx, "Wrap", "Food", "Wraps")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrScoreUnavailable)
	})

	t.Run("rejects empty candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
		}))
		defer server.Close()

		_, err := newTestClient(t, server.URL).Score(ctx, "Wrap", "Food", "Wraps")
		require.Error(t, err)
	})
}
