package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/cortexvoice/internal/prosody"
)

func TestOllamaRespond(t *testing.T) {
	var got ollamaGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		resp := ollamaGenerateResponse{
			Model:    got.Model,
			Response: `{"text": "All good here.", "emotion": "energetic"}`,
			Done:     true,
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	r := NewOllamaResponder(zerolog.Nop(), &Config{OllamaURL: server.URL})

	reply, err := r.Respond(context.Background(), "How is it going?")
	require.NoError(t, err)
	assert.Equal(t, "All good here.", reply.Text)
	assert.Equal(t, prosody.EmotionEnergetic, reply.Emotion)

	assert.Equal(t, defaultOllamaModel, got.Model)
	assert.Equal(t, "How is it going?", got.Prompt)
	assert.Equal(t, systemPrompt, got.System)
	assert.Equal(t, "json", got.Format)
	assert.False(t, got.Stream)
	assert.InDelta(t, 0.7, got.Options.Temperature, 1e-9)
}

func TestOllamaRespondServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "model not found"}`))
	}))
	defer server.Close()

	r := NewOllamaResponder(zerolog.Nop(), &Config{OllamaURL: server.URL})

	_, err := r.Respond(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "model not found")
}

func TestOllamaRespondUnparseableReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := ollamaGenerateResponse{Response: "definitely not json", Done: true}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	r := NewOllamaResponder(zerolog.Nop(), &Config{OllamaURL: server.URL})

	_, err := r.Respond(context.Background(), "hello")
	require.Error(t, err)
}

func TestOllamaAvailable(t *testing.T) {
	t.Run("with models", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"models": [{"name": "llama3.2"}]}`))
		}))
		defer server.Close()

		r := NewOllamaResponder(zerolog.Nop(), &Config{OllamaURL: server.URL})
		assert.True(t, r.Available(context.Background()))
	})

	t.Run("no models", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"models": []}`))
		}))
		defer server.Close()

		r := NewOllamaResponder(zerolog.Nop(), &Config{OllamaURL: server.URL})
		assert.False(t, r.Available(context.Background()))
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		r := NewOllamaResponder(zerolog.Nop(), &Config{OllamaURL: server.URL})
		assert.False(t, r.Available(context.Background()))
	})
}
