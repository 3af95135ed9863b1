package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIName(t *testing.T) {
	p := NewOpenAIProvider(zerolog.Nop(), &OpenAIConfig{APIKey: "test-key"})
	assert.Equal(t, "openai", p.Name())
}

func TestOpenAIUnavailableWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	p := NewOpenAIProvider(zerolog.Nop(), &OpenAIConfig{})
	assert.False(t, p.IsAvailable())

	err := p.Synthesize(context.Background(), &Request{
		Text:       "hello",
		OutputPath: filepath.Join(t.TempDir(), "out.wav"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenAISynthesize(t *testing.T) {
	fakeAudio := []byte("RIFF fake wav payload")

	var got openAISpeechRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(fakeAudio)
	}))
	defer server.Close()

	p := NewOpenAIProvider(zerolog.Nop(), &OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	require.True(t, p.IsAvailable())

	outPath := filepath.Join(t.TempDir(), "out.wav")
	err := p.Synthesize(context.Background(), &Request{
		Text:       "Hello world",
		OutputPath: outPath,
		Rate:       350,
		Volume:     1.0,
	})
	require.NoError(t, err)

	assert.Equal(t, "tts-1", got.Model)
	assert.Equal(t, "Hello world", got.Input)
	assert.Equal(t, "nova", got.Voice)
	assert.Equal(t, "wav", got.ResponseFormat)
	assert.InDelta(t, 2.0, got.Speed, 1e-9)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, fakeAudio, data)
}

func TestOpenAISynthesizeRequestVoice(t *testing.T) {
	var got openAISpeechRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("audio"))
	}))
	defer server.Close()

	p := NewOpenAIProvider(zerolog.Nop(), &OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	err := p.Synthesize(context.Background(), &Request{
		Text:       "hi",
		OutputPath: filepath.Join(t.TempDir(), "out.wav"),
		Voice:      "onyx",
	})
	require.NoError(t, err)
	assert.Equal(t, "onyx", got.Voice)
}

func TestOpenAISynthesizeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key"}}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(zerolog.Nop(), &OpenAIConfig{
		APIKey:  "wrong-key",
		BaseURL: server.URL,
	})

	outPath := filepath.Join(t.TempDir(), "out.wav")
	err := p.Synthesize(context.Background(), &Request{
		Text:       "hello",
		OutputPath: outPath,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "failed synthesis must not leave a file")
}

func TestSpeedForRate(t *testing.T) {
	tests := []struct {
		name string
		rate int
		want float64
	}{
		{"zero rate", 0, 1.0},
		{"baseline", 175, 1.0},
		{"double", 350, 2.0},
		{"clamped low", 10, 0.25},
		{"clamped high", 2000, 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, speedForRate(tt.rate), 1e-9)
		})
	}
}
