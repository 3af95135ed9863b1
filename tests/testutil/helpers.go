// Package testutil provides shared fixtures for the e2e and performance
// suites: an in-memory pronouncing dictionary, a deterministic stub
// synthesizer, silent WAV generation, and a mock Ollama server.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"

	"github.com/normanking/cortexvoice/internal/lexicon"
	"github.com/normanking/cortexvoice/internal/tts"
)

// FixedLexicon returns a small in-memory pronouncing dictionary covering
// the scripts the test suites speak. Using a fixed lexicon keeps shape
// sequences deterministic and avoids downloading CMUdict in tests.
func FixedLexicon() *lexicon.Lexicon {
	lex := lexicon.New()
	lex.Add("HELLO", []string{"HH", "AH0", "L", "OW1"})
	lex.Add("WORLD", []string{"W", "ER1", "L", "D"})
	lex.Add("GOOD", []string{"G", "UH1", "D"})
	lex.Add("MORNING", []string{"M", "AO1", "R", "N", "IH0", "NG"})
	lex.Add("THIS", []string{"DH", "IH1", "S"})
	lex.Add("IS", []string{"IH1", "Z"})
	lex.Add("A", []string{"AH0"})
	lex.Add("TEST", []string{"T", "EH1", "S", "T"})
	lex.Add("OF", []string{"AH1", "V"})
	lex.Add("THE", []string{"DH", "AH0"})
	lex.Add("SPEECH", []string{"S", "P", "IY1", "CH"})
	lex.Add("PIPELINE", []string{"P", "AY1", "P", "L", "AY2", "N"})
	lex.Add("HOW", []string{"HH", "AW1"})
	lex.Add("ARE", []string{"AA1", "R"})
	lex.Add("YOU", []string{"Y", "UW1"})
	lex.Add("TODAY", []string{"T", "AH0", "D", "EY1"})
	return lex
}

// WriteScript writes text to script.txt in dir and returns its path.
func WriteScript(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "script.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

// WriteSilentWAV writes a 16 kHz mono 16-bit WAV of silence to path.
func WriteSilentWAV(t *testing.T, path string, seconds float64) {
	t.Helper()
	require.NoError(t, writeSilence(path, seconds))
}

func writeSilence(path string, seconds float64) error {
	const sampleRate = 16000

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := &goaudio.IntBuffer{
		Data:           make([]int, int(float64(sampleRate)*seconds)),
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// StubSynthesizer is a deterministic tts.Synthesizer: every successful
// call writes Seconds of silence to the requested output path. It is
// safe for concurrent use.
type StubSynthesizer struct {
	Seconds float64 // audio length per call, default 1.0
	Err     error   // returned instead of synthesizing when set

	mu      sync.Mutex
	calls   int
	lastReq tts.Request
}

func (s *StubSynthesizer) Name() string      { return "stub" }
func (s *StubSynthesizer) IsAvailable() bool { return true }

func (s *StubSynthesizer) Synthesize(ctx context.Context, req *tts.Request) error {
	s.mu.Lock()
	s.calls++
	s.lastReq = *req
	err := s.Err
	seconds := s.Seconds
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if seconds <= 0 {
		seconds = 1.0
	}
	return writeSilence(req.OutputPath, seconds)
}

// Calls returns how many synthesis requests the stub has served.
func (s *StubSynthesizer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// LastRequest returns a copy of the most recent request.
func (s *StubSynthesizer) LastRequest() tts.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReq
}

// MockOllamaServer fakes the two Ollama endpoints the responder talks
// to: /api/tags for availability and /api/generate, which always replies
// with the given text and emotion.
func MockOllamaServer(t *testing.T, text, emotion string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"models":[{"name":"llama3.2"}]}`)

		case "/api/generate":
			reply, err := json.Marshal(map[string]string{"text": text, "emotion": emotion})
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"model":    "llama3.2",
				"response": string(reply),
				"done":     true,
			})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}