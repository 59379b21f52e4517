package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// geminiReply builds a generateContent response whose single candidate
// carries the given text part.
func geminiReply(t *testing.T, part string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": part}},
			}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestGeminiTranslateAndDetect(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write(geminiReply(t, `{"detectedLanguageCode": "pt", "translatedText": "Hello, world!"}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-model", "test-key", newTestLogger())

	res, err := client.TranslateAndDetect(context.Background(), "Olá, mundo!", "en", "English")
	require.NoError(t, err)

	assert.Equal(t, "pt", res.DetectedLanguage)
	assert.Equal(t, "Hello, world!", res.TranslatedText)

	assert.Equal(t, "/v1beta/models/test-model:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)

	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	assert.Equal(t, "Olá, mundo!", gotReq.Contents[0].Parts[0].Text)

	require.NotNil(t, gotReq.SystemInstruction)
	instruction := gotReq.SystemInstruction.Parts[0].Text
	assert.Contains(t, instruction, "English")
	assert.Contains(t, instruction, `"en"`)
	assert.Equal(t, "application/json", gotReq.GenerationConfig.ResponseMIMEType)
}

func TestGeminiMissingCredential(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "", "", newTestLogger())

	_, err := client.TranslateAndDetect(context.Background(), "Olá", "en", "English")
	assert.ErrorIs(t, err, ErrMissingCredential)

	err = client.CheckHealth(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredential)

	// The credential check happens before any network traffic.
	assert.Zero(t, requests)
}

func TestGeminiNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 429, "status": "RESOURCE_EXHAUSTED"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-model", "test-key", newTestLogger())

	_, err := client.TranslateAndDetect(context.Background(), "Olá", "en", "English")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingCredential)
	assert.Contains(t, err.Error(), "429")
}

func TestGeminiEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-model", "test-key", newTestLogger())

	_, err := client.TranslateAndDetect(context.Background(), "Olá", "en", "English")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGeminiMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiReply(t, "sorry, I cannot translate that"))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-model", "test-key", newTestLogger())

	_, err := client.TranslateAndDetect(context.Background(), "Olá", "en", "English")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode translation payload")
}

func TestGeminiCodeFencedPayload(t *testing.T) {
	// Some models wrap the payload in a markdown fence despite instructions.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiReply(t, "```json\n{\"detectedLanguageCode\": \"es\", \"translatedText\": \"Hello\"}\n```"))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-model", "test-key", newTestLogger())

	res, err := client.TranslateAndDetect(context.Background(), "Hola", "en", "English")
	require.NoError(t, err)
	assert.Equal(t, "es", res.DetectedLanguage)
	assert.Equal(t, "Hello", res.TranslatedText)
}

func TestGeminiEmptyDetectedLanguage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiReply(t, `{"detectedLanguageCode": "", "translatedText": ""}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-model", "test-key", newTestLogger())

	res, err := client.TranslateAndDetect(context.Background(), "12345 !!!", "en", "English")
	require.NoError(t, err)
	assert.Empty(t, res.DetectedLanguage)
	assert.Empty(t, res.TranslatedText)
}

func TestGeminiCheckHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/test-model", r.URL.Path)
		w.Write([]byte(`{"name": "models/test-model"}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-model", "test-key", newTestLogger())
	assert.NoError(t, client.CheckHealth(context.Background()))
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFence(tt.in), "stripCodeFence(%q)", tt.in)
	}
}
