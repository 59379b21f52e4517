package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibreTranslateAndDetect(t *testing.T) {
	var gotReq libreTranslateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"translatedText": "Hello, world!",
			"detectedLanguage": {"confidence": 92.5, "language": "pt"}
		}`))
	}))
	defer server.Close()

	client := NewLibreTranslateClient(server.URL, "secret", newTestLogger())

	res, err := client.TranslateAndDetect(context.Background(), "Olá, mundo!", "en", "English")
	require.NoError(t, err)

	assert.Equal(t, "pt", res.DetectedLanguage)
	assert.Equal(t, "Hello, world!", res.TranslatedText)

	assert.Equal(t, "Olá, mundo!", gotReq.Q)
	assert.Equal(t, "auto", gotReq.Source)
	assert.Equal(t, "en", gotReq.Target)
	assert.Equal(t, "text", gotReq.Format)
	assert.Equal(t, "secret", gotReq.APIKey)
}

func TestLibreTranslateOmitsEmptyAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.NotContains(t, raw, "api_key")

		w.Write([]byte(`{"translatedText": "Hi", "detectedLanguage": {"confidence": 80, "language": "pt"}}`))
	}))
	defer server.Close()

	client := NewLibreTranslateClient(server.URL, "", newTestLogger())

	_, err := client.TranslateAndDetect(context.Background(), "Oi", "en", "English")
	require.NoError(t, err)
}

func TestLibreTranslateNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "Invalid API key"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewLibreTranslateClient(server.URL, "bad", newTestLogger())

	_, err := client.TranslateAndDetect(context.Background(), "Oi", "en", "English")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestLibreTranslateCheckHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/languages", r.URL.Path)
		w.Write([]byte(`[{"code": "en", "name": "English"}, {"code": "pt", "name": "Portuguese"}]`))
	}))
	defer server.Close()

	client := NewLibreTranslateClient(server.URL, "", newTestLogger())
	assert.NoError(t, client.CheckHealth(context.Background()))
}

func TestLibreTranslateCheckHealthBadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer server.Close()

	client := NewLibreTranslateClient(server.URL, "", newTestLogger())
	assert.Error(t, client.CheckHealth(context.Background()))
}
