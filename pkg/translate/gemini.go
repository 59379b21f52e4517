package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultGeminiBaseURL is the default base URL for the Google
	// generative-language API.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultGeminiModel is the model used when none is configured.
	DefaultGeminiModel = "gemini-2.0-flash"
	// DefaultGeminiTimeout is the default timeout for HTTP requests. All
	// timeout policy lives in this client; callers do not impose their own.
	DefaultGeminiTimeout = 30 * time.Second
)

// GeminiClient implements the Translator interface using the Google
// generative-language API. One generateContent call both detects the input
// language and produces the translation, returned by the model as a strict
// JSON payload.
type GeminiClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewGeminiClient creates a new generative-language client. baseURL and
// model fall back to the package defaults when empty. apiKey may be empty;
// in that case every call reports ErrMissingCredential without touching the
// network.
func NewGeminiClient(baseURL, model, apiKey string, logger *logrus.Logger) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultGeminiTimeout,
		},
		logger: logger,
	}
}

// geminiPart is a single content part in a generateContent request/response.
type geminiPart struct {
	Text string `json:"text"`
}

// geminiContent is a role-tagged group of parts.
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// geminiGenerationConfig tunes the model output. ResponseMIMEType
// "application/json" asks the API to emit bare JSON without prose.
type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

// geminiResponse is the subset of the generateContent response we consume:
// candidates[0].content.parts[0].text.
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// translatePayload is the JSON object the model is instructed to reply with.
type translatePayload struct {
	DetectedLanguageCode string `json:"detectedLanguageCode"`
	TranslatedText       string `json:"translatedText"`
}

// systemInstruction builds the fixed translate-and-detect instruction for a
// target language.
func systemInstruction(targetCode, targetName string) string {
	return fmt.Sprintf(
		"You are the translation engine of a bilingual translator app. "+
			"Detect the language of the text the user sends and translate it to %s (ISO 639-1 code %q). "+
			"Reply with a single JSON object and nothing else, in the form "+
			`{"detectedLanguageCode": "<ISO 639-1 code of the detected language, or an empty string if it cannot be determined>", `+
			`"translatedText": "<the translation>"}. `+
			"Do not wrap the JSON in markdown and do not add commentary.",
		targetName, targetCode,
	)
}

// TranslateAndDetect performs one generateContent call and parses the JSON
// payload the model was instructed to produce.
func (c *GeminiClient) TranslateAndDetect(ctx context.Context, text string, targetCode, targetName string) (Result, error) {
	if c.apiKey == "" {
		c.logger.Warn("Gemini request skipped: no API key configured")
		return Result{}, ErrMissingCredential
	}

	c.logger.WithFields(logrus.Fields{
		"model":       c.model,
		"target_lang": targetCode,
		"text_length": len(text),
	}).Debug("Translating text with Gemini")

	reqPayload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: text}}},
		},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemInstruction(targetCode, targetName)}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      0.3,
			ResponseMIMEType: "application/json",
		},
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(&reqPayload); err != nil {
		c.logger.WithError(err).Error("Failed to encode Gemini request")
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		c.logger.WithError(err).Error("Failed to create Gemini request")
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"model": c.model,
		}).Error("Gemini request failed")
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(startTime)
	c.logger.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	}).Debug("Gemini request completed")

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(bodyBytes),
		}).Error("Gemini request returned non-OK status")
		return Result{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		c.logger.WithError(err).Error("Failed to decode Gemini response")
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		c.logger.Error("Gemini response contained no candidates")
		return Result{}, fmt.Errorf("empty response: no candidates")
	}

	raw := stripCodeFence(apiResp.Candidates[0].Content.Parts[0].Text)
	var payload translatePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"payload": raw,
		}).Error("Failed to decode translation payload")
		return Result{}, fmt.Errorf("decode translation payload: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"detected_lang": payload.DetectedLanguageCode,
		"target_lang":   targetCode,
		"duration_ms":   duration.Milliseconds(),
	}).Info("Translation completed successfully")

	return Result{
		DetectedLanguage: payload.DetectedLanguageCode,
		TranslatedText:   payload.TranslatedText,
	}, nil
}

// CheckHealth verifies that the API is reachable and the configured model
// exists. Without a credential the engine is reported unhealthy via
// ErrMissingCredential.
func (c *GeminiClient) CheckHealth(ctx context.Context) error {
	if c.apiKey == "" {
		return ErrMissingCredential
	}

	c.logger.Debug("Checking Gemini health")

	url := fmt.Sprintf("%s/v1beta/models/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.WithError(err).Error("Failed to create health check request")
		return fmt.Errorf("create health check request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("Health check request failed")
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
		}).Error("Health check returned non-OK status")
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	c.logger.Debug("Gemini health check passed")
	return nil
}

// Name identifies the engine in logs and metrics.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// stripCodeFence removes a surrounding markdown code fence from a model
// reply. Models occasionally emit ```json ... ``` despite being asked for
// bare JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language hint on the opening fence line ("json").
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
