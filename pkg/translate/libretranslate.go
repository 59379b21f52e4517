package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultLibreTranslateURL is the default base URL for LibreTranslate API.
	DefaultLibreTranslateURL = "http://localhost:5000"
	// DefaultLibreTranslateTimeout is the default timeout for HTTP requests.
	// Widget submissions are short interactive texts, so a tight timeout
	// keeps the loading state honest.
	DefaultLibreTranslateTimeout = 30 * time.Second
)

// LibreTranslateClient implements the Translator interface using
// LibreTranslate, a self-hosted, open-source machine translation API.
// Detection comes for free: requesting source "auto" makes the server
// return the language it identified alongside the translation.
type LibreTranslateClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewLibreTranslateClient creates a new LibreTranslate client.
// baseURL should point to the LibreTranslate server (default:
// http://localhost:5000). apiKey is optional; self-hosted instances
// usually run without one.
func NewLibreTranslateClient(baseURL, apiKey string, logger *logrus.Logger) *LibreTranslateClient {
	if baseURL == "" {
		baseURL = DefaultLibreTranslateURL
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &LibreTranslateClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultLibreTranslateTimeout,
		},
		logger: logger,
	}
}

// libreTranslateRequest represents a LibreTranslate API request.
type libreTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"` // "auto" to make the server detect
	Target string `json:"target"` // e.g. "en"
	Format string `json:"format"` // "text" or "html"
	APIKey string `json:"api_key,omitempty"`
}

// libreTranslateResponse represents a LibreTranslate API response. The
// detectedLanguage block is only present when source was "auto".
type libreTranslateResponse struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage struct {
		Confidence float64 `json:"confidence"`
		Language   string  `json:"language"`
	} `json:"detectedLanguage"`
}

// languagesResponse represents one entry of the /languages endpoint.
type languagesResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// TranslateAndDetect translates text into the target language, letting the
// server detect the source. targetName is unused: LibreTranslate works on
// codes alone.
func (c *LibreTranslateClient) TranslateAndDetect(ctx context.Context, text string, targetCode, targetName string) (Result, error) {
	c.logger.WithFields(logrus.Fields{
		"target_lang": targetCode,
		"text_length": len(text),
	}).Debug("Translating text with LibreTranslate")

	reqPayload := libreTranslateRequest{
		Q:      text,
		Source: "auto",
		Target: targetCode,
		Format: "text",
		APIKey: c.apiKey,
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(&reqPayload); err != nil {
		c.logger.WithError(err).Error("Failed to encode translation request")
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	url := c.baseURL + "/translate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		c.logger.WithError(err).Error("Failed to create translation request")
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"url": url,
		}).Error("Translation request failed")
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(startTime)
	c.logger.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	}).Debug("Translation request completed")

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(bodyBytes),
		}).Error("Translation request returned non-OK status")
		return Result{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var ltResp libreTranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&ltResp); err != nil {
		c.logger.WithError(err).Error("Failed to decode translation response")
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"detected_lang":     ltResp.DetectedLanguage.Language,
		"detect_confidence": ltResp.DetectedLanguage.Confidence,
		"target_lang":       targetCode,
		"duration_ms":       duration.Milliseconds(),
	}).Info("Translation completed successfully")

	return Result{
		DetectedLanguage: ltResp.DetectedLanguage.Language,
		TranslatedText:   ltResp.TranslatedText,
	}, nil
}

// CheckHealth verifies that LibreTranslate is ready and operational, using
// the /languages endpoint as the probe.
func (c *LibreTranslateClient) CheckHealth(ctx context.Context) error {
	c.logger.Debug("Checking LibreTranslate health")

	url := c.baseURL + "/languages"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.WithError(err).Error("Failed to create health check request")
		return fmt.Errorf("create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"url": url,
		}).Error("Health check request failed")
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
		}).Error("Health check returned non-OK status")
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var languages []languagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&languages); err != nil {
		c.logger.WithError(err).Error("Failed to decode languages response")
		return fmt.Errorf("decode response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"count": len(languages),
	}).Debug("LibreTranslate health check passed")
	return nil
}

// Name identifies the engine in logs and metrics.
func (c *LibreTranslateClient) Name() string {
	return "libretranslate"
}
