package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nexuscampus/campusmap/internal/reliability/circuitbreaker"
	"github.com/nexuscampus/campusmap/internal/reliability/retry"
)

// ErrUnavailable is returned when the translation backend is down or the
// circuit is open.
var ErrUnavailable = errors.New("translation service unavailable")

// Client talks to the Google Translate v2 REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   *retry.Config
	logger     *slog.Logger
}

// NewClient creates a translate client. Outbound requests are traced,
// retried with backoff and guarded by a circuit breaker.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker:  circuitbreaker.New(5, 2, 30*time.Second),
		retryCfg: retry.DefaultConfig(),
		logger:   logger,
	}
	c.breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warn("translate circuit state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	return c
}

// Detect returns the detected language code of text.
func (c *Client) Detect(ctx context.Context, text string) (string, error) {
	var resp struct {
		Data struct {
			Detections [][]struct {
				Language string `json:"language"`
			} `json:"detections"`
		} `json:"data"`
	}
	if err := c.post(ctx, "detect", "/language/translate/v2/detect", map[string]any{"q": text}, &resp); err != nil {
		return "", err
	}
	if len(resp.Data.Detections) == 0 || len(resp.Data.Detections[0]) == 0 {
		return "", errors.New("empty detection response")
	}
	return resp.Data.Detections[0][0].Language, nil
}

// Translate converts text into the target language. The source language is
// detected by the API when empty.
func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	var resp struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}
	body := map[string]any{
		"q":      text,
		"target": target,
		"format": "text",
	}
	if err := c.post(ctx, "translate", "/language/translate/v2", body, &resp); err != nil {
		return "", err
	}
	if len(resp.Data.Translations) == 0 {
		return "", errors.New("empty translation response")
	}
	return resp.Data.Translations[0].TranslatedText, nil
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	if !c.breaker.Allow() {
		return ErrUnavailable
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	raw, err := retry.Do(ctx, c.retryCfg, c.logger, "translate."+op, func(ctx context.Context) ([]byte, error) {
		endpoint := c.baseURL + path + "?key=" + url.QueryEscape(c.apiKey)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("translate API returned status %d", resp.StatusCode)
		}
		return data, nil
	})
	if err != nil {
		c.breaker.RecordFailure()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.breaker.RecordSuccess()

	return json.Unmarshal(raw, out)
}
