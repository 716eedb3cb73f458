package llm

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

// ErrUnavailable is returned when the model backend is down or the circuit
// is open.
var ErrUnavailable = errors.New("chat model unavailable")

// Config selects and configures the model backend.
type Config struct {
	Provider     string // "gemini" or "ollama"
	GeminiAPIURL string
	GeminiAPIKey string
	GeminiModel  string
	OllamaURL    string
	OllamaModel  string
}

// Client sends single-prompt completions to Gemini or a local Ollama
// instance, depending on configuration.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   *retry.Config
	logger     *slog.Logger
}

// NewClient creates an LLM client for the configured provider.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Provider != "gemini" && cfg.Provider != "ollama" {
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker:  circuitbreaker.New(5, 2, 30*time.Second),
		retryCfg: retry.DefaultConfig(),
		logger:   logger,
	}
	c.breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warn("llm circuit state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	return c, nil
}

// Ask sends prompt to the model and returns its text answer.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	switch c.cfg.Provider {
	case "ollama":
		return c.askOllama(ctx, prompt)
	default:
		return c.askGemini(ctx, prompt)
	}
}

func (c *Client) askGemini(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.cfg.GeminiAPIURL, c.cfg.GeminiModel, url.QueryEscape(c.cfg.GeminiAPIKey))

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := c.post(ctx, "gemini.generate", endpoint, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty model response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) askOllama(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model":  c.cfg.OllamaModel,
		"prompt": prompt,
		"stream": false,
	}

	var resp struct {
		Response string `json:"response"`
	}
	if err := c.post(ctx, "ollama.generate", c.cfg.OllamaURL+"/api/generate", body, &resp); err != nil {
		return "", err
	}
	if resp.Response == "" {
		return "", errors.New("empty model response")
	}
	return resp.Response, nil
}

func (c *Client) post(ctx context.Context, op, endpoint string, body, out any) error {
	if !c.breaker.Allow() {
		return ErrUnavailable
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	raw, err := retry.Do(ctx, c.retryCfg, c.logger, op, func(ctx context.Context) ([]byte, error) {
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

		data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("model API returned status %d", resp.StatusCode)
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
