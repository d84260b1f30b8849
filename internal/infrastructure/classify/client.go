package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// RateLimitError reports a rejected request whose credential must cool down
// before reuse. WaitSeconds carries the service-reported wait when the
// response included one, otherwise zero.
type RateLimitError struct {
	WaitSeconds int
	Message     string
}

func (e *RateLimitError) Error() string {
	if e.WaitSeconds > 0 {
		return fmt.Sprintf("rate limited, retry in %ds: %s", e.WaitSeconds, e.Message)
	}
	return "rate limited: " + e.Message
}

// waitExpr matches the wait hint some services embed in the 429 body,
// e.g. "Please try again in 7.66s".
var waitExpr = regexp.MustCompile(`try again in (\d+(?:\.\d+)?)s`)

// Client posts classification requests to an OpenAI-compatible
// chat-completions endpoint. The credential is supplied per call so the
// orchestrator can fail over between keys.
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.ChatCompleter = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.ClassifierConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		logger: logger.With("component", "classifier"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete submits one classification request with the given credential and
// returns the raw model output.
func (c *Client) Complete(ctx context.Context, req domain.ClassificationRequest, apiKey string) (string, error) {
	if c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("classifier client misconfigured")
	}
	if apiKey == "" {
		return "", fmt.Errorf("empty api key")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: BuildPrompt(req)}},
		Temperature: 0,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("classification request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &RateLimitError{
			WaitSeconds: waitFromResponse(resp, raw),
			Message:     clip(string(raw), 200),
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("classification service %s: %s", resp.Status, clip(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}

	c.logger.Debug("classification call completed",
		"model", c.model, "elapsed", time.Since(start).Round(time.Millisecond))
	return parsed.Choices[0].Message.Content, nil
}

// waitFromResponse extracts the wait hint from the 429 body message or the
// Retry-After header; zero when neither is present.
func waitFromResponse(resp *http.Response, raw []byte) int {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if m := waitExpr.FindStringSubmatch(payload.Error.Message); m != nil {
			if secs, err := strconv.ParseFloat(m[1], 64); err == nil {
				return int(secs) + 1
			}
		}
	}

	if header := resp.Header.Get("Retry-After"); header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
			return secs
		}
	}
	return 0
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
