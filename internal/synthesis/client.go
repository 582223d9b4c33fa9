package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"castpress/internal/logging"
)

const (
	defaultHTTPTimeout   = 60 * time.Second
	defaultRetryAttempts = 3
	defaultRetryBase     = 1 * time.Second

	speechPath = "/speech"
)

// Request captures one line's synthesis parameters.
type Request struct {
	Text     string
	VoiceID  string
	Model    string
	Provider string
}

// Config captures runtime settings for the synthesis client.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client calls a TTS provider's HTTP API to turn one line of text into
// raw audio bytes. Retryable provider failures (429/500/502/503,
// transport timeouts) are retried with exponential backoff; everything
// else is fatal for the line.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	retryAttempts int
	retryBase     time.Duration
	sleeper       func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the retry count and base delay.
func WithRetryBackoff(attempts int, base time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryBase = base
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a synthesis client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logging.NewNop(),
		retryAttempts: defaultRetryAttempts,
		retryBase:     defaultRetryBase,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

type speechRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
	Model   string `json:"model,omitempty"`
}

type speechErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("tts request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Synthesize converts one cleaned-up dialogue line into audio bytes.
// The provider's pronunciation table and emotion-tag capability are
// applied before the request goes out.
func (c *Client) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("tts synthesize: text required")
	}
	if strings.TrimSpace(req.VoiceID) == "" {
		return nil, errors.New("tts synthesize: voice id required")
	}

	provider, err := LookupProvider(req.Provider)
	if err != nil {
		return nil, fmt.Errorf("tts synthesize: %w", err)
	}

	text := CleanText(req.Text, provider)
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = provider.DefaultModel
	}

	endpoint := c.cfg.BaseURL
	if endpoint == "" {
		endpoint = provider.BaseURL
	}
	endpoint = strings.TrimRight(endpoint, "/") + speechPath

	payload := speechRequest{Text: text, VoiceID: req.VoiceID, Model: model}

	var lastErr error
	// attempts = 1 initial + retryAttempts retries
	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt)
			c.logger.Warn("retrying synthesis",
				logging.Int("attempt", attempt),
				logging.Duration("delay", delay),
				logging.Error(lastErr),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		audio, err := c.sendOnce(ctx, endpoint, payload)
		if err == nil {
			return audio, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("tts synthesize: failed after %d attempts: %w", c.retryAttempts+1, lastErr)
}

func (c *Client) sendOnce(ctx context.Context, endpoint string, payload speechRequest) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tts request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("tts request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts request: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("tts request: received empty audio data")
	}
	return audio, nil
}

func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed speechErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
		return &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       fmt.Sprintf("%s (code: %s)", parsed.Detail, parsed.ErrorCode),
		}
	}
	return &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
}

// isRetryable classifies a failure. Rate limiting and upstream outages
// are worth retrying; anything else (bad voice id, oversized text,
// authentication) will not improve on a second attempt.
func isRetryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		// Connection-level failures (refused, reset) are transient.
		var opErr *net.OpError
		if errors.As(urlErr.Err, &opErr) {
			return true
		}
	}

	return false
}

// backoffDelay yields 1s, 2s, 4s for retries 1..3 at the default base.
func (c *Client) backoffDelay(retry int) time.Duration {
	delay := c.retryBase
	for i := 1; i < retry; i++ {
		delay *= 2
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
