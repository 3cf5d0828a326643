package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/givebridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/givebridge-backend/internal/platform/envutil"
	"github.com/yungbote/givebridge-backend/internal/platform/httpx"
	"github.com/yungbote/givebridge-backend/internal/platform/logger"
)

// Client sends transactional email through the Resend HTTP API.
// SMTP is not an option on some hosts, so everything goes over REST.
type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	DefaultFromName  string
	Timeout          time.Duration
	MaxRetries       int
}

func ConfigFromEnv() Config {
	timeoutSec := envutil.Int("RESEND_TIMEOUT_SECONDS", 10)
	maxRetries := envutil.Int("RESEND_MAX_RETRIES", 2)
	return Config{
		APIKey:           strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		BaseURL:          strings.TrimSpace(os.Getenv("RESEND_BASE_URL")),
		DefaultFromEmail: strings.TrimSpace(os.Getenv("RESEND_FROM_EMAIL")),
		DefaultFromName:  strings.TrimSpace(os.Getenv("RESEND_FROM_NAME")),
		Timeout:          time.Duration(timeoutSec) * time.Second,
		MaxRetries:       maxRetries,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing RESEND_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.resend.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:        log.With("client", "ResendClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	maxRetries int
}

type SendEmailRequest struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

type SendEmailResult struct {
	ID string
}

// Resend /emails wire types.
type sendWire struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type HTTPError struct {
	StatusCode int
	Name       string
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "resend: <nil error>"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("resend http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("resend client unavailable")
	}

	from := strings.TrimSpace(req.From)
	if from == "" {
		from = c.cfg.DefaultFromEmail
		if name := c.cfg.DefaultFromName; name != "" && from != "" {
			from = fmt.Sprintf("%s <%s>", name, from)
		}
	}
	if from == "" {
		return nil, fmt.Errorf("resend: From required (or set RESEND_FROM_EMAIL)")
	}
	if len(req.To) == 0 {
		return nil, fmt.Errorf("resend: To required")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return nil, fmt.Errorf("resend: Subject required")
	}
	if strings.TrimSpace(req.HTML) == "" && strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("resend: HTML or Text content required")
	}

	wire := sendWire{
		From:    from,
		To:      req.To,
		Subject: strings.TrimSpace(req.Subject),
		HTML:    req.HTML,
		Text:    req.Text,
	}

	raw, err := c.do(ctx, "POST", "/emails", wire)
	if err != nil {
		return nil, err
	}

	var out sendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("resend: decode response: %w", err)
	}
	return &SendEmailResult{ID: out.ID}, nil
}

func (c *client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			return raw, nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return nil, err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("Resend request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return nil, errors.New("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			he.Name = er.Name
			he.Message = er.Message
		}
		return resp, raw, he
	}

	return resp, raw, nil
}
