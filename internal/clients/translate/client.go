// Package translate provides a best-effort text translation client
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hklens/hklens/internal/common"
	"github.com/hklens/hklens/internal/interfaces"
)

const (
	DefaultBaseURL   = "https://translate.googleapis.com"
	DefaultTarget    = "zh-CN"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client translates text via the public Google Translate endpoint. It
// fails closed: any error returns the original text unchanged, so a
// translation outage never breaks the caller.
type Client struct {
	baseURL    string
	target     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTarget sets the target language code
func WithTarget(target string) ClientOption {
	return func(c *Client) {
		c.target = target
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new translation client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		target:  DefaultTarget,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Translate converts text to the target language. On any failure the
// input text is returned unchanged.
func (c *Client) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	translated, err := c.translate(ctx, text)
	if err != nil {
		c.logger.Debug().Err(err).Msg("translation failed, keeping original text")
		return text
	}
	return translated
}

func (c *Client) translate(ctx context.Context, text string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", c.target)
	params.Set("dt", "t")
	params.Set("q", text)

	reqURL := fmt.Sprintf("%s/translate_a/single?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translate API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	// The body is a nested array; the first element holds segment pairs
	// of [translated, original, ...].
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translate response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("failed to decode segments: %w", err)
	}

	var sb strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(segment[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no translated segments")
	}
	return sb.String(), nil
}

// Ensure Client implements Translator
var _ interfaces.Translator = (*Client)(nil)
