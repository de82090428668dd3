// Package sina provides a client for the Sina Finance quote endpoints
package sina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/hklens/hklens/internal/common"
	"github.com/hklens/hklens/internal/interfaces"
	"github.com/hklens/hklens/internal/models"
)

const (
	DefaultQuoteURL   = "https://hq.sinajs.cn"
	DefaultSuggestURL = "https://suggest3.sinajs.cn"
	DefaultTimeout    = 10 * time.Second
	DefaultRateLimit  = 5 // requests per second

	// Sina rejects quote requests without a finance.sina.com.cn referer
	refererHeader = "https://finance.sina.com.cn/"

	// codes per hq.sinajs.cn request, keeps the URL well under the limit
	chunkSize = 20
)

// Client implements the QuoteNameClient interface against the GBK-encoded
// Sina Finance quote and suggest endpoints.
type Client struct {
	quoteURL   string
	suggestURL string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithQuoteURL sets the batch quote endpoint base URL
func WithQuoteURL(quoteURL string) ClientOption {
	return func(c *Client) {
		c.quoteURL = quoteURL
	}
}

// WithSuggestURL sets the suggest endpoint base URL
func WithSuggestURL(suggestURL string) ClientOption {
	return func(c *Client) {
		c.suggestURL = suggestURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Sina Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		quoteURL:   DefaultQuoteURL,
		suggestURL: DefaultSuggestURL,
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

// getGBK performs a rate-limited GET request and decodes the GBK body
// into UTF-8.
func (c *Client) getGBK(ctx context.Context, reqURL, referer string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sina API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	decoded, err := io.ReadAll(transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("failed to decode GBK body: %w", err)
	}

	return string(decoded), nil
}

// ResolveNames maps raw ticker codes to their Chinese display names via
// the batch quote endpoint. Codes are chunked to keep each request URL
// short; codes with no Sina representation or no upstream record are
// absent from the result.
func (c *Client) ResolveNames(ctx context.Context, codes []string) (map[string]string, error) {
	sinaCodes := make([]string, 0, len(codes))
	codeMap := make(map[string]string, len(codes))
	for _, raw := range codes {
		sinaCode, err := models.SinaCode(raw)
		if err != nil {
			continue
		}
		if _, seen := codeMap[sinaCode]; seen {
			continue
		}
		sinaCodes = append(sinaCodes, sinaCode)
		codeMap[sinaCode] = raw
	}

	names := make(map[string]string)
	if len(sinaCodes) == 0 {
		return names, nil
	}

	for start := 0; start < len(sinaCodes); start += chunkSize {
		end := start + chunkSize
		if end > len(sinaCodes) {
			end = len(sinaCodes)
		}
		chunk := sinaCodes[start:end]

		reqURL := fmt.Sprintf("%s/list=%s", c.quoteURL, strings.Join(chunk, ","))
		body, err := c.getGBK(ctx, reqURL, refererHeader)
		if err != nil {
			// one bad chunk must not cost the names the others can supply
			c.logger.Warn().Err(err).Int("chunk_size", len(chunk)).Msg("sina quote chunk failed")
			continue
		}

		parseQuoteLines(body, codeMap, names)
	}

	c.logger.Debug().Int("requested", len(codes)).Int("resolved", len(names)).Msg("sina names resolved")

	return names, nil
}

// parseQuoteLines extracts names from lines shaped like
// `var hq_str_hk00700="TENCENT,腾讯控股,...";`. The Chinese name is the
// second comma field.
func parseQuoteLines(body string, codeMap, names map[string]string) {
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		lhs, rhs, found := strings.Cut(line, `="`)
		if !found {
			continue
		}
		rhs = strings.Trim(strings.TrimSpace(rhs), `";`)
		if rhs == "" {
			continue
		}

		idx := strings.LastIndex(lhs, "hq_str_")
		if idx < 0 {
			continue
		}
		sinaCode := lhs[idx+len("hq_str_"):]

		fields := strings.Split(rhs, ",")
		if len(fields) < 2 {
			continue
		}
		if raw, known := codeMap[sinaCode]; known {
			names[raw] = fields[1]
		}
	}
}

// Search finds Hong Kong listed stocks by company name via the suggest
// endpoint (type 31 restricts results to the HK board).
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/suggest/type=31&key=%s&name=suggest_data", c.suggestURL, url.QueryEscape(query))
	body, err := c.getGBK(ctx, reqURL, "")
	if err != nil {
		return nil, err
	}

	results := parseSuggestBody(body)

	c.logger.Debug().Str("query", query).Int("results", len(results)).Msg("sina search completed")

	return results, nil
}

// parseSuggestBody extracts results from a body shaped like
// `var suggest_data="腾讯控股,31,00700,00700,...;小米集团,31,01810,...";`.
// Each semicolon entry carries the name in field 0 and the code in
// field 2; codes are reformatted to 4-digit display form.
func parseSuggestBody(body string) []models.SearchResult {
	_, rhs, found := strings.Cut(body, `="`)
	if !found {
		return nil
	}
	content := strings.Trim(strings.TrimSpace(rhs), `";`)
	if content == "" {
		return nil
	}

	var results []models.SearchResult
	for _, entry := range strings.Split(content, ";") {
		fields := strings.Split(entry, ",")
		if len(fields) < 4 {
			continue
		}

		code := fields[2]
		if codeInt, err := strconv.Atoi(code); err == nil {
			code = fmt.Sprintf("%04d", codeInt)
		}

		results = append(results, models.SearchResult{
			Name: fields[0],
			Code: code,
		})
	}
	return results
}

// Ensure Client implements QuoteNameClient
var _ interfaces.QuoteNameClient = (*Client)(nil)
