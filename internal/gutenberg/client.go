package gutenberg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/LarryLuggage/project-libris/internal/logging"
)

const (
	defaultBaseURL    = "https://www.gutenberg.org"
	defaultCoverPath  = "/cache/epub/{id}/pg{id}.cover.medium.jpg"
	defaultUserAgent  = "ProjectLibris/1.0 (Educational; +https://github.com/LarryLuggage/project-libris)"
	defaultRateLimit  = 1 * time.Second
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3

	coverCheckTimeout = 10 * time.Second
	throttleBaseDelay = 60 * time.Second
	backoffBaseDelay  = 1 * time.Second

	idPlaceholder = "{id}"
)

// DefaultTextPaths lists the plain-text locations tried for every book, most
// preferred first.
func DefaultTextPaths() []string {
	return []string{
		"/cache/epub/{id}/pg{id}.txt",
		"/files/{id}/{id}-0.txt",
		"/files/{id}/{id}.txt",
	}
}

// Config captures the archive endpoints and politeness settings.
type Config struct {
	BaseURL    string
	TextPaths  []string
	CoverPath  string
	UserAgent  string
	RateLimit  time.Duration
	Timeout    time.Duration
	MaxRetries int
}

// DefaultConfig returns the settings used against gutenberg.org.
func DefaultConfig() Config {
	return Config{
		BaseURL:    defaultBaseURL,
		TextPaths:  DefaultTextPaths(),
		CoverPath:  defaultCoverPath,
		UserAgent:  defaultUserAgent,
		RateLimit:  defaultRateLimit,
		Timeout:    defaultTimeout,
		MaxRetries: defaultMaxRetries,
	}
}

// Client downloads book texts from Project Gutenberg. Every outbound request
// made through one Client is spaced by at least Config.RateLimit.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *limiter
	logger     *slog.Logger
	sleeper    func(time.Duration)
	now        func() time.Time
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

// WithSleeper overrides how rate-limit and retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithClock overrides the time source used by the rate limiter.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs a client. Zero values in cfg fall back to defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	defaults := DefaultConfig()
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if len(cfg.TextPaths) == 0 {
		cfg.TextPaths = defaults.TextPaths
	}
	if strings.TrimSpace(cfg.CoverPath) == "" {
		cfg.CoverPath = defaults.CoverPath
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.RateLimit < 0 {
		cfg.RateLimit = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "gutenberg")
	client.limiter = newLimiter(cfg.RateLimit, client.now, client.sleep)
	return client
}

// FetchText downloads and decodes the plain text of a book. Each configured
// text location is tried in order; transient failures are retried with
// backoff inside a location. When every location fails the returned error is
// a *FetchError listing the reason for each.
func (c *Client) FetchText(ctx context.Context, externalID int) (string, error) {
	logger := c.logger.With(logging.Int(logging.FieldExternalID, externalID))
	reasons := make([]string, 0, len(c.cfg.TextPaths))
	for _, path := range c.cfg.TextPaths {
		target := c.buildURL(path, externalID)
		text, reason, err := c.fetchFrom(ctx, logger, target)
		if err != nil {
			return "", err
		}
		if reason == "" {
			return text, nil
		}
		logger.Debug("text location unavailable", logging.String(logging.FieldURL, target), logging.String("reason", reason))
		reasons = append(reasons, reason)
	}
	return "", &FetchError{ExternalID: externalID, Reasons: reasons}
}

// fetchFrom tries one location. A non-empty reason means the location was
// abandoned; a non-nil error means the caller's context ended.
func (c *Client) fetchFrom(ctx context.Context, logger *slog.Logger, target string) (string, string, error) {
	attempts := c.cfg.MaxRetries
	for attempt := 0; attempt < attempts; attempt++ {
		last := attempt == attempts-1
		if err := c.limiter.wait(ctx); err != nil {
			return "", "", err
		}

		body, status, err := c.get(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return "", "", ctx.Err()
			}
			if !isTimeout(err) {
				return "", fmt.Sprintf("%s: %v", target, err), nil
			}
			if last {
				return "", fmt.Sprintf("%s: timeout after %d attempts", target, attempts), nil
			}
			delay := backoffDelay(attempt)
			logger.Debug("request timed out; backing off",
				logging.String(logging.FieldURL, target),
				logging.Int(logging.FieldAttempt, attempt+1),
				logging.Duration("delay", delay),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return "", "", err
			}
			continue
		}

		switch {
		case status == http.StatusOK:
			text := decodeText(body)
			logger.Debug("text downloaded",
				logging.String(logging.FieldURL, target),
				logging.String("size", humanize.Bytes(uint64(len(body)))),
			)
			return text, "", nil
		case status == http.StatusNotFound:
			return "", fmt.Sprintf("%s: %s", target, statusLabel(status)), nil
		case status == http.StatusTooManyRequests:
			if last {
				return "", fmt.Sprintf("%s: rate limited after %d attempts", target, attempts), nil
			}
			delay := throttleBaseDelay * time.Duration(attempt+1)
			logging.WarnWithContext(logger, "archive rate limited request; waiting", "fetch_throttled",
				logging.String(logging.FieldURL, target),
				logging.Int(logging.FieldAttempt, attempt+1),
				logging.Duration("delay", delay),
				logging.String(logging.FieldErrorHint, "lower the request rate via gutenberg.rate_limit_seconds"),
				logging.String(logging.FieldImpact, "ingestion slows down until the archive recovers"),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return "", "", err
			}
		case status >= http.StatusInternalServerError:
			if last {
				return "", fmt.Sprintf("%s: %s", target, statusLabel(status)), nil
			}
			delay := backoffDelay(attempt)
			logger.Debug("archive server error; backing off",
				logging.String(logging.FieldURL, target),
				logging.Int("status", status),
				logging.Int(logging.FieldAttempt, attempt+1),
				logging.Duration("delay", delay),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return "", "", err
			}
		default:
			return "", fmt.Sprintf("%s: %s", target, statusLabel(status)), nil
		}
	}
	return "", fmt.Sprintf("%s: no attempts made", target), nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, resp.StatusCode, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// CoverURL builds the conventional cover image location without checking
// that it exists.
func (c *Client) CoverURL(externalID int) string {
	return c.buildURL(c.cfg.CoverPath, externalID)
}

// VerifyCover issues a HEAD request for the cover image and returns its URL
// only when the archive confirms it exists. Failures are never returned.
func (c *Client) VerifyCover(ctx context.Context, externalID int) (string, bool) {
	target := c.CoverURL(externalID)
	if err := c.limiter.wait(ctx); err != nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, coverCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("cover check failed",
			logging.Int(logging.FieldExternalID, externalID),
			logging.String(logging.FieldURL, target),
			logging.Error(err),
		)
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	return target, true
}

func (c *Client) buildURL(path string, externalID int) string {
	path = strings.ReplaceAll(path, idPlaceholder, strconv.Itoa(externalID))
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.cfg.BaseURL + path
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx == nil {
		return errors.New("gutenberg sleep: nil context")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return nil
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

// backoffDelay returns 2^attempt seconds for a zero-based attempt index.
func backoffDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return backoffBaseDelay << attempt
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return false
}

func statusLabel(status int) string {
	if text := http.StatusText(status); text != "" {
		return strconv.Itoa(status) + " " + text
	}
	return strconv.Itoa(status)
}
