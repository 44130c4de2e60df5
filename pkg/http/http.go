package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/NamanBalaji/vidvault/internal/logger"
)

const (
	defaultConnectTimeout = 30 * time.Second
	defaultRequestTimeout = 60 * time.Second
	defaultIdleTimeout    = 90 * time.Second
	keepAlivePeriod       = 30 * time.Second
	maxIdleConns          = 100
	tlsHandshakeTimeout   = 10 * time.Second
	expectContinueTimeout = 1 * time.Second
	maxConnsPerHost       = 16

	// maxJSONBody bounds catalog documents read into memory.
	maxJSONBody = 16 << 20

	DefaultUserAgent = "vidvault/1.0"
)

type Client struct {
	*http.Client

	limiter        *rate.Limiter
	requestTimeout time.Duration
}

type ClientOption func(*Client)

// WithRateLimit caps outgoing requests per second. Zero or negative disables
// limiting.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}

		if burst <= 0 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRequestTimeout bounds a single request including reading its body.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// NewClient creates a new HTTP client with custom transport settings.
func NewClient(opts ...ClientOption) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultConnectTimeout,
			KeepAlive: keepAlivePeriod,
		}).DialContext,
		MaxIdleConns:          maxIdleConns,
		IdleConnTimeout:       defaultIdleTimeout,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ExpectContinueTimeout: expectContinueTimeout,
		MaxConnsPerHost:       maxConnsPerHost,
	}

	c := &Client{
		Client:         &http.Client{Transport: transport},
		requestTimeout: defaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Head performs a HEAD request and reports the classified outcome. The
// response body is always closed.
func (c *Client) Head(ctx context.Context, urlStr string) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodHead, urlStr)
	if err != nil {
		return err
	}

	if err := resp.Body.Close(); err != nil {
		logger.Warnf("Failed to close HEAD response body for %s: %v", urlStr, err)
	}

	return nil
}

// GetJSON performs a GET request and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, urlStr string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodGet, urlStr)
	if err != nil {
		return err
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warnf("Failed to close response body for %s: %v", urlStr, err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONBody))
	if err != nil {
		logger.Errorf("Reading response body failed for %s: %v", urlStr, err)

		if classified := ClassifyError(err); classified != ErrUnknown {
			return classified
		}

		return fmt.Errorf("%w: %w", ErrIOProblem, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, urlStr string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, ClassifyError(err)
		}
	}

	req, err := generateRequest(ctx, urlStr, method)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Sending %s request to %s", method, urlStr)

	resp, err := c.Do(req)
	if err != nil {
		logger.Errorf("%s request failed for %s: %v", method, urlStr, err)
		return nil, ClassifyError(err)
	}

	logger.Debugf("%s response for %s: status=%d", method, urlStr, resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		logger.Errorf("%s request returned error status %d for %s", method, resp.StatusCode, urlStr)

		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	return resp, nil
}

// generateRequest creates a new HTTP request with the specified method and URL.
func generateRequest(ctx context.Context, urlStr, method string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, http.NoBody)
	if err != nil {
		logger.Errorf("Failed to create %s request for %s: %v", method, urlStr, err)
		return nil, ErrRequestCreation
	}

	req.Header.Set("User-Agent", DefaultUserAgent)

	return req, nil
}
