package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jpillora/backoff"
	"github.com/opscart/actions-usage/pkg/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 30 * time.Second

	defaultMaxAttempts = 3
	// status retries come on top of the first response
	defaultStatusRetries = 5

	backOffMinDelay    = 1 * time.Second
	backOffMaxDelay    = 60 * time.Second
	backOffDelayFactor = 2.0

	rateLimitRemainingHeader = "X-RateLimit-Remaining"
	rateLimitResetHeader     = "X-RateLimit-Reset"
	retryAfterHeader         = "Retry-After"

	acceptHeader = "application/vnd.github+json"
	apiVersion   = "2022-11-28"
)

// retryStatuses are answered by GitHub when it is overloaded or asks the
// client to slow down
var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// transportError is a failed round trip or body read. Nothing else is retried
// by the transport loop.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

func isTransportError(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}

// Response is a fully read HTTP response
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// RateLimited reports whether the response signals an exhausted API quota
func (r *Response) RateLimited() bool {
	if r.StatusCode != http.StatusForbidden {
		return false
	}
	remaining := r.Header.Get(rateLimitRemainingHeader)
	if remaining == "" {
		return false
	}
	n, err := strconv.Atoi(remaining)
	return err == nil && n == 0
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRequestsPerSecond throttles requests on the client side; 0 disables throttling
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithCollector records request metrics
func WithCollector(collector *metrics.Collector) Option {
	return func(c *Client) {
		c.collector = collector
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTransport sets the base transport shared by every session. By default
// each session gets its own clone of http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// Client holds the state shared by all sessions: credentials, throttling,
// metrics and the process-wide call counter.
type Client struct {
	token       oauth2.TokenSource
	timeout     time.Duration
	transport   http.RoundTripper
	limiter     *rate.Limiter
	collector   *metrics.Collector
	logger      logrus.FieldLogger
	maxAttempts int

	maxStatusRetries int

	calls atomic.Int64

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New creates a client authenticating with a static bearer token
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:       oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		timeout:     DefaultTimeout,
		logger:      logrus.StandardLogger(),
		maxAttempts: defaultMaxAttempts,
		sleep:       sleepContext,
		now:         time.Now,

		maxStatusRetries: defaultStatusRetries,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Calls returns the number of Get calls issued through any session
func (c *Client) Calls() int64 {
	return c.calls.Load()
}

// NewSession returns a session with its own connection pool. Sessions are
// meant to be owned by a single worker.
func (c *Client) NewSession() *Session {
	base := c.transport
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}

	return &Session{
		client: c,
		http: &http.Client{
			Timeout: c.timeout,
			Transport: &oauth2.Transport{
				Source: c.token,
				Base:   base,
			},
		},
	}
}

func (c *Client) newBackoff() *backoff.Backoff {
	return &backoff.Backoff{
		Min:    backOffMinDelay,
		Max:    backOffMaxDelay,
		Factor: backOffDelayFactor,
		Jitter: false,
	}
}

// rateLimitWait is the time until the quota resets plus one second
func (c *Client) rateLimitWait(header http.Header) time.Duration {
	reset, err := strconv.ParseInt(header.Get(rateLimitResetHeader), 10, 64)
	if err != nil {
		c.logger.
			WithError(err).
			WithField("header", rateLimitResetHeader).
			Warningln("Couldn't parse rate limit reset header")
		reset = 0
	}

	wait := time.Unix(reset, 0).Sub(c.now())
	if wait < 0 {
		wait = 0
	}
	return wait + time.Second
}

// retryAfter reads the Retry-After header as whole seconds; 0 when absent or
// unparsable
func (c *Client) retryAfter(header http.Header) time.Duration {
	value := header.Get(retryAfterHeader)
	if value == "" {
		return 0
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		c.logger.
			WithError(err).
			WithField("header", retryAfterHeader).
			Warningln("Couldn't parse retry after header")
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// Session issues requests over a connection pool owned by one worker
type Session struct {
	client *Client
	http   *http.Client
}

// Get fetches url. Exhausted rate limits are waited out and the request is
// reissued once. Overload statuses (429, 5xx) are retried honoring
// Retry-After; transport failures are retried with exponential backoff before
// the last error is returned.
func (s *Session) Get(ctx context.Context, rawURL string) (*Response, error) {
	c := s.client
	c.calls.Add(1)

	logger := c.logger.WithField("url", rawURL)

	resp, err := s.getWithStatusRetry(ctx, rawURL, logger)
	if err != nil {
		return nil, err
	}

	if !resp.RateLimited() {
		return resp, nil
	}

	wait := c.rateLimitWait(resp.Header)
	logger.
		WithField("duration", wait).
		Warningln("Rate limit reached, waiting for reset")
	c.collector.ObserveRateLimitWait(wait)

	if err := c.sleep(ctx, wait); err != nil {
		return nil, err
	}

	// reissued once, an exhausted second response goes back to the caller
	return s.getWithStatusRetry(ctx, rawURL, logger)
}

func (s *Session) getWithStatusRetry(ctx context.Context, rawURL string, logger logrus.FieldLogger) (*Response, error) {
	c := s.client
	bo := c.newBackoff()

	for retry := 1; ; retry++ {
		resp, err := s.getWithTransportRetry(ctx, rawURL, logger)
		if err != nil {
			return nil, err
		}

		if !retryStatuses[resp.StatusCode] || retry > c.maxStatusRetries {
			return resp, nil
		}

		wait := c.retryAfter(resp.Header)
		if wait <= 0 {
			wait = bo.Duration()
		}

		logger.
			WithFields(logrus.Fields{
				"status":   resp.StatusCode,
				"retry":    retry,
				"duration": wait,
			}).
			Warningln("Waiting before making the next call")
		c.collector.AddRetry(endpointFor(rawURL))

		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (s *Session) getWithTransportRetry(ctx context.Context, rawURL string, logger logrus.FieldLogger) (*Response, error) {
	c := s.client
	bo := c.newBackoff()

	for attempt := 1; ; attempt++ {
		resp, err := s.do(ctx, rawURL)
		if err == nil {
			return resp, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if !isTransportError(err) {
			return nil, err
		}

		if attempt >= c.maxAttempts {
			return nil, fmt.Errorf("couldn't execute GET against %s after %d attempts: %w", rawURL, attempt, err)
		}

		wait := bo.Duration()
		logger.
			WithError(err).
			WithFields(logrus.Fields{
				"attempt":  attempt,
				"duration": wait,
			}).
			Warningln("Network error, retrying")
		c.collector.AddRetry(endpointFor(rawURL))

		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (s *Session) do(ctx context.Context, rawURL string) (*Response, error) {
	if s.client.limiter != nil {
		if err := s.client.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	start := time.Now()
	httpResp, err := s.http.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("failed to read response body: %w", err)}
	}

	s.client.collector.ObserveRequest(endpointFor(rawURL), httpResp.StatusCode, time.Since(start))

	return &Response{
		URL:        rawURL,
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

func endpointFor(rawURL string) metrics.Endpoint {
	u, err := url.Parse(rawURL)
	if err != nil {
		return metrics.EndpointOther
	}
	return metrics.EndpointFor(u.Path)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
