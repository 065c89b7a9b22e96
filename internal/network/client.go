// Package network is the HTTP collaborator used by scrapers and the
// recognizer client.
package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout bounds a single request when the caller sets none.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies outgoing requests.
	DefaultUserAgent = "entryscrape/1.0 (+https://github.com/matsen/entryscrape)"

	retryWait = 250 * time.Millisecond
)

// ErrStatus matches any response with a non-2xx status.
var ErrStatus = errors.New("unexpected HTTP status")

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Method     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
}

// Unwrap lets errors.Is(err, ErrStatus) match.
func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// DefaultRetry makes a Request use the client's retry count.
const DefaultRetry = -1

// Request carries per-call settings. The zero value makes a single attempt
// with the client's timeout.
type Request struct {
	Headers map[string]string
	// Retry is the number of extra attempts after a failure.
	Retry   int
	Timeout time.Duration
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	URL        string // final URL after redirects
}

// Client wraps a resty client with retry and timeout handling.
type Client struct {
	http      *resty.Client
	retries   int
	timeout   time.Duration
	userAgent string
	logger    *zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetries sets the default number of retries.
func WithRetries(n int) Option {
	return func(c *Client) {
		c.retries = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = &l
	}
}

// New creates a client.
func New(opts ...Option) *Client {
	c := &Client{
		http:      resty.New(),
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = &log.Logger
	}

	c.http.SetLogger(restyLogger{c.logger})
	c.http.SetHeader("User-Agent", c.userAgent)
	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		c.logger.Debug().Str("source", "network").Str("method", req.Method).Str("url", req.URL).Msg("start request")
		return nil
	})
	c.http.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		c.logger.Debug().Str("source", "network").
			Str("method", res.Request.Method).
			Str("url", res.Request.URL).
			Int("status", res.StatusCode()).
			Dur("elapsed", res.Time()).
			Msg("request finished")
		return nil
	})
	return c
}

// Get fetches url.
func (c *Client) Get(ctx context.Context, url string, req Request) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, nil, req)
}

// Post sends body to url. Non-byte bodies are encoded as JSON.
func (c *Client) Post(ctx context.Context, url string, body any, req Request) (*Response, error) {
	return c.do(ctx, http.MethodPost, url, body, req)
}

// Download streams url into the file at dest.
func (c *Client) Download(ctx context.Context, url, dest string, req Request) error {
	return c.retry(ctx, req, func(ctx context.Context) error {
		r := c.http.R().SetContext(ctx).SetHeaders(req.Headers).SetOutput(dest)
		res, err := r.Get(url)
		if err != nil {
			return fmt.Errorf("downloading %s: %w", url, err)
		}
		return checkStatus(res)
	})
}

func (c *Client) do(ctx context.Context, method, url string, body any, req Request) (*Response, error) {
	var out *Response
	err := c.retry(ctx, req, func(ctx context.Context) error {
		r := c.http.R().SetContext(ctx).SetHeaders(req.Headers)
		if body != nil {
			r.SetBody(body)
		}
		res, err := r.Execute(method, url)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, url, err)
		}
		if err := checkStatus(res); err != nil {
			return err
		}
		out = &Response{
			StatusCode: res.StatusCode(),
			Body:       res.Body(),
			Header:     res.Header(),
			URL:        finalURL(res),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// retry runs call up to 1+retries times, each under its own timeout.
// Client errors (4xx) are not retried.
func (c *Client) retry(ctx context.Context, req Request, call func(context.Context) error) error {
	retries := req.Retry
	if retries < 0 {
		retries = c.retries
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryWait * time.Duration(attempt)):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		err = call(callCtx)
		cancel()
		if err == nil || !retryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests
	}
	return true
}

func checkStatus(res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}
	return &StatusError{
		StatusCode: res.StatusCode(),
		Method:     res.Request.Method,
		URL:        res.Request.URL,
	}
}

func finalURL(res *resty.Response) string {
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		return res.RawResponse.Request.URL.String()
	}
	return res.Request.URL
}

// restyLogger routes resty's internal messages through zerolog.
type restyLogger struct {
	l *zerolog.Logger
}

func (r restyLogger) Errorf(format string, v ...any) {
	r.l.Error().Str("source", "resty").Msgf(format, v...)
}

func (r restyLogger) Warnf(format string, v ...any) {
	r.l.Warn().Str("source", "resty").Msgf(format, v...)
}

func (r restyLogger) Debugf(format string, v ...any) {
	r.l.Debug().Str("source", "resty").Msgf(format, v...)
}
