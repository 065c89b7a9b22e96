// Package recognizer is a client for the PDF metadata recognition service.
package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/entryscrape/internal/network"
	"github.com/matsen/entryscrape/internal/pdf"
)

const (
	// DefaultURL is the public recognition endpoint.
	DefaultURL = "https://services.zotero.org/recognizer/recognize"

	// DefaultTimeout bounds one recognition call. No retries are made.
	DefaultTimeout = 5 * time.Second

	// RateLimit is the sustained request rate towards the service.
	RateLimit = 2.0

	// RateBurst lets a batch start several recognitions at once.
	RateBurst = 4
)

// Author is a person returned by the service.
type Author struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Name returns "First Last", trimmed.
func (a Author) Name() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Metadata is the subset of the recognition result that maps onto entities.
type Metadata struct {
	Title   string   `json:"title"`
	Authors []Author `json:"authors"`
	Arxiv   string   `json:"arxiv"`
	DOI     string   `json:"doi"`
	ISBN    string   `json:"isbn"`
	Year    Year     `json:"year"`
	Type    string   `json:"type"`
}

// Empty reports whether the service recognized nothing usable.
func (m *Metadata) Empty() bool {
	return m.Title == "" && len(m.Authors) == 0 && m.Arxiv == "" && m.DOI == ""
}

// AuthorNames returns author names in "First Last" form.
func (m *Metadata) AuthorNames() []string {
	names := make([]string, 0, len(m.Authors))
	for _, a := range m.Authors {
		if n := a.Name(); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Year accepts a JSON string or number.
type Year string

func (y *Year) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*y = Year(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("year: %w", err)
	}
	if _, err := strconv.Atoi(n.String()); err != nil {
		return fmt.Errorf("year: %w", err)
	}
	*y = Year(n.String())
	return nil
}

// Poster is the network call the client needs.
type Poster interface {
	Post(ctx context.Context, url string, body any, req network.Request) (*network.Response, error)
}

// Client is a rate-limited client for the recognition service.
type Client struct {
	net     Poster
	limiter *rate.Limiter
	url     string
	timeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithURL sets a custom endpoint (for testing).
func WithURL(url string) ClientOption {
	return func(c *Client) {
		c.url = url
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLimiter replaces the default rate limiter.
func WithLimiter(l *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient creates a recognizer client sending requests through net.
func NewClient(net Poster, opts ...ClientOption) *Client {
	c := &Client{
		net:     net,
		limiter: rate.NewLimiter(rate.Limit(RateLimit), RateBurst),
		url:     DefaultURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recognize posts the document layout and decodes the returned metadata.
func (c *Client) Recognize(ctx context.Context, doc *pdf.Document) (*Metadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	res, err := c.net.Post(ctx, c.url, doc, network.Request{
		Headers: map[string]string{"Content-Type": "application/json"},
		Timeout: c.timeout,
	})
	if err != nil {
		return nil, fromNetwork(err, doc.FileName)
	}

	body := strings.TrimSpace(string(res.Body))
	if body == "" || body == "null" {
		return nil, fmt.Errorf("%w: %s", ErrNotRecognized, doc.FileName)
	}

	var meta Metadata
	if err := json.Unmarshal([]byte(body), &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &meta, nil
}
