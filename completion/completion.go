// Package completion is a stateless wrapper around a remote chat-completion
// endpoint. It builds authenticated requests, parses structured responses and
// maps transport or shape failures into a single *Error type. It performs no
// retries; callers decide whether a failure is worth another attempt.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rishikanchi/Callo/internal/types"
)

// ErrNoChoices is returned when the endpoint answers successfully but carries
// no choices to consume.
var ErrNoChoices = errors.New("completion response contains no choices")

// Error is the uniform failure value for this client. Every failed call
// returns one, with Message describing what went wrong.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion: %s: %v", e.Message, e.Err)
	}
	return "completion: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Request is the outbound chat-completion payload.
type Request struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	Stream      bool            `json:"stream"`
	Seed        int             `json:"seed"`
	TopP        float64         `json:"top_p"`
}

// NewRequest builds a Request with the endpoint's conventional defaults:
// unbounded tokens, no streaming, seed 0, top_p 1.
func NewRequest(model string, messages []types.Message, temperature float64) Request {
	return Request{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   -1,
		TopP:        1.0,
	}
}

// Choice is one candidate reply.
type Choice struct {
	Index        int           `json:"index"`
	Message      types.Message `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// Usage reports token accounting for a completed request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the decoded chat-completion reply.
type Response struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// FirstChoice returns the content of the first choice's message, or a typed
// failure when the response carries none.
func (r *Response) FirstChoice() (string, error) {
	if len(r.Choices) == 0 {
		return "", &Error{Message: "no response received", Err: ErrNoChoices}
	}
	return r.Choices[0].Message.Content, nil
}

// Client talks to one completion endpoint. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	debug   bool
}

// Option configures a Client during construction.
type Option func(*Client) error

// WithHTTPTimeout bounds the total time spent on a single request.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging dumps each request and response when enabled is true. The
// dump transport sits beneath the bearer wrapper, so the credential header is
// not logged. Also enabled via CALLO_DEBUG=true.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = enabled
		return nil
	}
}

// WithHTTPClient substitutes the underlying http.Client, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.http = hc
		return nil
	}
}

// New constructs a Client for the given endpoint. The apiKey is attached to
// every request as a bearer credential via a wrapped transport.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("completion: baseURL must not be empty")
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if c.debug || debugLoggingRequested() {
		base = &debugTransport{base: base}
	}
	c.http.Transport = &bearerTransport{base: base, apiKey: apiKey}
	return c, nil
}

// Complete sends one chat-completion request and decodes the reply.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Message: "request cancelled", Err: err}
	}
	if len(req.Messages) == 0 {
		return nil, &Error{Message: "request has no messages"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Message: "encode request", Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Message: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		completionsTotal.WithLabelValues("transport_error").Inc()
		return nil, &Error{Message: "send request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		completionsTotal.WithLabelValues("http_error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &Error{Message: fmt.Sprintf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		completionsTotal.WithLabelValues("decode_error").Inc()
		return nil, &Error{Message: "decode response", Err: err}
	}
	completionsTotal.WithLabelValues("ok").Inc()
	return &out, nil
}

// bearerTransport adds the Authorization header to every outbound request.
type bearerTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+t.apiKey)
	return t.base.RoundTrip(cloned)
}
