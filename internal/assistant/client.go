package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 45 * time.Second
	tracerName     = "github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/assistant"
)

// ErrAssistantUnavailable wraps every failure to obtain a reply: transport, status or payload.
var ErrAssistantUnavailable = errors.New("assistant: unavailable")

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation sent to the endpoint.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Options configures a Client.
type Options struct {
	Endpoint  string
	Model     string
	WebSearch bool
	Timeout   time.Duration
	HTTP      *http.Client
}

// Client posts the conversation to a chat completion endpoint.
type Client struct {
	endpoint  string
	model     string
	webSearch bool
	http      *http.Client
	tracer    trace.Tracer
}

// NewClient constructs a client. A zero Timeout uses the default.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := &http.Client{}
	if opts.HTTP != nil {
		copied := *opts.HTTP
		hc = &copied
	}
	hc.Timeout = timeout
	return &Client{
		endpoint:  strings.TrimSpace(opts.Endpoint),
		model:     strings.TrimSpace(opts.Model),
		webSearch: opts.WebSearch,
		http:      hc,
		tracer:    otel.Tracer(tracerName),
	}
}

// Configured reports whether an endpoint is set.
func (c *Client) Configured() bool { return c != nil && c.endpoint != "" }

type completionRequest struct {
	Messages  []Message `json:"messages"`
	Model     string    `json:"model,omitempty"`
	WebSearch bool      `json:"web_search,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	SearchResults []SearchResult `json:"search_results"`
	Citations     []Citation     `json:"citations"`
}

// Complete sends the full message history and returns the assistant's reply.
func (c *Client) Complete(ctx context.Context, messages []Message) (Reply, error) {
	if !c.Configured() {
		return Reply{}, fmt.Errorf("%w: no endpoint configured", ErrAssistantUnavailable)
	}
	ctx, span := c.tracer.Start(ctx, "assistant.Complete", trace.WithAttributes(
		attribute.Int("assistant.messages", len(messages)),
		attribute.String("assistant.model", c.model),
		attribute.Bool("assistant.web_search", c.webSearch),
	))
	defer span.End()

	reply, err := c.complete(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Reply{}, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}
	span.SetAttributes(
		attribute.Int("assistant.search_results", len(reply.SearchResults)),
		attribute.Int("assistant.citations", len(reply.Citations)),
	)
	return reply, nil
}

func (c *Client) complete(ctx context.Context, messages []Message) (Reply, error) {
	payload, err := json.Marshal(completionRequest{Messages: messages, Model: c.model, WebSearch: c.webSearch})
	if err != nil {
		return Reply{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Reply{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Reply{}, fmt.Errorf("status %d: %s", resp.StatusCode, drainError(resp.Body))
	}

	var body completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Reply{}, fmt.Errorf("decode response: %w", err)
	}
	if len(body.Choices) == 0 || strings.TrimSpace(body.Choices[0].Message.Content) == "" {
		return Reply{}, errors.New("response has no choices[0].message.content")
	}
	return Reply{
		Content:       body.Choices[0].Message.Content,
		SearchResults: body.SearchResults,
		Citations:     body.Citations,
	}, nil
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
