// ============================================================================
// mDW WebR Client - Remote R Execution
// ============================================================================
//
// Package:     webr
// Description: Execution client for the WebR remote R execution protocol
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package webr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msto63/webr/pkg/core/version"
)

// Protocol defaults
const (
	DefaultBaseURL          = "https://webr.mimilabs.org"
	DefaultExecuteTimeout   = 65 * time.Second
	DefaultHealthTimeout    = 5 * time.Second
	DefaultMaxResponseBytes = 32 << 20
	DefaultUserAgent        = "webr-go/" + version.Client
)

// Logger is the key-value logger the client reports to. A nil Logger
// keeps the client silent.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Config holds client configuration
type Config struct {
	BaseURL          string
	ExecuteTimeout   time.Duration
	HealthTimeout    time.Duration
	UserAgent        string
	MaxResponseBytes int64

	// Transport overrides the HTTP transport, mainly for tests
	Transport Transport
	Logger    Logger
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		ExecuteTimeout:   DefaultExecuteTimeout,
		HealthTimeout:    DefaultHealthTimeout,
		UserAgent:        DefaultUserAgent,
		MaxResponseBytes: DefaultMaxResponseBytes,
	}
}

// Client is the WebR execution client. It keeps no per-call state and is
// safe for concurrent use when its Transport is.
type Client struct {
	baseURL        string
	executeTimeout time.Duration
	healthTimeout  time.Duration
	userAgent      string
	transport      Transport
	logger         Logger
}

// NewClient creates a new client. Zero values in cfg fall back to the defaults.
func NewClient(cfg Config) (*Client, error) {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.ExecuteTimeout == 0 {
		cfg.ExecuteTimeout = def.ExecuteTimeout
	}
	if cfg.HealthTimeout == 0 {
		cfg.HealthTimeout = def.HealthTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MaxResponseBytes == 0 {
		cfg.MaxResponseBytes = def.MaxResponseBytes
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, &RequestError{Field: "base_url", Err: fmt.Errorf("%w: %q", ErrInvalidConfig, cfg.BaseURL)}
	}
	if cfg.ExecuteTimeout < 0 || cfg.HealthTimeout < 0 {
		return nil, &RequestError{Field: "timeout", Err: fmt.Errorf("%w: negative timeout", ErrInvalidConfig)}
	}

	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport(&http.Client{}, cfg.MaxResponseBytes)
	}
	var logger Logger = nopLogger{}
	if cfg.Logger != nil {
		logger = cfg.Logger
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		executeTimeout: cfg.ExecuteTimeout,
		healthTimeout:  cfg.HealthTimeout,
		userAgent:      cfg.UserAgent,
		transport:      transport,
		logger:         logger,
	}, nil
}

// BaseURL returns the service base URL
func (c *Client) BaseURL() string { return c.baseURL }

// State is the phase of a single execute call
type State int

const (
	StateIdle State = iota
	StateMarshaling
	StateAwaitingResponse
	StateDecoding
	StateSucceeded
	StateFailed
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMarshaling:
		return "marshaling"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateDecoding:
		return "decoding"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Execute runs code on the server and returns the decoded result.
// Cancelling ctx aborts the in-flight request. A result with
// Success=false is returned without error.
func (c *Client) Execute(ctx context.Context, code string, records Records) (*ExecutionResult, error) {
	return c.execute(ctx, code, records)
}

// ExecuteSync is the blocking variant. It cannot be canceled; only the
// execute timeout bounds it.
func (c *Client) ExecuteSync(code string, records Records) (*ExecutionResult, error) {
	return c.execute(context.Background(), code, records)
}

// Outcome is delivered by ExecuteAsync
type Outcome struct {
	Result *ExecutionResult
	Err    error
}

// ExecuteAsync starts the call in a goroutine and delivers exactly one
// Outcome on the returned channel.
func (c *Client) ExecuteAsync(ctx context.Context, code string, records Records) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		result, err := c.execute(ctx, code, records)
		out <- Outcome{Result: result, Err: err}
	}()
	return out
}

// ExecuteOrFail is Execute with domain failures folded into the error
// channel as *ExecutionError.
func (c *Client) ExecuteOrFail(ctx context.Context, code string, records Records) (*ExecutionResult, error) {
	result, err := c.execute(ctx, code, records)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return result, &ExecutionError{Message: result.ErrorMessage, Result: result}
	}
	return result, nil
}

// execute is the shared core of all entry points
func (c *Client) execute(ctx context.Context, code string, records Records) (*ExecutionResult, error) {
	reqID := c.newRequestID()
	start := time.Now()
	state := StateIdle

	step := func(next State) {
		c.logger.Debug("execute state", "request_id", reqID, "from", state.String(), "to", next.String())
		state = next
	}
	fail := func(err error) (*ExecutionResult, error) {
		step(StateFailed)
		c.logger.Warn("execute failed",
			"request_id", reqID,
			"duration", time.Since(start),
			"error", err,
		)
		return nil, err
	}

	step(StateMarshaling)
	body, err := MarshalRequest(code, records)
	if err != nil {
		return fail(err)
	}

	step(StateAwaitingResponse)
	raw, err := c.transport.Do(ctx, &Request{
		Op:      "execute",
		Method:  http.MethodPost,
		URL:     c.baseURL + "/api/execute",
		Header:  c.header(reqID),
		Body:    body,
		Timeout: c.executeTimeout,
	})
	if err != nil {
		return fail(err)
	}

	step(StateDecoding)
	result, err := DecodeResult(raw.Body)
	if err != nil {
		return fail(err)
	}

	step(StateSucceeded)
	c.logger.Info("execute completed",
		"request_id", reqID,
		"records", len(records),
		"success", result.Success,
		"execution_time_ms", result.ExecutionTimeMillis,
		"artifacts", len(result.Artifacts),
		"failed_artifacts", result.FailedArtifacts(),
		"duration", time.Since(start),
	)
	return result, nil
}

func (c *Client) newRequestID() string {
	return uuid.NewString()
}

func (c *Client) header(reqID string) http.Header {
	h := make(http.Header)
	h.Set("X-Request-ID", reqID)
	h.Set("User-Agent", c.userAgent)
	return h
}
