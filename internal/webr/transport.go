package webr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// ErrResponseTooLarge is wrapped when a body exceeds the configured limit
var ErrResponseTooLarge = errors.New("response body exceeds limit")

// Request is a single protocol call handed to a Transport
type Request struct {
	Op      string
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// RawResponse is a fully buffered 2xx response
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Latency    time.Duration
}

// Transport performs one network exchange. Implementations must be safe
// for concurrent use and return *TransportError for every failure,
// including non-2xx statuses.
type Transport interface {
	Do(ctx context.Context, req *Request) (*RawResponse, error)
}

// HTTPTransport is the net/http implementation of Transport
type HTTPTransport struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPTransport creates a transport over the given client. The
// connection pool of the client is shared by all calls. maxBytes <= 0
// disables the body limit.
func NewHTTPTransport(client *http.Client, maxBytes int64) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{client: client, maxBytes: maxBytes}
}

// Do sends the request and buffers the whole body before returning
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*RawResponse, error) {
	callCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(callCtx, req.Method, req.URL, body)
	if err != nil {
		return nil, &TransportError{Op: req.Op, URL: req.URL, Kind: KindUnreachable, Err: err}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, t.classify(ctx, callCtx, req, err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if t.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, t.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, t.classify(ctx, callCtx, req, err)
	}
	oversize := t.maxBytes > 0 && int64(len(data)) > t.maxBytes

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if oversize {
			data = data[:t.maxBytes]
		}
		return nil, &TransportError{
			Op:         req.Op,
			URL:        req.URL,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Body:       data,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if oversize {
		return nil, &TransportError{
			Op:         req.Op,
			URL:        req.URL,
			Kind:       KindOversize,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, t.maxBytes),
		}
	}

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Latency:    time.Since(start),
	}, nil
}

// classify separates caller cancellation from deadline expiry and plain
// connection failures.
func (t *HTTPTransport) classify(parent, call context.Context, req *Request, err error) error {
	kind := KindUnreachable
	var netErr net.Error
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		kind = KindCanceled
	case errors.Is(parent.Err(), context.DeadlineExceeded),
		errors.Is(call.Err(), context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}
	return &TransportError{Op: req.Op, URL: req.URL, Kind: kind, Err: err}
}
