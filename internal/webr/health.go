package webr

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HealthStatus is the readiness view of the service. Ready=false is a
// legitimate answer from a server that is still initializing.
type HealthStatus struct {
	Ready         bool
	UptimeSeconds float64
	HasUptime     bool
	Latency       time.Duration
}

// Uptime returns the server-reported uptime, zero when not reported
func (h *HealthStatus) Uptime() time.Duration {
	return time.Duration(h.UptimeSeconds * float64(time.Second))
}

const opDecodeHealth = "decode health"

// DecodeHealth decodes an /api/health response body. A missing
// webrInitialized flag reads as not ready.
func DecodeHealth(body []byte) (*HealthStatus, error) {
	fields, err := decodeObject(opDecodeHealth, body)
	if err != nil {
		return nil, err
	}

	ready, _, err := boolField(opDecodeHealth, fields, "webrInitialized")
	if err != nil {
		return nil, err
	}

	status := &HealthStatus{Ready: ready}

	uptime, ok, err := numberField(opDecodeHealth, fields, "uptime")
	if err != nil {
		return nil, err
	}
	if ok {
		if uptime < 0 {
			return nil, &DecodeError{Op: opDecodeHealth, Field: "uptime", Index: -1, Err: fmt.Errorf("%w: negative value %v", ErrMalformedResponse, uptime)}
		}
		status.UptimeSeconds = uptime
		status.HasUptime = true
	}

	return status, nil
}

// Health queries /api/health once. There is no retry or backoff here;
// callers poll at an interval of their choosing.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	reqID := c.newRequestID()

	raw, err := c.transport.Do(ctx, &Request{
		Op:      "health",
		Method:  http.MethodGet,
		URL:     c.baseURL + "/api/health",
		Header:  c.header(reqID),
		Timeout: c.healthTimeout,
	})
	if err != nil {
		c.logger.Warn("health check failed", "request_id", reqID, "error", err)
		return nil, err
	}

	status, err := DecodeHealth(raw.Body)
	if err != nil {
		c.logger.Warn("health response malformed", "request_id", reqID, "error", err)
		return nil, err
	}
	status.Latency = raw.Latency

	c.logger.Debug("health checked",
		"request_id", reqID,
		"ready", status.Ready,
		"latency", raw.Latency,
	)
	return status, nil
}

// Ready reports whether the service answered and declared itself
// initialized. Transport and decode failures read as false.
func (c *Client) Ready(ctx context.Context) bool {
	status, err := c.Health(ctx)
	return err == nil && status.Ready
}
