package webr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPTransport_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "1" {
			t.Errorf("X-Test = %v, want 1", r.Header.Get("X-Test"))
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %v, want application/json", r.Header.Get("Accept"))
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(nil, 0)
	resp, err := transport.Do(context.Background(), &Request{
		Op:     "health",
		Method: http.MethodGet,
		URL:    server.URL,
		Header: http.Header{"X-Test": []string{"1"}},
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("Body = %s", resp.Body)
	}
	if resp.Latency <= 0 {
		t.Errorf("Latency = %v, want > 0", resp.Latency)
	}
}

func TestHTTPTransport_StatusCodes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"created", http.StatusCreated, false},
		{"bad request", http.StatusBadRequest, true},
		{"unavailable", http.StatusServiceUnavailable, true},
		{"redirect loop target", http.StatusNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("body"))
			}))
			defer server.Close()

			_, err := NewHTTPTransport(nil, 0).Do(context.Background(), &Request{Op: "health", Method: http.MethodGet, URL: server.URL})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			var transportErr *TransportError
			if !errors.As(err, &transportErr) {
				t.Fatalf("error type = %T, want *TransportError", err)
			}
			if transportErr.StatusCode != tt.status || string(transportErr.Body) != "body" {
				t.Errorf("StatusCode = %d Body = %q", transportErr.StatusCode, transportErr.Body)
			}
		})
	}
}

func TestHTTPTransport_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewHTTPTransport(nil, 0).Do(context.Background(), &Request{Op: "health", Method: http.MethodGet, URL: url, Timeout: time.Second})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error type = %T, want *TransportError", err)
	}
	if transportErr.Kind != KindUnreachable {
		t.Errorf("Kind = %v, want unreachable", transportErr.Kind)
	}
}

func TestHTTPTransport_CallerDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := NewHTTPTransport(nil, 0).Do(ctx, &Request{Op: "health", Method: http.MethodGet, URL: server.URL})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) || !transportErr.Timeout() {
		t.Errorf("Do() error = %v, want timeout", err)
	}
}

func TestHTTPTransport_MaxBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	_, err := NewHTTPTransport(nil, 32).Do(context.Background(), &Request{Op: "health", Method: http.MethodGet, URL: server.URL})
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("Do() error = %v, want ErrResponseTooLarge", err)
	}

	resp, err := NewHTTPTransport(nil, 64).Do(context.Background(), &Request{Op: "health", Method: http.MethodGet, URL: server.URL})
	if err != nil {
		t.Fatalf("Do() at exact limit error = %v", err)
	}
	if len(resp.Body) != 64 {
		t.Errorf("len(Body) = %d, want 64", len(resp.Body))
	}
}

func TestHTTPTransport_MaxBytesErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("e", 64)))
	}))
	defer server.Close()

	_, err := NewHTTPTransport(nil, 16).Do(context.Background(), &Request{Op: "execute", Method: http.MethodPost, URL: server.URL, Body: []byte(`{}`)})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Do() error = %v, want *TransportError", err)
	}
	if te.Kind != KindStatus {
		t.Errorf("Kind = %v, want status", te.Kind)
	}
	if te.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", te.StatusCode)
	}
	if string(te.Body) != strings.Repeat("e", 16) {
		t.Errorf("Body = %q, want first 16 bytes", te.Body)
	}
	if errors.Is(err, ErrResponseTooLarge) {
		t.Error("error status must not be reported as oversize")
	}
}

func TestHTTPTransport_BodySent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %v", r.Header.Get("Content-Type"))
		}
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		w.Write(buf[:n])
	}))
	defer server.Close()

	resp, err := NewHTTPTransport(nil, 0).Do(context.Background(), &Request{
		Op:     "health",
		Method: http.MethodPost,
		URL:    server.URL,
		Body:   []byte(`{"code":"1"}`),
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if string(resp.Body) != `{"code":"1"}` {
		t.Errorf("Body = %s", resp.Body)
	}
}
