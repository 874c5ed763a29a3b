package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/moodcrowd/internal/shared"
	tu "github.com/desertthunder/moodcrowd/internal/testing"
)

func newTestClient(t *testing.T, opts ClientOptions) *APIClient {
	t.Helper()
	c, err := NewAPIClient(opts)
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	return c
}

func TestAPIClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			c := newTestClient(t, ClientOptions{})

			if c.baseURL != defaultBaseURL {
				t.Errorf("expected baseURL %s, got %s", defaultBaseURL, c.baseURL)
			}
			if c.analyzeURL != c.baseURL {
				t.Errorf("expected analyzeURL to default to baseURL, got %s", c.analyzeURL)
			}
			if c.userAgent != defaultUserAgent {
				t.Errorf("expected default user agent, got %s", c.userAgent)
			}
			if c.limiter != nil {
				t.Error("expected no limiter when requests_per_second is 0")
			}
		})

		t.Run("Trailing Slash Trimmed", func(t *testing.T) {
			c := newTestClient(t, ClientOptions{BaseURL: "http://example.com/", AnalyzeURL: "http://127.0.0.1:8000/"})

			if c.baseURL != "http://example.com" || c.analyzeURL != "http://127.0.0.1:8000" {
				t.Errorf("unexpected urls %s %s", c.baseURL, c.analyzeURL)
			}
		})

		t.Run("Limiter", func(t *testing.T) {
			c := newTestClient(t, ClientOptions{RequestsPerSecond: 2})
			if c.limiter == nil {
				t.Error("expected limiter")
			}
		})

		t.Run("From Config", func(t *testing.T) {
			cfg := shared.DefaultConfig()
			opts := OptionsFromConfig(cfg.API, nil)

			if opts.BaseURL != cfg.API.BaseURL || opts.Timeout != cfg.API.Timeout.Duration {
				t.Errorf("options not mapped from config: %+v", opts)
			}
		})
	})

	t.Run("Call", func(t *testing.T) {
		t.Run("Successful Request", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/test" {
					t.Errorf("expected path '/test', got %s", r.URL.Path)
				}
				if r.Header.Get("X-Request-ID") == "" {
					t.Error("expected X-Request-ID header")
				}
				if r.Header.Get("User-Agent") != "moodcrowd-test" {
					t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
				}
				if r.Header.Get("X-Custom") != "yes" {
					t.Error("expected caller header to be forwarded")
				}
				w.Write([]byte(`{"status":"success"}`))
			}))
			defer server.Close()

			c := newTestClient(t, ClientOptions{BaseURL: server.URL, UserAgent: "moodcrowd-test"})
			raw, err := c.Call(context.Background(), "/test", "", http.Header{"X-Custom": []string{"yes"}}, nil)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(raw) != `{"status":"success"}` {
				t.Errorf("unexpected body %s", raw)
			}
		})

		t.Run("Non-2xx Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"detail":"bad file"}`))
			}))
			defer server.Close()

			c := newTestClient(t, ClientOptions{BaseURL: server.URL})
			_, err := c.Call(context.Background(), "/test", http.MethodPost, nil, nil)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", apiErr.Status)
			}
			if !strings.Contains(apiErr.Body, "bad file") {
				t.Errorf("expected body captured, got %q", apiErr.Body)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected ErrAPIRequest")
			}
			if errors.Is(err, shared.ErrNotAuthenticated) {
				t.Error("400 should not be ErrNotAuthenticated")
			}
		})

		t.Run("Unauthorized", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "login required", http.StatusUnauthorized)
			}))
			defer server.Close()

			c := newTestClient(t, ClientOptions{BaseURL: server.URL})
			err := c.Probe(context.Background())

			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Transport Failure Has Status Zero", func(t *testing.T) {
			c := newTestClient(t, ClientOptions{
				BaseURL:   "http://example.com",
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused")),
			})
			_, err := c.Call(context.Background(), "/test", http.MethodGet, nil, nil)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != 0 {
				t.Errorf("expected status 0, got %d", apiErr.Status)
			}
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Error("expected ErrServiceUnavailable")
			}
			if !strings.Contains(err.Error(), "connection refused") {
				t.Errorf("expected cause in message, got %v", err)
			}
		})

		t.Run("Body Read Failure", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
			c := newTestClient(t, ClientOptions{
				BaseURL:   "http://example.com",
				Transport: tu.NewMockRoundTripper(resp, nil),
			})
			_, err := c.Call(context.Background(), "/test", http.MethodGet, nil, nil)

			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected read failure, got %v", err)
			}
			if !strings.Contains(err.Error(), "read failed") {
				t.Errorf("expected cause in message, got %v", err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Err == nil {
				t.Errorf("expected APIError carrying the cause, got %#v", err)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Cancelled While Paced", func(t *testing.T) {
			c := newTestClient(t, ClientOptions{BaseURL: "http://example.com", RequestsPerSecond: 1})
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := c.Call(ctx, "/test", http.MethodGet, nil, nil)
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("Timeout", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			}))
			defer server.Close()

			c := newTestClient(t, ClientOptions{BaseURL: server.URL, Timeout: 20 * time.Millisecond})
			_, err := c.Call(context.Background(), "/slow", http.MethodGet, nil, nil)

			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Status != 0 {
				t.Errorf("expected status 0 APIError, got %v", err)
			}
		})
	})

	t.Run("APIError", func(t *testing.T) {
		tt := []struct {
			name string
			err  *APIError
			want string
		}{
			{name: "offline", err: &APIError{Err: io.ErrUnexpectedEOF}, want: "service unavailable: unexpected EOF"},
			{name: "offline without cause", err: &APIError{}, want: "service unavailable"},
			{name: "status with body", err: &APIError{Status: 500, Body: " boom\n"}, want: "HTTP 500: boom"},
			{name: "status without body", err: &APIError{Status: 502}, want: "HTTP 502"},
			{name: "status with cause", err: &APIError{Status: 200, Err: io.ErrUnexpectedEOF}, want: "HTTP 200: unexpected EOF"},
		}
		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				if got := tc.err.Error(); got != tc.want {
					t.Errorf("got %q, want %q", got, tc.want)
				}
				if tc.err.Err != nil && !errors.Is(tc.err, tc.err.Err) {
					t.Errorf("expected %v to unwrap to its cause", tc.err)
				}
			})
		}
	})
}
