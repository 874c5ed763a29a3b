package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodcrowd/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://moodcrowd.onrender.com"
	defaultUserAgent = "moodcrowd-cli"
	maxErrorBody     = 4096
)

// APIError is a failed backend call.
type APIError struct {
	Status int    // HTTP status, 0 when no response was received
	Body   string // response body captured for diagnostics
	Err    error  // transport or read failure, if any
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%v: %v", shared.ErrServiceUnavailable, e.Err)
		}
		return shared.ErrServiceUnavailable.Error()
	}

	msg := fmt.Sprintf("HTTP %d", e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the matching sentinel and the cause, when there is one.
func (e *APIError) Unwrap() []error {
	var errs []error
	switch {
	case e.Status == 0:
		errs = []error{shared.ErrServiceUnavailable}
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		errs = []error{shared.ErrNotAuthenticated, shared.ErrAPIRequest}
	default:
		errs = []error{shared.ErrAPIRequest}
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ClientOptions configures [NewAPIClient].
type ClientOptions struct {
	BaseURL           string
	AnalyzeURL        string // defaults to BaseURL
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables pacing
	UserAgent         string
	Transport         http.RoundTripper
	Logger            *log.Logger
}

// OptionsFromConfig maps the [api] config section onto [ClientOptions].
func OptionsFromConfig(cfg shared.APIConfig, logger *log.Logger) ClientOptions {
	return ClientOptions{
		BaseURL:           cfg.BaseURL,
		AnalyzeURL:        cfg.AnalyzeURL,
		Timeout:           cfg.Timeout.Duration,
		RequestsPerSecond: cfg.RequestsPerSecond,
		UserAgent:         cfg.UserAgent,
		Logger:            logger,
	}
}

// APIClient calls the moodcrowd backend.
type APIClient struct {
	baseURL    string
	analyzeURL string
	userAgent  string
	jar        *cookiejar.Jar
	httpClient *http.Client // carries the cookie jar
	analyzer   *http.Client // no credentials
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewAPIClient creates a client with an empty cookie jar.
func NewAPIClient(opts ClientOptions) (*APIClient, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%w: base url: %v", shared.ErrInvalidConfig, err)
	}

	analyzeURL := strings.TrimRight(opts.AnalyzeURL, "/")
	if analyzeURL == "" {
		analyzeURL = baseURL
	}
	if _, err := url.Parse(analyzeURL); err != nil {
		return nil, fmt.Errorf("%w: analyze url: %v", shared.ErrInvalidConfig, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	c := &APIClient{
		baseURL:    baseURL,
		analyzeURL: analyzeURL,
		userAgent:  userAgent,
		jar:        jar,
		httpClient: &http.Client{Transport: opts.Transport, Timeout: opts.Timeout, Jar: jar},
		analyzer:   &http.Client{Transport: opts.Transport, Timeout: opts.Timeout},
		logger:     logger,
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c, nil
}

// BaseURL returns the backend address.
func (c *APIClient) BaseURL() string { return c.baseURL }

// SetLogger redirects request logging, e.g. to a file while the TUI owns the terminal.
func (c *APIClient) SetLogger(l *log.Logger) { c.logger = l }

// Call sends a request with session credentials and returns the raw JSON body.
//
// A non-2xx response or transport failure is returned as [*APIError].
func (c *APIClient) Call(ctx context.Context, path, method string, header http.Header, body io.Reader) (json.RawMessage, error) {
	return c.do(ctx, c.httpClient, c.baseURL, path, method, header, body)
}

func (c *APIClient) do(ctx context.Context, client *http.Client, base, path, method string, header http.Header, body io.Reader) (json.RawMessage, error) {
	if method == "" {
		method = http.MethodGet
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &APIError{Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return nil, &APIError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	requestID := shared.GenerateID()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", c.userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	logger := shared.WithLogger(c.logger, "method", method, "path", path, "request_id", requestID)
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		logger.Debug("request failed", "error", err)
		return nil, &APIError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	logger.Debug("request finished", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	return json.RawMessage(data), nil
}

// callJSON encodes payload (when non-nil) and decodes the response into out (when non-nil).
func (c *APIClient) callJSON(ctx context.Context, path, method string, payload, out any) error {
	var (
		body   io.Reader
		header http.Header
	)
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
		header = http.Header{"Content-Type": []string{"application/json"}}
	}

	raw, err := c.Call(ctx, path, method, header, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %v", shared.ErrAPIRequest, path, err)
	}
	return nil
}
