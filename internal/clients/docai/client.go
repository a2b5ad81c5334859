// Package docai talks to the external document-processing services that
// extract AI-queryable content from uploaded assets. Every provider exposes
// the same two-call contract: submit a document, then poll the returned job
// id until it reaches a terminal state.
package docai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trainforge/trainforge-backend/internal/platform/ctxutil"
	"github.com/trainforge/trainforge-backend/internal/platform/httpx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// Job states as normalized across providers. Submitted jobs report
// "processing" until the provider says otherwise.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Provider names. These are the values stored on document_job rows and the
// values the routing config refers to.
const (
	ProviderChatbot   = "chatbot"
	ProviderSiemens   = "siemens"
	ProviderAssistant = "assistant"
)

// JobStatus is a provider's answer to a status poll. Error is only set when
// Status is StatusFailed.
type JobStatus struct {
	Status string
	Error  string
}

// DocumentClient is the contract every document provider implements.
type DocumentClient interface {
	Provider() string
	SubmitDocument(ctx context.Context, assetID uint, url string, filetype string) (string, error)
	GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error)
}

// Options configures one provider client. APIKeyHeader names the header the
// key is sent in verbatim; when empty the key goes out as a bearer token.
type Options struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	Timeout      time.Duration
	MaxRetries   int
}

type httpCore struct {
	provider   string
	log        *logger.Logger
	opts       Options
	httpClient *http.Client
	maxRetries int
}

func newHTTPCore(provider string, log *logger.Logger, opts Options) (*httpCore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	opts.BaseURL = strings.TrimSpace(opts.BaseURL)
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("missing %s document API base URL", provider)
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	opts.APIKey = strings.TrimSpace(opts.APIKey)

	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 2
	}

	return &httpCore{
		provider:   provider,
		log:        log.With("client", provider+"DocClient"),
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		maxRetries: opts.MaxRetries,
	}, nil
}

// ---------- HTTP / retry helpers ----------

// Error bodies are read through a limit so a misbehaving provider cannot
// balloon memory.
const maxBodyBytes = 1 << 20

type apiError struct {
	ErrorText string `json:"error"`
	Message   string `json:"message"`
	Detail    string `json:"detail"`
}

func (e *apiError) text() string {
	if e == nil {
		return ""
	}
	for _, s := range []string{e.Message, e.ErrorText, e.Detail} {
		if strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
	APIError   *apiError
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "docai: <nil error>"
	}
	msg := e.APIError.text()
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
		if msg == "" {
			msg = "<empty body>"
		}
		if len(msg) > 4000 {
			msg = msg[:4000] + "..."
		}
	}
	return fmt.Sprintf("%s http %d: %s", e.Provider, e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func postJSON[T any](c *httpCore, ctx context.Context, path string, body any) (*T, error) {
	return doJSON[T](c, ctx, http.MethodPost, c.opts.BaseURL+path, body)
}

func getJSON[T any](c *httpCore, ctx context.Context, path string) (*T, error) {
	return doJSON[T](c, ctx, http.MethodGet, c.opts.BaseURL+path, nil)
}

func doJSON[T any](c *httpCore, ctx context.Context, method, urlStr string, body any) (*T, error) {
	ctx = ctxutil.Default(ctx)
	backoff := 250 * time.Millisecond

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		out, resp, err := doJSONOnce[T](c, ctx, method, urlStr, body)
		if err == nil {
			return out, nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return nil, err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("document request retrying",
			"url", urlStr,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return nil, fmt.Errorf("unreachable retry loop")
}

func doJSONOnce[T any](c *httpCore, ctx context.Context, method, urlStr string, body any) (*T, *http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, reader)
	if err != nil {
		return nil, nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.APIKey != "" {
		if c.opts.APIKeyHeader != "" {
			req.Header.Set(c.opts.APIKeyHeader, c.opts.APIKey)
		} else {
			req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resp, err
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.text() != "" {
			return nil, resp, &HTTPError{Provider: c.provider, StatusCode: resp.StatusCode, Body: string(raw), APIError: &ae}
		}
		return nil, resp, &HTTPError{Provider: c.provider, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out T
	if len(raw) == 0 {
		return &out, resp, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, resp, fmt.Errorf("%s decode error: %w; raw=%s", c.provider, err, string(raw))
	}
	return &out, resp, nil
}
