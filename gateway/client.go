package gateway

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

	"github.com/google/uuid"

	ngio "github.com/ngio/ngio-go"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "ngio-go/1.0"

	// maxResponseSize bounds the decoded response body.
	maxResponseSize = 1 << 20
)

var (
	// ErrNoBaseURL is returned by NewClient when the gateway URL is missing.
	ErrNoBaseURL = errors.New("gateway: base URL is required")

	// ErrNoAppID is returned by NewClient when the application id is missing.
	ErrNoAppID = errors.New("gateway: app id is required")

	// ErrEmptyBatch is returned by ExecuteBatch when no components were given.
	ErrEmptyBatch = errors.New("gateway: batch requires at least one component")
)

// StatusError reports a non-2xx gateway response or a request the gateway
// itself rejected before executing any component.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error describes the error operation and its observable behavior.
//
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway: HTTP %d", e.StatusCode)
}

// Config defines a public type used by the gateway client.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// BaseURL is the full gateway endpoint; every call POSTs to it.
	BaseURL string

	// AppID identifies the application on every request and namespaces the
	// session persistence key.
	AppID string

	// HTTPClient overrides the transport. Nil selects a client with a
	// 15 second timeout.
	HTTPClient *http.Client

	// UserAgent overrides the default request user agent.
	UserAgent string
}

// Client implements ngio.Core over the JSON POST gateway protocol.
type Client struct {
	baseURL    string
	appID      string
	httpClient *http.Client
	userAgent  string
}

// NewClient describes the newclient operation and its observable behavior.
//
// NewClient may return an error when input validation, dependency calls, or security checks fail.
// NewClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNoBaseURL
	}
	if strings.TrimSpace(cfg.AppID) == "" {
		return nil, ErrNoAppID
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = userAgent
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		appID:      cfg.AppID,
		httpClient: httpClient,
		userAgent:  ua,
	}, nil
}

// AppID describes the appid operation and its observable behavior.
//
// AppID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) AppID() string {
	return c.appID
}

// Component resolves a named remote operation. Names follow the
// "Object.method" convention of the gateway component registry.
func (c *Client) Component(name string) (ngio.ComponentHandle, error) {
	if name == "" || !strings.Contains(name, ".") {
		return ngio.ComponentHandle{}, fmt.Errorf("%w: %q", ngio.ErrComponentUnknown, name)
	}
	return ngio.ComponentHandle{Name: name}, nil
}

// Execute describes the execute operation and its observable behavior.
//
// Execute may return an error when input validation, dependency calls, or security checks fail.
// Execute does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Execute(ctx context.Context, opts ngio.CallOptions, h ngio.ComponentHandle) (*ngio.CallResult, error) {
	results, err := c.do(ctx, opts, []ngio.ComponentHandle{h})
	if err != nil {
		return nil, err
	}

	r := ngio.ResultFor(results, h.Name)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ngio.ErrResultMissing, h.Name)
	}
	return r, nil
}

// ExecuteBatch describes the executebatch operation and its observable behavior.
//
// ExecuteBatch may return an error when input validation, dependency calls, or security checks fail.
// ExecuteBatch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) ExecuteBatch(ctx context.Context, opts ngio.CallOptions, hs ...ngio.ComponentHandle) ([]*ngio.CallResult, error) {
	if len(hs) == 0 {
		return nil, ErrEmptyBatch
	}

	results, err := c.do(ctx, opts, hs)
	if err != nil {
		return nil, err
	}

	// Re-order to request order so batch handlers can index positionally.
	ordered := make([]*ngio.CallResult, 0, len(hs))
	for _, h := range hs {
		r := ngio.ResultFor(results, h.Name)
		if r == nil {
			return nil, fmt.Errorf("%w: %s", ngio.ErrResultMissing, h.Name)
		}
		ordered = append(ordered, r)
	}
	return ordered, nil
}

type wireCall struct {
	Component  string         `json:"component"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type wireRequest struct {
	AppID       string     `json:"app_id"`
	SessionID   string     `json:"session_id,omitempty"`
	ExecutionID string     `json:"execution_id"`
	Execute     []wireCall `json:"execute"`
}

type wireError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type wireData struct {
	Success bool                 `json:"success"`
	Error   *wireError           `json:"error"`
	Session *ngio.SessionPayload `json:"session"`
}

type wireResult struct {
	Component string   `json:"component"`
	Data      wireData `json:"data"`
}

type wireResponse struct {
	Success bool            `json:"success"`
	Error   *wireError      `json:"error"`
	Result  json.RawMessage `json:"result"`
}

func (c *Client) do(ctx context.Context, opts ngio.CallOptions, hs []ngio.ComponentHandle) ([]*ngio.CallResult, error) {
	calls := make([]wireCall, 0, len(hs))
	for _, h := range hs {
		calls = append(calls, wireCall{Component: h.Name, Parameters: h.Parameters})
	}

	body, err := json.Marshal(wireRequest{
		AppID:       c.appID,
		SessionID:   opts.SessionID,
		ExecutionID: uuid.NewString(),
		Execute:     calls,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("gateway: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return nil, fmt.Errorf("gateway: decode response: %w", err)
	}
	if !wr.Success {
		msg := "request rejected"
		if wr.Error != nil && wr.Error.Message != "" {
			msg = wr.Error.Message
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	return decodeResults(wr.Result)
}

// decodeResults resolves the single-record-or-array payload shape into
// normalized results.
func decodeResults(raw json.RawMessage) ([]*ngio.CallResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var records []wireResult
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("gateway: decode result array: %w", err)
		}
	} else {
		var single wireResult
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("gateway: decode result: %w", err)
		}
		records = []wireResult{single}
	}

	results := make([]*ngio.CallResult, 0, len(records))
	for _, rec := range records {
		r := &ngio.CallResult{
			Component: rec.Component,
			Success:   rec.Data.Success,
			Session:   rec.Data.Session,
		}
		if rec.Data.Error != nil {
			r.Error = &ngio.CallError{Code: rec.Data.Error.Code, Message: rec.Data.Error.Message}
		}
		results = append(results, r)
	}
	return results, nil
}
