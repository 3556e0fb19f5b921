// Package mcpclient is a small streamable-HTTP MCP client used by the CLI
// to talk to a running homefix server.
package mcpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"homefix/internal/config"
	"homefix/internal/protocol"
)

const defaultTimeout = 3 * time.Minute

type Client struct {
	endpoint   string
	authToken  string
	httpClient *http.Client

	mu        sync.Mutex
	sessionID string
	nextID    int
}

type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ToolCallResult struct {
	Content           []ContentItem  `json:"content"`
	StructuredContent map[string]any `json:"structuredContent"`
	IsError           bool           `json:"isError"`
	Meta              map[string]any `json:"_meta,omitempty"`
	Elapsed           time.Duration  `json:"-"`
}

// Text joins the text content items.
func (r *ToolCallResult) Text() string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Content))
	for _, item := range r.Content {
		if item.Type == "text" && item.Text != "" {
			parts = append(parts, item.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// ErrorCode returns structuredContent.error.code for failed tool calls.
func (r *ToolCallResult) ErrorCode() string {
	if r == nil || !r.IsError {
		return ""
	}
	errObj, _ := r.StructuredContent["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      *int           `json:"id,omitempty"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

type rpcEnvelope struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    *struct {
			Code      string `json:"code"`
			Retryable bool   `json:"retryable"`
		} `json:"data,omitempty"`
	} `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object returned by the server.
type RPCError struct {
	Code          int
	Message       string
	CanonicalCode string
	Retryable     bool
	HTTPStatus    int
}

func (e *RPCError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message)
	if e.CanonicalCode != "" {
		msg += " [" + e.CanonicalCode + "]"
	}
	if e.HTTPStatus > 0 {
		msg += fmt.Sprintf(" (http %d)", e.HTTPStatus)
	}
	return msg
}

// New returns a client for endpoint. An empty authToken sends no
// Authorization header.
func New(endpoint, authToken string) *Client {
	return &Client{
		endpoint:   strings.TrimSpace(endpoint),
		authToken:  strings.TrimSpace(authToken),
		httpClient: &http.Client{Timeout: defaultTimeout},
		nextID:     1,
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) Initialize(ctx context.Context) error {
	params := map[string]any{
		"protocolVersion": config.DefaultProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "homefix-cli", "version": "1"},
	}
	_, headers, err := c.call(ctx, protocol.RPCMethodInitialize, params, true)
	if err != nil {
		return err
	}
	sessionID := headers.Get(protocol.MCPSessionHeader)
	if sessionID == "" {
		return fmt.Errorf("initialize response missing %s", protocol.MCPSessionHeader)
	}
	c.mu.Lock()
	c.sessionID = sessionID
	c.mu.Unlock()

	if _, _, err := c.call(ctx, protocol.RPCMethodNotificationsInitialized, nil, false); err != nil {
		return fmt.Errorf("notifications/initialized failed: %w", err)
	}
	return nil
}

func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	raw, _, err := c.callWithRecovery(ctx, protocol.RPCMethodToolsList, map[string]any{})
	if err != nil {
		return nil, err
	}
	var result struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("invalid tools/list result: %w", err)
	}
	return result.Tools, nil
}

func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*ToolCallResult, error) {
	if args == nil {
		args = map[string]any{}
	}
	start := time.Now()
	raw, _, err := c.callWithRecovery(ctx, protocol.RPCMethodToolsCall, map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return nil, err
	}
	var out ToolCallResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("invalid tools/call result: %w", err)
	}
	out.Elapsed = time.Since(start)
	return &out, nil
}

// Close terminates the server-side session.
func (c *Client) Close(ctx context.Context) error {
	sessionID := c.SessionID()
	if sessionID == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint, nil)
	if err != nil {
		return err
	}
	c.decorate(req, sessionID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()

	c.mu.Lock()
	c.sessionID = ""
	c.mu.Unlock()
	return nil
}

// callWithRecovery re-initializes once when the server no longer knows the
// session, e.g. after a restart or expiry.
func (c *Client) callWithRecovery(ctx context.Context, method string, params map[string]any) (json.RawMessage, http.Header, error) {
	raw, headers, err := c.call(ctx, method, params, true)
	if CanonicalCode(err) != protocol.ErrorCodeSessionNotFound {
		return raw, headers, err
	}
	if recoverErr := c.Initialize(ctx); recoverErr != nil {
		return nil, nil, fmt.Errorf("session recovery failed: %w", recoverErr)
	}
	return c.call(ctx, method, params, true)
}

func (c *Client) call(ctx context.Context, method string, params map[string]any, withID bool) (json.RawMessage, http.Header, error) {
	var id *int
	if withID {
		c.mu.Lock()
		n := c.nextID
		c.nextID++
		c.mu.Unlock()
		id = &n
	}
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	c.decorate(req, c.SessionID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.Header, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, resp.Header, fmt.Errorf("http status %d", resp.StatusCode)
		}
		return nil, resp.Header, nil
	}

	var envelope rpcEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, resp.Header, fmt.Errorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return nil, resp.Header, err
	}
	if envelope.Error != nil {
		rpcErr := &RPCError{
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
			HTTPStatus: resp.StatusCode,
		}
		if envelope.Error.Data != nil {
			rpcErr.CanonicalCode = envelope.Error.Data.Code
			rpcErr.Retryable = envelope.Error.Data.Retryable
		}
		return nil, resp.Header, rpcErr
	}
	return envelope.Result, resp.Header, nil
}

func (c *Client) decorate(req *http.Request, sessionID string) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	if sessionID != "" {
		req.Header.Set(protocol.MCPSessionHeader, sessionID)
	}
}

// CanonicalCode extracts the server's canonical code from err.
func CanonicalCode(err error) string {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.CanonicalCode
	}
	return ""
}

// ActionableMessage maps a canonical code to user guidance.
func ActionableMessage(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case protocol.ErrorCodeUnauthorized:
		return "Authentication failed. Set HOMEFIX_AUTH_TOKEN to the server's token and retry."
	case protocol.ErrorCodeSessionNotFound:
		return "The MCP session expired. Reconnect and retry."
	case protocol.ErrorCodeRateLimited:
		return "Request rate limit reached. Wait briefly and retry."
	case protocol.ErrorCodeUpstreamCallFailed:
		return "The vision model call failed. Check the provider API key and retry."
	case protocol.ErrorCodeUpstreamParseFailed:
		return "The vision model returned an unusable reply. Retrying usually helps."
	case protocol.ErrorCodeUnsupportedMediaType:
		return "Photos must be JPEG, PNG or WebP."
	default:
		return ""
	}
}
