// Package jsonrpc provides JSON-RPC 2.0 clients over HTTP and websocket.
// Both implement Conn, so callers can check whether the transport is open
// and reopen it before issuing requests.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

var (
	// ErrProviderReturnedError indicates that the remote JSON-RPC server returned an error response.
	ErrProviderReturnedError = errors.New("provider error")

	// ErrTransportClosed is returned by Fetch when the connection is not open.
	ErrTransportClosed = errors.New("transport closed")

	// ErrUnsupportedScheme is returned by Dial for endpoints that are neither
	// http(s) nor ws(s).
	ErrUnsupportedScheme = errors.New("unsupported endpoint scheme")
)

// request is a JSON-RPC 2.0 request envelope.
type request struct {
	JsonRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

func newRequest(method string, params []any) request {
	if params == nil {
		params = []any{}
	}

	return request{
		JsonRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}
}

// response represents a standard JSON-RPC 2.0 response.
type response struct {
	JsonRPC string          `json:"jsonrpc"` // JSON-RPC protocol version (usually "2.0")
	ID      json.RawMessage `json:"id"`      // Echo of the request id, string or number
	Error   *struct {
		Code    int    `json:"code"`    // Error code defined by the JSON-RPC spec or custom server logic
		Message string `json:"message"` // Human-readable error message
	} `json:"error"`
	Result json.RawMessage `json:"result"` // Raw result payload returned by the server
}

// Err returns an error if the response includes a JSON-RPC error object.
// It wraps ErrProviderReturnedError with the provided error code and message.
func (r response) Err() error {
	if r.Error == nil {
		return nil
	}

	return fmt.Errorf("%w: [%d] - %s", ErrProviderReturnedError, r.Error.Code, r.Error.Message)
}

// id returns the response id as a plain string.
func (r response) id() string {
	var s string
	if err := json.Unmarshal(r.ID, &s); err == nil {
		return s
	}
	return string(r.ID)
}

// Client sends JSON-RPC requests.
type Client interface {
	// Fetch sends a JSON-RPC request with the given method name and parameters.
	// It returns the raw JSON result or an error if the request or response fails.
	Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// Conn is a Client whose underlying transport can be closed and reopened.
type Conn interface {
	Client

	// IsOpened reports whether requests can currently be sent.
	IsOpened() bool

	// Open (re)establishes the transport. Opening an open transport is a no-op.
	Open(ctx context.Context) error

	// Close releases the transport. Pending requests fail with ErrTransportClosed.
	Close() error
}

// httpConn sends JSON-RPC requests over HTTP POST. HTTP is stateless, so
// "open" only tracks whether Close has been called.
type httpConn struct {
	providerEndpoint string                // The URL of the remote JSON-RPC server
	httpClient       *retryablehttp.Client // The HTTP client used to perform requests
	closed           atomic.Bool
}

// Compile-time assertion that httpConn implements the Conn interface.
var _ Conn = (*httpConn)(nil)

// Fetch sends a JSON-RPC request to the remote server with the given method and parameters.
// The `id` field in the request is generated as a UUID string.
func (c *httpConn) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if c.closed.Load() {
		return nil, ErrTransportClosed
	}

	body, err := json.Marshal(newRequest(method, params))
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.providerEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var data response
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}

	if err := data.Err(); err != nil {
		return nil, err
	}

	return data.Result, nil
}

func (c *httpConn) IsOpened() bool {
	return !c.closed.Load()
}

func (c *httpConn) Open(ctx context.Context) error {
	c.closed.Store(false)
	return nil
}

func (c *httpConn) Close() error {
	c.closed.Store(true)
	return nil
}

// NewHTTPClient returns a Conn that POSTs JSON-RPC requests to providerEndpoint
// using httpClient, which carries the retry policy.
func NewHTTPClient(providerEndpoint string, httpClient *retryablehttp.Client) *httpConn {
	return &httpConn{
		providerEndpoint: providerEndpoint,
		httpClient:       httpClient,
	}
}

// Dial builds a Conn for endpoint based on its scheme and opens it.
// http(s) endpoints use httpClient; ws(s) endpoints use a websocket connection.
func Dial(ctx context.Context, endpoint string, httpClient *retryablehttp.Client) (Conn, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}

	var conn Conn
	switch u.Scheme {
	case "http", "https":
		conn = NewHTTPClient(endpoint, httpClient)
	case "ws", "wss":
		conn = NewWebsocketClient(endpoint)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	if err := conn.Open(ctx); err != nil {
		return nil, err
	}

	return conn, nil
}
