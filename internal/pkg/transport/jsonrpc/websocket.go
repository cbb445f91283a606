package jsonrpc

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gabapcia/zkwallet/internal/pkg/x/chflow"

	"github.com/gorilla/websocket"
)

// callResult carries a response, or the error that ended the connection,
// back to the goroutine waiting in Fetch.
type callResult struct {
	res response
	err error
}

// wsConn multiplexes JSON-RPC requests over a single websocket connection.
// Responses are matched to requests by id in a reader goroutine that lives
// as long as the connection.
type wsConn struct {
	endpoint string
	dialer   *websocket.Dialer

	mu      sync.Mutex // guards conn and pending
	conn    *websocket.Conn
	pending map[string]chan callResult

	writeMu sync.Mutex // gorilla connections allow one concurrent writer
}

// Compile-time assertion that wsConn implements the Conn interface.
var _ Conn = (*wsConn)(nil)

// WebsocketOption customizes a websocket client.
type WebsocketOption func(*wsConn)

// WithHandshakeTimeout bounds the websocket opening handshake.
func WithHandshakeTimeout(d time.Duration) WebsocketOption {
	return func(c *wsConn) {
		c.dialer.HandshakeTimeout = d
	}
}

// NewWebsocketClient returns a closed websocket Conn for endpoint; call Open
// before the first Fetch.
func NewWebsocketClient(endpoint string, opts ...WebsocketOption) *wsConn {
	dialer := *websocket.DefaultDialer

	c := &wsConn{
		endpoint: endpoint,
		dialer:   &dialer,
		pending:  make(map[string]chan callResult),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *wsConn) IsOpened() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

func (c *wsConn) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return err
	}

	c.conn = conn
	go c.readLoop(conn)
	return nil
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.detach(ErrTransportClosed)
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// detach forgets the current connection and fails every pending call with
// err. Callers must hold c.mu.
func (c *wsConn) detach(err error) {
	c.conn = nil
	for id, ch := range c.pending {
		ch <- callResult{err: err}
		delete(c.pending, id)
	}
}

// readLoop dispatches responses until the connection fails. A failure only
// detaches the client when conn is still the active connection.
func (c *wsConn) readLoop(conn *websocket.Conn) {
	for {
		var res response
		if err := conn.ReadJSON(&res); err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.detach(ErrTransportClosed)
			}
			c.mu.Unlock()

			_ = conn.Close()
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[res.id()]
		delete(c.pending, res.id())
		c.mu.Unlock()

		if ok {
			ch <- callResult{res: res}
		}
	}
}

func (c *wsConn) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Fetch sends a request over the open connection and waits for the matching
// response or for ctx to be done.
func (c *wsConn) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	req := newRequest(method, params)
	ch := make(chan callResult, 1)

	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, ErrTransportClosed
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(req.ID)
		return nil, err
	}

	r, ok := chflow.Receive(ctx, ch)
	if !ok {
		c.forget(req.ID)
		return nil, ctx.Err()
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := r.res.Err(); err != nil {
		return nil, err
	}
	return r.res.Result, nil
}
