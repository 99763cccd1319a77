package response

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/qrstudio/core/handler"
)

type wsConfig struct {
	upgrader     websocket.Upgrader
	header       http.Header
	onConnect    func(context.Context, *websocket.Conn) error
	onDisconnect func(context.Context, *websocket.Conn)
	onError      func(context.Context, error)
}

// WebSocketOption configures a WebSocket response.
type WebSocketOption func(*wsConfig)

func WithWSBufferSizes(read, write int) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.ReadBufferSize = read
		c.upgrader.WriteBufferSize = write
	}
}

func WithWSHandshakeTimeout(timeout time.Duration) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.HandshakeTimeout = timeout
	}
}

// WithWSOriginCheck replaces the default same-origin check.
func WithWSOriginCheck(fn func(r *http.Request) bool) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.CheckOrigin = fn
	}
}

func WithWSUpgradeHeaders(header http.Header) WebSocketOption {
	return func(c *wsConfig) {
		c.header = header
	}
}

func WithWSOnConnect(fn func(context.Context, *websocket.Conn) error) WebSocketOption {
	return func(c *wsConfig) {
		c.onConnect = fn
	}
}

func WithWSOnDisconnect(fn func(context.Context, *websocket.Conn)) WebSocketOption {
	return func(c *wsConfig) {
		c.onDisconnect = fn
	}
}

func WithWSErrorHandler(fn func(context.Context, error)) WebSocketOption {
	return func(c *wsConfig) {
		c.onError = fn
	}
}

// WebSocket upgrades the connection and runs fn until it returns. Errors
// after the upgrade cannot be rendered as HTTP responses, so they go to the
// error callback instead of the router.
func WebSocket(fn func(context.Context, *websocket.Conn) error, opts ...WebSocketOption) handler.Response {
	cfg := &wsConfig{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	report := func(ctx context.Context, err error) {
		if cfg.onError != nil && err != nil {
			cfg.onError(ctx, err)
		}
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()

		conn, err := cfg.upgrader.Upgrade(w, r, cfg.header)
		if err != nil {
			// Upgrade has already written an HTTP error.
			report(ctx, err)
			return nil
		}
		defer func() {
			_ = conn.Close()
			if cfg.onDisconnect != nil {
				cfg.onDisconnect(ctx, conn)
			}
		}()

		if cfg.onConnect != nil {
			if err := cfg.onConnect(ctx, conn); err != nil {
				report(ctx, err)
				return nil
			}
		}

		report(ctx, fn(ctx, conn))
		return nil
	}
}
