package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/vk/execgraph/internal/backend"
	"github.com/vk/execgraph/internal/ctxlog"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Config describes the primitive server to connect to.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// Timeout bounds each remote invocation. Zero means 30s.
	Timeout time.Duration
	// ConnectTimeout bounds the initial connection. Zero means 15s.
	ConnectTimeout time.Duration
}

// Conn is the part of a socket.io client the backend uses. *socket.Socket
// implements it.
type Conn interface {
	Connected() bool
	Once(types.EventName, ...types.Listener) error
	RemoveAllListeners(types.EventName) bool
	Emit(ev string, args ...any) error
}

// Backend runs offloadable pure primitives on a remote server and all other
// primitives locally. When the connection is down every primitive runs
// locally.
type Backend struct {
	conn     Conn
	fallback backend.Backend
	timeout  time.Duration
	logger   *slog.Logger
	seq      atomic.Uint64
	closer   func()
}

// NewBackend wraps an established connection.
func NewBackend(conn Conn, fallback backend.Backend, timeout time.Duration, logger *slog.Logger) *Backend {
	if fallback == nil {
		fallback = backend.Local{}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{conn: conn, fallback: fallback, timeout: timeout, logger: logger}
}

// Dial connects to the primitive server described by cfg.
func Dial(ctx context.Context, cfg Config) (*Backend, error) {
	logger := ctxlog.FromContext(ctx).With("backend", "remote", "url", cfg.URL)
	logger.Info("Connecting to primitive server...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("%v", errs[0])
		}
		logger.Debug("Connection error event fired.", "error", err)
		connectChan <- err
	})

	io.Connect()

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 15 * time.Second
	}
	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", connectTimeout)
	}

	b := NewBackend(io, backend.Local{}, cfg.Timeout, logger)
	b.closer = func() { io.Disconnect() }
	return b, nil
}

// Close disconnects from the server.
func (b *Backend) Close() {
	if b.closer != nil {
		b.closer()
	}
}

// Invoke implements backend.Backend.
func (b *Backend) Invoke(ctx context.Context, d *registry.Descriptor, args []value.Value) *backend.Future {
	if !d.Offload || d.Effect != registry.Pure || !b.conn.Connected() {
		return b.fallback.Invoke(ctx, d, args)
	}

	id := strconv.FormatUint(b.seq.Add(1), 10)
	event := types.EventName(resultEvent(id))
	future, resolve := backend.NewFuture()

	err := b.conn.Once(event, func(data ...any) {
		b.logger.Debug("Result event received.", "event", event)
		resolve(decodeResult(d.Name, data))
	})
	if err != nil {
		return backend.Resolved(value.None, fmt.Errorf("failed to subscribe to %s: %w", event, err))
	}

	b.logger.Debug("Offloading primitive.", "primitive", d.Name, "id", id)
	if err := b.conn.Emit(invokeEvent, encodeRequest(id, d, args)); err != nil {
		b.conn.RemoveAllListeners(event)
		return backend.Resolved(value.None, fmt.Errorf("failed to emit %s for %s: %w", invokeEvent, d.Name, err))
	}

	timer := time.AfterFunc(b.timeout, func() {
		b.conn.RemoveAllListeners(event)
		resolve(value.None, fmt.Errorf("timed out after %v waiting for event '%s'", b.timeout, event))
	})
	go func() {
		select {
		case <-future.Done():
		case <-ctx.Done():
			b.conn.RemoveAllListeners(event)
			resolve(value.None, ctx.Err())
		}
		timer.Stop()
	}()
	return future
}
