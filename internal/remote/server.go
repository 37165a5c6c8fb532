package remote

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vk/execgraph/internal/ctxlog"
	"github.com/vk/execgraph/internal/registry"
	"github.com/zishang520/socket.io/v2/socket"
)

// Server answers invoke events with the offloadable primitives of a
// registry.
type Server struct {
	io     *socket.Server
	reg    *registry.Registry
	logger *slog.Logger
}

// NewServer creates a primitive server for reg. Mount Handler under
// "/socket.io/".
func NewServer(ctx context.Context, reg *registry.Registry) *Server {
	s := &Server{
		io:     socket.NewServer(nil, nil),
		reg:    reg,
		logger: ctxlog.FromContext(ctx).With("component", "primitive-server"),
	}
	s.io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		logger := s.logger.With("sid", client.Id())
		logger.Debug("Client connected.")
		client.On(invokeEvent, func(datas ...any) {
			if len(datas) == 0 {
				return
			}
			id, reply := Handle(ctx, s.reg, datas[0])
			if id == "" {
				logger.Warn("Dropping malformed invoke request.", "reply", reply)
				return
			}
			if err := client.Emit(resultEvent(id), reply); err != nil {
				logger.Error("Failed to send result.", "id", id, "error", err)
			}
		})
		client.On("disconnect", func(...any) {
			logger.Debug("Client disconnected.")
		})
	})
	return s
}

// Handler returns the socket.io HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Close disconnects every client.
func (s *Server) Close() {
	s.io.Close(nil)
}
