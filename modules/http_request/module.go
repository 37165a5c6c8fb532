package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vk/execgraph/internal/ctxlog"
	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client performs the requests. Nil means a client with a 30s timeout.
	Client *http.Client
}

func (m *Module) client() *http.Client {
	if m.Client == nil {
		m.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return m.Client
}

// Request performs http_request(method, url[, body]) and returns a dict with
// the status code and the response body.
func (m *Module) Request(ctx context.Context, args []value.Value) (value.Value, error) {
	logger := ctxlog.FromContext(ctx)
	method, url := strings.ToUpper(args[0].Str()), args[1].Str()
	logger.Debug("Making HTTP request", "method", method, "url", url)

	var body io.Reader
	if len(args) > 2 && !args[2].IsNil() {
		body = strings.NewReader(value.Display(args[2]))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return value.None, &failure.Error{Kind: failure.ValueError, Op: "http_request", Msg: err.Error(), Err: err}
	}

	resp, err := m.client().Do(req)
	if err != nil {
		return value.None, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("Received HTTP response", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return value.None, fmt.Errorf("failed to read response body: %w", err)
	}

	return value.DictOf(
		value.String("status_code"), value.Int(int64(resp.StatusCode)),
		value.String("body"), value.String(string(bodyBytes)),
	)
}

// Register registers the primitive with the registry.
func (m *Module) Register(r *registry.Registry) {
	str := value.KindsOf(value.StringKind)
	r.Register(&registry.Descriptor{
		Name:   "http_request",
		Arity:  registry.Between(2, 3),
		Inputs: []value.KindSet{str, str, value.Any},
		Effect: registry.Effectful,
		Doc:    "http_request(method, url[, body]) returns {status_code, body}",
		Eval:   m.Request,
	})
}
