package http_request

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

func TestRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, r.Method+":"+string(body))
	}))
	defer server.Close()

	m := &Module{Client: server.Client()}
	out, err := m.Request(context.Background(), []value.Value{value.String("post"), value.String(server.URL), value.String("hi")})
	require.NoError(t, err)
	assert.Equal(t, "{'status_code': 201, 'body': 'POST:hi'}", value.Repr(out))

	out, err = m.Request(context.Background(), []value.Value{value.String("GET"), value.String(server.URL)})
	require.NoError(t, err)
	assert.Equal(t, "{'status_code': 201, 'body': 'GET:'}", value.Repr(out))
}

func TestRequest_BadURL(t *testing.T) {
	m := &Module{}
	_, err := m.Request(context.Background(), []value.Value{value.String("GET"), value.String("::bad")})
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	r := registry.NewDefault(&Module{})
	d, err := r.Lookup("http_request")
	require.NoError(t, err)
	assert.Equal(t, registry.Effectful, d.Effect)
}
