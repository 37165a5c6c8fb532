// Package remote offloads pure primitives to a primitive server over
// socket.io.
//
// A request is an "invoke" event carrying
//
//	{"id": "17", "primitive": "__add", "args": [<wire value>, ...]}
//
// and the server answers on the event "result:17" with either
// {"value": <wire value>} or {"error": {"kind": "ZeroDivision", "message": "..."}}.
// Values use the wire form of the value package, so ints and floats keep
// their kinds across the JSON transport.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/execgraph/internal/failure"
	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/internal/value"
)

const (
	invokeEvent  = "invoke"
	resultPrefix = "result:"
)

func resultEvent(id string) string { return resultPrefix + id }

func encodeRequest(id string, d *registry.Descriptor, args []value.Value) map[string]any {
	wire := make([]any, len(args))
	for i, a := range args {
		wire[i] = value.Encode(a)
	}
	return map[string]any{"id": id, "primitive": d.Name, "args": wire}
}

type request struct {
	id        string
	primitive string
	args      []value.Value
}

func decodeRequest(data any) (*request, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invoke payload must be an object, got %T", data)
	}
	req := &request{}
	if req.id, ok = m["id"].(string); !ok || req.id == "" {
		return nil, errors.New("invoke payload has no id")
	}
	if req.primitive, ok = m["primitive"].(string); !ok {
		return req, errors.New("invoke payload has no primitive")
	}
	raw, _ := m["args"].([]any)
	for i, a := range raw {
		v, err := value.Decode(a)
		if err != nil {
			return req, fmt.Errorf("argument %d: %w", i, err)
		}
		req.args = append(req.args, v)
	}
	return req, nil
}

func encodeResult(v value.Value, err error) map[string]any {
	if err == nil {
		return map[string]any{"value": value.Encode(v)}
	}
	kind := ""
	if k, ok := failure.KindOf(err); ok {
		kind = k.String()
	}
	return map[string]any{"error": map[string]any{"kind": kind, "message": err.Error()}}
}

// decodeResult turns a reply back into a value or an error. Remote failures
// of a known kind come back as *failure.Error of that kind.
func decodeResult(op string, data []any) (value.Value, error) {
	if len(data) == 0 {
		return value.None, fmt.Errorf("empty reply for %s", op)
	}
	m, ok := data[0].(map[string]any)
	if !ok {
		return value.None, fmt.Errorf("reply for %s must be an object, got %T", op, data[0])
	}
	if e, ok := m["error"].(map[string]any); ok {
		msg, _ := e["message"].(string)
		name, _ := e["kind"].(string)
		if kind, ok := failure.ParseKind(name); ok {
			return value.None, &failure.Error{Kind: kind, Op: op, Msg: "remote: " + msg}
		}
		return value.None, fmt.Errorf("remote %s failed: %s", op, msg)
	}
	return value.Decode(m["value"])
}

// Handle runs one decoded request against reg. Only primitives marked for
// offloading are served.
func Handle(ctx context.Context, reg *registry.Registry, data any) (id string, reply map[string]any) {
	req, err := decodeRequest(data)
	if req == nil {
		return "", encodeResult(value.None, err)
	}
	if err != nil {
		return req.id, encodeResult(value.None, err)
	}
	d, err := reg.Lookup(req.primitive)
	if err != nil {
		return req.id, encodeResult(value.None, err)
	}
	if !d.Offload {
		return req.id, encodeResult(value.None, &failure.Error{
			Kind: failure.UnsupportedConstruct,
			Op:   d.Name,
			Msg:  "primitive is not served remotely",
		})
	}
	return req.id, encodeResult(d.Call(ctx, req.args))
}
