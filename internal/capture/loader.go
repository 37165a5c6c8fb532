package capture

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/config"
	"github.com/vk/execgraph/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// Loader is the captured syntax tree implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new capture loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string { return []string{".yaml", ".yml", ".json"} }

// Load decodes the given capture files into the model.
func (l *Loader) Load(ctx context.Context, files ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Capture loader started.", "file_count", len(files))

	model := &config.Model{}
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read capture file %s: %w", file, err)
		}
		part, err := Parse(src, file)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(part); err != nil {
			return nil, err
		}
	}

	logger.Debug("Capture loading complete.", "functions", len(model.Functions), "invocations", len(model.Invocations))
	return model, nil
}

// Parse decodes one capture document.
func Parse(src []byte, filename string) (*config.Model, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse capture file %s: %w", filename, err)
	}
	if len(doc.Content) == 0 {
		return &config.Model{}, nil
	}
	d := &decoder{file: filename}
	model, err := d.document(doc.Content[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode capture file %s: %w", filename, err)
	}
	return model, nil
}

func (d *decoder) document(root *yaml.Node) (*config.Model, error) {
	if root.Kind != yaml.MappingNode {
		return nil, d.errorf(root, "document must be a mapping")
	}
	model := &config.Model{}
	addFunction := func(n *yaml.Node) error {
		fn, err := d.function(n)
		if err != nil {
			return err
		}
		return model.Merge(&config.Model{Functions: []*ast.Function{fn}})
	}

	switch nodeType(root) {
	case "FunctionDef":
		return model, addFunction(root)
	case "Module":
		for _, n := range items(field(root, "body")) {
			if err := addFunction(n); err != nil {
				return nil, err
			}
		}
		return model, nil
	case "":
	default:
		return nil, d.errorf(root, "unexpected top-level node %s", nodeType(root))
	}

	for _, n := range items(field(root, "functions")) {
		if err := addFunction(n); err != nil {
			return nil, err
		}
	}
	for _, n := range items(field(root, "invocations")) {
		inv, err := d.invocation(n)
		if err != nil {
			return nil, err
		}
		model.Invocations = append(model.Invocations, inv)
	}
	return model, nil
}

func (d *decoder) invocation(n *yaml.Node) (*config.Invocation, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "invocation must be a mapping")
	}
	inv := &config.Invocation{Pos: d.pos(n)}
	if inv.Function = scalar(field(n, "function")); inv.Function == "" {
		return nil, d.errorf(n, "invocation has no function")
	}
	inv.ExpectError = scalar(field(n, "expect_error"))

	var err error
	if args := field(n, "args"); args != nil {
		if inv.Args, err = d.valueList(args); err != nil {
			return nil, err
		}
	}
	if want := field(n, "expect_args"); want != nil {
		if inv.ExpectArgs, err = d.valueList(want); err != nil {
			return nil, err
		}
	}
	if want := field(n, "expect"); want != nil {
		v, err := d.value(want)
		if err != nil {
			return nil, err
		}
		inv.Expect = &v
	}
	return inv, nil
}
