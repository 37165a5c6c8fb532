package hclsource

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/config"
	"github.com/vk/execgraph/internal/ctxlog"
	"github.com/vk/execgraph/internal/value"
)

// Loader is the HCL implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL source loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// fileRoot decodes every top-level block a source file may hold.
type fileRoot struct {
	Functions   []*functionBlock `hcl:"function,block"`
	Invocations []*invokeBlock   `hcl:"invoke,block"`
	Remain      hcl.Body         `hcl:",remain"`
}

type functionBlock struct {
	Name     string         `hcl:"name,label"`
	Params   []string       `hcl:"params,optional"`
	Body     hcl.Expression `hcl:"body"`
	DefRange hcl.Range      `hcl:",def_range"`
}

type invokeBlock struct {
	Function    string         `hcl:"function,label"`
	Args        hcl.Expression `hcl:"args,optional"`
	Expect      hcl.Expression `hcl:"expect,optional"`
	ExpectArgs  hcl.Expression `hcl:"expect_args,optional"`
	ExpectError *string        `hcl:"expect_error,optional"`
	DefRange    hcl.Range      `hcl:",def_range"`
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string { return []string{".hcl"} }

// Load parses the given files and translates their blocks into the model.
func (l *Loader) Load(ctx context.Context, files ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "file_count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		part, err := decodeFile(hclFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load HCL file %s: %w", file, err)
		}
		if err := model.Merge(part); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.", "functions", len(model.Functions), "invocations", len(model.Invocations))
	return model, nil
}

// Parse translates a single in-memory source file.
func Parse(src []byte, filename string) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	return decodeFile(hclFile)
}

func decodeFile(f *hcl.File) (*config.Model, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	l := &lowerer{src: f.Bytes}
	model := &config.Model{}
	for _, fb := range root.Functions {
		fn, err := l.function(fb)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(&config.Model{Functions: []*ast.Function{fn}}); err != nil {
			return nil, err
		}
	}
	for _, ib := range root.Invocations {
		inv, err := l.invocation(ib)
		if err != nil {
			return nil, err
		}
		model.Invocations = append(model.Invocations, inv)
	}
	return model, nil
}

// syntax returns the native expression behind an attribute, or nil when the
// attribute was omitted.
func syntax(e hcl.Expression) hclsyntax.Expression {
	se, _ := e.(hclsyntax.Expression)
	return se
}

func (l *lowerer) function(fb *functionBlock) (*ast.Function, error) {
	body := syntax(fb.Body)
	if body == nil {
		return nil, unsupported(fb.DefRange, "function %q has no body", fb.Name)
	}
	stmts, err := l.body(body)
	if err != nil {
		return nil, err
	}
	return &ast.Function{Name: fb.Name, Params: fb.Params, Body: stmts, Pos: pos(fb.DefRange)}, nil
}

func (l *lowerer) invocation(ib *invokeBlock) (*config.Invocation, error) {
	inv := &config.Invocation{Function: ib.Function, Pos: pos(ib.DefRange)}
	if ib.ExpectError != nil {
		inv.ExpectError = *ib.ExpectError
	}

	var err error
	if e := syntax(ib.Args); e != nil {
		if inv.Args, err = l.constList(e); err != nil {
			return nil, err
		}
	}
	if e := syntax(ib.ExpectArgs); e != nil {
		if inv.ExpectArgs, err = l.constList(e); err != nil {
			return nil, err
		}
		if inv.ExpectArgs == nil {
			inv.ExpectArgs = []value.Value{}
		}
	}
	if e := syntax(ib.Expect); e != nil {
		v, err := l.constant(e)
		if err != nil {
			return nil, err
		}
		inv.Expect = &v
	}
	return inv, nil
}

func (l *lowerer) constant(e hclsyntax.Expression) (value.Value, error) {
	x, err := l.expr(e)
	if err != nil {
		return value.None, err
	}
	return constValue(x)
}

func (l *lowerer) constList(e hclsyntax.Expression) ([]value.Value, error) {
	tuple, ok := e.(*hclsyntax.TupleConsExpr)
	if !ok {
		return nil, unsupported(e.Range(), "expected a list of constant values")
	}
	var out []value.Value
	for _, elt := range tuple.Exprs {
		v, err := l.constant(elt)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
