package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/execgraph/internal/ctxlog"
)

// ControlForms are the control constructs the compiler lowers itself.
var ControlForms = []string{
	"block", "define", "store", "if", "while", "for_each",
	"return", "break", "continue", "and", "or",
}

// Validate performs a consistency check of the registry: every control form
// is registered as such, and no ordinary primitive collides with a control
// form name.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range ControlForms {
		d, err := r.Lookup(name)
		if err != nil {
			logger.Debug("Control form not registered.", "name", name)
			continue
		}
		if !d.Control {
			errs = append(errs, fmt.Sprintf("primitive '%s' shadows a control form", name))
		}
	}
	for _, name := range r.Names() {
		d, _ := r.Lookup(name)
		if d.Control && d.Eval != nil {
			errs = append(errs, fmt.Sprintf("control form '%s' must not have an eval function", name))
		}
		if d.Effect == Mutates && d.Arity.Min < 1 {
			errs = append(errs, fmt.Sprintf("mutating primitive '%s' must take its target as input 0", name))
		}
	}

	if len(errs) > 0 {
		return errors.New("registry validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "primitives", len(r.Names()))
	return nil
}
