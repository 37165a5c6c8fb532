package app

import (
	"context"
	"fmt"

	"github.com/vk/execgraph/internal/ctxlog"
	"github.com/vk/execgraph/internal/fsutil"
	"github.com/vk/execgraph/internal/hclsource"
)

// format rewrites every HCL source under the source path in canonical
// layout and prints the names of the files it changed.
func (a *App) format(ctx context.Context) error {
	files, err := fsutil.Find([]string{a.config.SourcePath}, ".hcl")
	if err != nil {
		return err
	}
	for _, file := range files {
		changed, err := hclsource.FormatFile(file)
		if err != nil {
			return err
		}
		if changed {
			fmt.Fprintln(a.outW, file)
		}
	}
	ctxlog.FromContext(ctx).Debug("Formatting complete.", "files", len(files))
	return nil
}
