package app

import (
	"io"
	"time"

	"github.com/vk/execgraph/internal/registry"
	"github.com/vk/execgraph/modules/env_vars"
	"github.com/vk/execgraph/modules/http_request"
	"github.com/vk/execgraph/modules/matrixops"
	"github.com/vk/execgraph/modules/print"
	"github.com/vk/execgraph/modules/random"
	"github.com/vk/execgraph/modules/statistics"
)

// coreModules returns fresh instances of all primitive modules that are
// compiled into the execgraph binary. print writes to outW.
func coreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&env_vars.Module{},
		&http_request.Module{},
		&matrixops.Module{},
		&print.Module{Out: outW},
		&statistics.Module{},
		random.New(uint64(time.Now().UnixNano())),
	}
}
