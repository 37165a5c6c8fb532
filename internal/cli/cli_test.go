package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/execgraph/internal/app"
)

func TestParse_Flags(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, exit, err := Parse([]string{
		"-workers", "3", "-max-iterations", "50", "-output", "JSON",
		"-dump-graph", "-log-level", "DEBUG", "-backend-url", "http://localhost:8090", "src",
	}, out)
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, &app.Config{
		SourcePath:    "src",
		LogFormat:     "text",
		LogLevel:      "debug",
		WorkerCount:   3,
		MaxIterations: 50,
		Output:        app.OutputJSON,
		DumpGraph:     true,
		BackendURL:    "http://localhost:8090",
	}, cfg)
}

func TestParse_ServeNeedsNoPath(t *testing.T) {
	cfg, exit, err := Parse([]string{"-serve", ":8090"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, ":8090", cfg.ServeAddr)
	assert.Empty(t, cfg.SourcePath)
}

func TestParse_NoPathPrintsUsage(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, exit, err := Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		msg  string
	}{
		{"log format", []string{"-log-format", "xml", "src"}, "invalid log-format"},
		{"log level", []string{"-log-level", "loud", "src"}, "invalid log-level"},
		{"workers", []string{"-workers", "0", "src"}, "worker count must be positive"},
		{"output", []string{"-output", "yaml", "src"}, "invalid output format"},
		{"fmt and serve", []string{"-fmt", "-serve", ":1", "src"}, "mutually exclusive"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.msg)
		})
	}
}
