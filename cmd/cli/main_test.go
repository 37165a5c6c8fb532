package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600), "failed to set up test file")
	return dir
}

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// An HCL source with a syntax error makes app.NewApp panic while loading.
	dir := writeSource(t, "main.hcl", `
		function "f" {
			body = block(
		// Missing closing parenthesis and brace here
	`)
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, &bytes.Buffer{}, []string{dir})

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")

	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "application startup panicked"), "The error message should indicate that a panic was recovered.")
	require.True(t, strings.Contains(errStr, "failed to parse"), "The error message should contain the underlying reason for the panic.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_Scenarios(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := writeSource(t, "scenarios.hcl", `
function "same" {
  body = list(1) == list(1)
}

function "change" {
  params = ["data"]
  body = block(
    store(data["key_float"], 42.0),
    store(data["key_int"], 42),
    store(data["key"], "new value"),
    data,
  )
}

function "unbound" {
  body = undefined_name
}

function "mismatch" {
  body = {} == []
}

invoke "same" {
  expect = true
}

invoke "change" {
  args        = [{ key = "value" }]
  expect_args = [{ key = "new value", key_float = 42.0, key_int = 42 }]
}

invoke "unbound" {
  expect_error = "UnboundName"
}

invoke "mismatch" {
  expect_error = "TypeMismatch"
}
`)
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-output", "json", dir})

	// --- Assert ---
	require.NoError(t, err, "every scenario should meet its expectations; output:\n%s", out.String())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		var res map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &res))
		require.Equal(t, "passed", res["status"], line)
	}
}

func TestRun_FailedExpectation(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := writeSource(t, "fail.hcl", `
function "answer" {
  body = 42
}

invoke "answer" {
  expect = 42.0
}
`)
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{dir})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "1 of 1 invocations failed")
	require.Contains(t, out.String(), "FAIL answer@")
	require.Contains(t, out.String(), "expected 42.0, got 42")
}
