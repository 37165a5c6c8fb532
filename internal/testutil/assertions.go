package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertInvocationPassed checks that the text output reports the
// invocation of function as passed.
func AssertInvocationPassed(t *testing.T, result *HarnessResult, function string) {
	t.Helper()
	require.True(t,
		strings.Contains(result.Output, "PASS "+function+"@"),
		"expected a passing invocation of '%s' in output:\n%s", function, result.Output,
	)
}

// AssertInvocationFailed checks that the text output reports the
// invocation of function as failed with a problem containing msg.
func AssertInvocationFailed(t *testing.T, result *HarnessResult, function, msg string) {
	t.Helper()
	for _, line := range strings.Split(result.Output, "\n") {
		if strings.HasPrefix(line, "FAIL "+function+"@") && strings.Contains(line, msg) {
			return
		}
	}
	require.Failf(t, "invocation did not fail as expected",
		"expected '%s' to fail with %q in output:\n%s", function, msg, result.Output)
}
