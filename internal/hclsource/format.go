package hclsource

import (
	"bytes"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclwrite"
)

// Format rewrites src in canonical HCL layout.
func Format(src []byte) []byte {
	return hclwrite.Format(src)
}

// FormatFile formats the file at path in place and reports whether it
// changed.
func FormatFile(path string) (bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	out := Format(src)
	if bytes.Equal(src, out) {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
