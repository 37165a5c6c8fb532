package value

import (
	"fmt"

	"github.com/vk/execgraph/internal/failure"
)

// MaxLength bounds the number of items of a list, or bytes of a string,
// built by concatenation, repetition or range.
const MaxLength = 1 << 26

// CheckLength fails with LimitExceeded when a result of n items would
// exceed MaxLength.
func CheckLength(op string, n uint64) error {
	if n > MaxLength {
		return &failure.Error{
			Kind: failure.LimitExceeded,
			Op:   op,
			Msg:  fmt.Sprintf("result of %d items exceeds the limit of %d", n, MaxLength),
		}
	}
	return nil
}

// repeatCount returns the length of n repetitions of a sequence of size
// items, or an error when it exceeds MaxLength.
func repeatCount(op string, size int, n int64) (int, error) {
	if n <= 0 || size == 0 {
		return 0, nil
	}
	if uint64(n) > MaxLength {
		return 0, CheckLength(op, uint64(n))
	}
	total := uint64(size) * uint64(n)
	if err := CheckLength(op, total); err != nil {
		return 0, err
	}
	return int(total), nil
}
