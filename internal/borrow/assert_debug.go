//go:build colgo_debug

package borrow

import "fmt"

// Debug reports whether unbalanced releases panic.
const Debug = true

func assertf(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}
