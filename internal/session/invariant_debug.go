//go:build codewatch_debug

package session

import "fmt"

// invariant reports a programming error. Debug builds stop immediately.
func invariant(msg string, args ...any) {
	panic(fmt.Sprintf("invariant violated: %s %v", msg, args))
}
