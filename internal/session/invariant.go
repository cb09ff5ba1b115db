//go:build !codewatch_debug

package session

import "github.com/spiffcs/codewatch/internal/log"

// invariant reports a programming error. Release builds log it and carry on
// without mutating state.
func invariant(msg string, args ...any) {
	log.Error("invariant violated: "+msg, args...)
}
