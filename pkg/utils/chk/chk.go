// Package chk provides boolean-returning error checkers so call sites can
// write `if err = f(); chk.E(err) { ... }` instead of a bare `if err != nil`.
package chk

import "relaymere.dev/pkg/utils/log"

// E logs err at error level and reports whether it was non-nil.
func E(err error) bool {
	if err == nil {
		return false
	}
	log.E.Ln(err)
	return true
}

// T logs err at trace level and reports whether it was non-nil. Use at
// call sites where a non-nil error is routine (e.g. a cache miss) and
// shouldn't be noisy at the default log level.
func T(err error) bool {
	if err == nil {
		return false
	}
	log.T.Ln(err)
	return true
}
