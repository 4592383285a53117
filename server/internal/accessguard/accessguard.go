// Package accessguard runs code that may use a chunk access after its scope
// ended, turning the resulting panic into a return value.
package accessguard

import "github.com/df-mc/chunkmesh/server/world/chunk"

// Run calls fn and reports false if fn panicked because it used an expired
// chunk access. Any other panic is propagated. The mesh builder uses it to
// report the expired access with its own error instead of a generic build
// failure.
func Run(fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if msg, str := r.(string); str && msg == chunk.ExpiredPanicMessage {
				ok = false
				return
			}
			panic(r)
		}
	}()
	fn()
	return true
}
