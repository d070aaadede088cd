// Package memzero wipes secrets held in byte slices.
package memzero

import "runtime"

// Zero overwrites b with zeros. The KeepAlive stops the compiler from
// treating the writes as dead when b is not read again.
func Zero(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
