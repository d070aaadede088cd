// Package box is the session store and lifecycle manager of cipherbox.
//
// A Box owns one identity opened through a domain.Engine, a storage
// location and a cache of live sessions keyed by caller-chosen
// identifiers. The cache holds at most one *Session per identifier: any
// number of goroutines racing to initialise or load the same identifier
// observe the same instance, and the engine is asked exactly once.
//
// Locking: every structural operation on a Box runs under the box mutex.
// Each Session has its own mutex serialising Encrypt, Decrypt, Save and
// RemoteFingerprint, so traffic on distinct sessions proceeds in parallel.
// When both are needed the box mutex is taken first.
//
// Closing a Box or a Session is terminal. Any later use returns an error
// wrapping domain.ErrMisuse; Close itself may be called any number of times.
package box
