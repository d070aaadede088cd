// Package domain defines core data models and contracts shared across cipherbox.
// It contains plain types (prekeys, identities, ratchet state), the error kinds
// surfaced by the box, and the capability surface of the cipher engine.
package domain
