// Package engine is the cipher engine behind a box: identities, signed
// prekeys, X3DH session setup and Double Ratchet messaging, persisted in a
// store.Backend.
//
// Storage layout inside a backend:
//
//	identity          identity record, optionally sealed with a passphrase
//	prekeys/<id>      private prekey records
//	sessions/<sid>    session records
//
// Every failure is reported as a *domain.EngineError carrying an
// ErrorCode. Handles are not synchronised; callers serialise access to an
// identity and to each session.
package engine
