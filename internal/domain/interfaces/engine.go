package interfaces

import domaintypes "cipherbox/internal/domain/types"

// Engine opens identities. It is the entry point of the cipher engine's
// capability surface; everything else hangs off the returned handle.
type Engine interface {
	// OpenIdentity loads the identity stored at location or creates one.
	OpenIdentity(location string) (IdentityHandle, error)
	// OpenIdentityWith validates an external identity against location and
	// persists it according to mode.
	OpenIdentityWith(
		location string,
		identity []byte,
		mode domaintypes.IdentityMode,
	) (IdentityHandle, error)
}

// IdentityHandle is a live reference to one opened identity.
type IdentityHandle interface {
	ExportIdentity() ([]byte, error)
	LocalFingerprint() domaintypes.Fingerprint

	// NewPreKey generates and persists the prekey id, returning the public bundle.
	NewPreKey(id domaintypes.PreKeyID) ([]byte, error)

	InitSessionAsInitiator(sessionID string, peerBundle []byte) (SessionHandle, error)
	InitSessionAsResponder(sessionID string, message []byte) (SessionHandle, []byte, error)
	LoadSession(sessionID string) (SessionHandle, error)
	DeleteSession(sessionID string) error

	Close()
}

// SessionHandle is a live reference to one ratcheting session. Handles are not
// safe for concurrent use.
type SessionHandle interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
	Save() error
	RemoteFingerprint() domaintypes.Fingerprint
	Close()
}
