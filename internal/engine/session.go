package engine

import (
	"cipherbox/internal/crypto"
	"cipherbox/internal/domain"
	"cipherbox/internal/protocol/ratchet"
	"cipherbox/internal/util/memzero"
	"cipherbox/internal/wire"
)

type sessionHandle struct {
	owner  *identityHandle
	id     string
	remote domain.Identity
	state  domain.RatchetState

	// pending is attached to outgoing messages until the peer replies.
	pending *wire.PreKeyHeader
}

func newSessionHandle(
	owner *identityHandle,
	id string,
	remote domain.Identity,
	st domain.RatchetState,
	pending *wire.PreKeyHeader,
) *sessionHandle {
	return &sessionHandle{owner: owner, id: id, remote: remote, state: st, pending: pending}
}

func (s *sessionHandle) Encrypt(plaintext []byte) ([]byte, error) {
	const op = "encrypt"
	h, ct, err := ratchet.Encrypt(&s.state, associatedData(s.owner.id, s.remote), plaintext)
	if err != nil {
		return nil, fail(op, domain.CodeEncodeError, err)
	}
	b, err := wire.Marshal(wire.Envelope{
		Version: wire.Version,
		PreKey:  s.pending,
		DHKey:   h.DiffieHellmanPublicKey,
		PN:      h.PreviousChainLength,
		N:       h.MessageIndex,
		Cipher:  ct,
	})
	if err != nil {
		return nil, fail(op, domain.CodeEncodeError, err)
	}
	return b, nil
}

func (s *sessionHandle) Decrypt(ciphertext []byte) ([]byte, error) {
	const op = "decrypt"
	env, err := wire.DecodeEnvelope(ciphertext)
	if err != nil {
		return nil, fail(op, domain.CodeDecodeError, err)
	}
	if ph := env.PreKey; ph != nil {
		var x domain.X25519Public
		copy(x[:], ph.IdentityKey)
		if x != s.remote.XPub {
			return nil, fail(op, domain.CodeRemoteIdentityChanged, errRemoteChanged)
		}
	}
	pt, err := ratchet.Decrypt(&s.state, associatedData(s.remote, s.owner.id), env.Header(), env.Cipher)
	if err != nil {
		return nil, decryptFail(op, err)
	}
	// The peer has answered, so it holds the session; stop sending the header.
	s.pending = nil
	return pt, nil
}

// Save persists the session and, on a freshly accepted session, removes
// the prekey it consumed.
func (s *sessionHandle) Save() error {
	const op = "session_save"
	b, err := wire.Marshal(wire.NewSessionRecord(s.remote, s.pending, s.state))
	if err != nil {
		return fail(op, domain.CodeEncodeError, err)
	}
	if err := s.owner.be.Put(sessionKey(s.id), b); err != nil {
		return fail(op, domain.CodeStorageError, err)
	}
	if err := s.owner.releasePreKey(s.id); err != nil {
		return fail(op, domain.CodeStorageError, err)
	}
	return nil
}

func (s *sessionHandle) RemoteFingerprint() domain.Fingerprint {
	return crypto.FingerprintIdentity(s.remote)
}

// Close wipes the ratchet secrets held in memory.
func (s *sessionHandle) Close() {
	memzero.Zero(s.state.RootKey)
	memzero.Zero(s.state.SendChainKey)
	memzero.Zero(s.state.ReceiveChainKey)
	memzero.Zero(s.state.DiffieHellmanPrivate[:])
	for k, v := range s.state.SkippedKeys {
		memzero.Zero(v)
		delete(s.state.SkippedKeys, k)
	}
}
