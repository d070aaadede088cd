package engine

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"cipherbox/internal/crypto"
	"cipherbox/internal/domain"
	"cipherbox/internal/protocol/ratchet"
	"cipherbox/internal/protocol/x3dh"
	"cipherbox/internal/store"
	"cipherbox/internal/util/memzero"
	"cipherbox/internal/wire"
)

type identityHandle struct {
	engine *Engine
	be     store.Backend
	id     domain.Identity
	fp     domain.Fingerprint
	log    logrus.FieldLogger
	closed bool

	// consumed maps accepted but not yet saved sessions to the prekey they
	// used. Save or DeleteSession removes the prekey from storage.
	mu       sync.Mutex
	consumed map[string]domain.PreKeyID
}

func newIdentityHandle(e *Engine, be store.Backend, id domain.Identity) *identityHandle {
	fp := crypto.FingerprintIdentity(id)
	return &identityHandle{
		engine: e,
		be:     be,
		id:     id,
		fp:     fp,
		log:    e.log.WithField("identity", fp.Short()),

		consumed: make(map[string]domain.PreKeyID),
	}
}

func (h *identityHandle) ExportIdentity() ([]byte, error) {
	if h.closed {
		return nil, fail("export_identity", domain.CodeIdentityError, errHandleClosed)
	}
	b, err := wire.EncodeIdentity(h.id, domain.IdentityModeComplete)
	if err != nil {
		return nil, fail("export_identity", domain.CodeEncodeError, err)
	}
	return b, nil
}

func (h *identityHandle) LocalFingerprint() domain.Fingerprint { return h.fp }

// NewPreKey generates and stores prekey id, returning its signed public
// bundle. An existing prekey with the same id is replaced.
func (h *identityHandle) NewPreKey(id domain.PreKeyID) ([]byte, error) {
	const op = "new_prekey"
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return nil, fail(op, domain.CodeInitError, err)
	}
	rec, err := wire.Marshal(wire.PreKeyRecord{ID: id, Priv: priv.Slice(), Pub: pub.Slice()})
	memzero.Zero(priv[:])
	if err != nil {
		return nil, fail(op, domain.CodeEncodeError, err)
	}
	if err := h.be.Put(preKeyKey(id), rec); err != nil {
		return nil, fail(op, domain.CodeStorageError, err)
	}

	bundle, err := wire.Marshal(wire.PreKeyBundle{
		Version:     wire.Version,
		PreKeyID:    id,
		PreKey:      pub.Slice(),
		IdentityKey: h.id.XPub.Slice(),
		SigningKey:  h.id.EdPub.Slice(),
		Signature:   x3dh.SignPreKey(h.id, pub),
	})
	if err != nil {
		return nil, fail(op, domain.CodeEncodeError, err)
	}
	return bundle, nil
}

// InitSessionAsInitiator starts a session from a peer's prekey bundle. The
// session is not persisted until Save.
func (h *identityHandle) InitSessionAsInitiator(sessionID string, peerBundle []byte) (domain.SessionHandle, error) {
	const op = "session_from_prekey"
	pb, err := wire.DecodeBundle(peerBundle)
	if err != nil {
		return nil, fail(op, domain.CodeDecodeError, err)
	}

	var remote domain.Identity
	var preKey domain.X25519Public
	copy(remote.XPub[:], pb.IdentityKey)
	copy(remote.EdPub[:], pb.SigningKey)
	copy(preKey[:], pb.PreKey)

	if err := x3dh.VerifyPreKey(remote.EdPub, preKey, pb.Signature); err != nil {
		return nil, fail(op, domain.CodeInvalidSignature, err)
	}
	if crypto.IsDegenerate(preKey) || crypto.IsDegenerate(remote.XPub) {
		return nil, fail(op, domain.CodeDegeneratedKey, errDegenerate)
	}

	ephPriv, ephPub, err := crypto.GenerateX25519()
	if err != nil {
		return nil, fail(op, domain.CodeInitError, err)
	}
	defer memzero.Zero(ephPriv[:])

	root, err := x3dh.InitiatorRoot(h.id, ephPriv, remote.XPub, preKey)
	if err != nil {
		return nil, fail(op, domain.CodeDegeneratedKey, err)
	}
	st, err := ratchet.InitAsInitiator(root, remote.XPub)
	memzero.Zero(root)
	if err != nil {
		return nil, fail(op, domain.CodeDegeneratedKey, err)
	}

	pending := &wire.PreKeyHeader{
		PreKeyID:    pb.PreKeyID,
		IdentityKey: h.id.XPub.Slice(),
		SigningKey:  h.id.EdPub.Slice(),
		Ephemeral:   ephPub.Slice(),
	}
	h.log.WithFields(logrus.Fields{"session": sessionID, "prekey": pb.PreKeyID}).Debug("session initiated from prekey")
	return newSessionHandle(h, sessionID, remote, st, pending), nil
}

// InitSessionAsResponder starts a session from a peer's first message and
// returns the decrypted payload. The consumed prekey is removed on the
// session's first Save or when the session is deleted, unless it is the last
// resort prekey.
func (h *identityHandle) InitSessionAsResponder(sessionID string, message []byte) (domain.SessionHandle, []byte, error) {
	const op = "session_from_message"
	env, err := wire.DecodeEnvelope(message)
	if err != nil {
		return nil, nil, fail(op, domain.CodeDecodeError, err)
	}
	ph := env.PreKey
	if ph == nil {
		return nil, nil, fail(op, domain.CodeInvalidMessage, errNoPreKeyHeader)
	}

	var remote domain.Identity
	var eph domain.X25519Public
	copy(remote.XPub[:], ph.IdentityKey)
	copy(remote.EdPub[:], ph.SigningKey)
	copy(eph[:], ph.Ephemeral)
	if crypto.IsDegenerate(eph) || crypto.IsDegenerate(remote.XPub) {
		return nil, nil, fail(op, domain.CodeDegeneratedKey, errDegenerate)
	}

	preKeyPriv, err := h.loadPreKey(ph.PreKeyID)
	if err != nil {
		return nil, nil, storageFail(op, err, domain.CodePreKeyNotFound)
	}
	defer memzero.Zero(preKeyPriv[:])

	root, err := x3dh.ResponderRoot(h.id, preKeyPriv, remote.XPub, eph)
	if err != nil {
		return nil, nil, fail(op, domain.CodeDegeneratedKey, err)
	}
	var ratchetPub domain.X25519Public
	copy(ratchetPub[:], env.DHKey)
	st, err := ratchet.InitAsResponder(root, h.id.XPriv, ratchetPub)
	memzero.Zero(root)
	if err != nil {
		return nil, nil, fail(op, domain.CodeDegeneratedKey, err)
	}

	pt, err := ratchet.Decrypt(&st, associatedData(remote, h.id), env.Header(), env.Cipher)
	if err != nil {
		return nil, nil, decryptFail(op, err)
	}

	s := newSessionHandle(h, sessionID, remote, st, nil)
	if !ph.PreKeyID.IsLast() {
		h.mu.Lock()
		h.consumed[sessionID] = ph.PreKeyID
		h.mu.Unlock()
	}
	h.log.WithFields(logrus.Fields{"session": sessionID, "prekey": ph.PreKeyID}).Debug("session accepted from message")
	return s, pt, nil
}

func (h *identityHandle) LoadSession(sessionID string) (domain.SessionHandle, error) {
	const op = "session_load"
	raw, err := h.be.Get(sessionKey(sessionID))
	if err != nil {
		return nil, storageFail(op, err, domain.CodeSessionNotFound)
	}
	var rec wire.SessionRecord
	if err := wire.Unmarshal(raw, &rec); err != nil {
		return nil, fail(op, domain.CodeDecodeError, err)
	}
	remote, st, err := rec.State()
	if err != nil {
		return nil, fail(op, domain.CodeDecodeError, err)
	}
	return newSessionHandle(h, sessionID, remote, st, rec.Pending), nil
}

// DeleteSession removes the session record together with a prekey the
// session consumed but never released through Save. A missing record is not
// an error.
func (h *identityHandle) DeleteSession(sessionID string) error {
	const op = "session_delete"
	if err := h.be.Delete(sessionKey(sessionID)); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fail(op, domain.CodeStorageError, err)
	}
	if err := h.releasePreKey(sessionID); err != nil {
		return fail(op, domain.CodeStorageError, err)
	}
	return nil
}

// Close releases the backend and wipes the private keys.
func (h *identityHandle) Close() {
	if h.closed {
		return
	}
	h.closed = true
	if err := h.be.Close(); err != nil {
		h.log.WithError(err).Warn("closing backend")
	}
	memzero.Zero(h.id.XPriv[:])
	memzero.Zero(h.id.EdPriv[:])
}

func (h *identityHandle) loadPreKey(id domain.PreKeyID) (domain.X25519Private, error) {
	var priv domain.X25519Private
	raw, err := h.be.Get(preKeyKey(id))
	if err != nil {
		return priv, err
	}
	var rec wire.PreKeyRecord
	if err := wire.Unmarshal(raw, &rec); err != nil {
		return priv, err
	}
	if len(rec.Priv) != len(priv) {
		return priv, wire.ErrKeySize
	}
	copy(priv[:], rec.Priv)
	return priv, nil
}

// releasePreKey deletes the prekey consumed by sessionID, if one is still
// outstanding.
func (h *identityHandle) releasePreKey(sessionID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.consumed[sessionID]
	if !ok {
		return nil
	}
	if err := h.removePreKey(id); err != nil {
		return err
	}
	delete(h.consumed, sessionID)
	h.log.WithFields(logrus.Fields{"session": sessionID, "prekey": id}).Debug("removed consumed prekey")
	return nil
}

func (h *identityHandle) removePreKey(id domain.PreKeyID) error {
	err := h.be.Delete(preKeyKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// associatedData binds a message to both identities, sender first.
func associatedData(sender, receiver domain.Identity) []byte {
	ad := make([]byte, 0, 128)
	ad = append(ad, sender.PublicBytes()...)
	return append(ad, receiver.PublicBytes()...)
}
