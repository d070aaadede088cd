package engine

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"cipherbox/internal/crypto"
	"cipherbox/internal/domain"
	"cipherbox/internal/store"
	"cipherbox/internal/wire"
)

const identityKey = "identity"

func preKeyKey(id domain.PreKeyID) string { return fmt.Sprintf("prekeys/%d", id) }

func sessionKey(sid string) string { return "sessions/" + sid }

// BackendFactory opens the backend for a box location.
type BackendFactory func(location string) (store.Backend, error)

// FileBackend stores records as files below location.
func FileBackend(location string) (store.Backend, error) {
	return store.NewFileStore(location)
}

// BadgerBackend stores records in a Badger database at location.
func BadgerBackend(syncWrites bool, log logrus.FieldLogger) BackendFactory {
	return func(location string) (store.Backend, error) {
		return store.OpenBadger(store.BadgerOptions{Dir: location, SyncWrites: syncWrites, Logger: log})
	}
}

// Engine opens identities over a storage backend.
type Engine struct {
	backend    BackendFactory
	passphrase string
	scrypt     store.ScryptParams
	log        logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBackendFactory selects the storage backend. The default is FileBackend.
func WithBackendFactory(f BackendFactory) Option {
	return func(e *Engine) { e.backend = f }
}

// WithPassphrase seals the stored identity record with passphrase.
func WithPassphrase(passphrase string) Option {
	return func(e *Engine) { e.passphrase = passphrase }
}

// WithScrypt overrides the key derivation cost used when sealing.
func WithScrypt(p store.ScryptParams) Option {
	return func(e *Engine) { e.scrypt = p }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// New returns an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		backend: FileBackend,
		scrypt:  store.DefaultScrypt,
		log:     logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// OpenIdentity loads the identity stored at location, generating and
// persisting a new one on first use.
func (e *Engine) OpenIdentity(location string) (domain.IdentityHandle, error) {
	const op = "open"
	be, err := e.backend(location)
	if err != nil {
		return nil, fail(op, domain.CodeStorageError, err)
	}

	id, mode, err := e.loadIdentity(be)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if id, err = crypto.NewIdentity(); err != nil {
			_ = be.Close()
			return nil, fail(op, domain.CodeInitError, err)
		}
		if err := e.saveIdentity(be, id, domain.IdentityModeComplete); err != nil {
			_ = be.Close()
			return nil, fail(op, domain.CodeStorageError, err)
		}
		e.log.WithField("fingerprint", crypto.FingerprintIdentity(id).Short()).Info("generated new identity")
	case err != nil:
		_ = be.Close()
		return nil, err
	case mode == domain.IdentityModePublic || !id.HasPrivate():
		_ = be.Close()
		return nil, fail(op, domain.CodeIdentityError, errPublicOnly)
	}
	return newIdentityHandle(e, be, id), nil
}

// OpenIdentityWith opens location with an externally supplied identity.
// A stored identity must have the same public keys. In complete mode the
// full identity is persisted; in public mode only its public half is.
func (e *Engine) OpenIdentityWith(location string, identity []byte, mode domain.IdentityMode) (domain.IdentityHandle, error) {
	const op = "open_with"
	ext, _, err := wire.DecodeIdentity(identity)
	if err != nil {
		return nil, fail(op, domain.CodeDecodeError, err)
	}
	if !ext.HasPrivate() {
		return nil, fail(op, domain.CodeIdentityError, errPublicOnly)
	}

	be, err := e.backend(location)
	if err != nil {
		return nil, fail(op, domain.CodeStorageError, err)
	}

	stored, storedMode, err := e.loadIdentity(be)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// nothing stored yet
	case err != nil:
		_ = be.Close()
		return nil, err
	case !stored.SamePublic(ext):
		_ = be.Close()
		return nil, fail(op, domain.CodeIdentityError, errMismatch)
	case storedMode == mode:
		return newIdentityHandle(e, be, ext), nil
	}

	if err := e.saveIdentity(be, ext, mode); err != nil {
		_ = be.Close()
		return nil, fail(op, domain.CodeStorageError, err)
	}
	return newIdentityHandle(e, be, ext), nil
}

func (e *Engine) loadIdentity(be store.Backend) (domain.Identity, domain.IdentityMode, error) {
	const op = "load_identity"
	raw, err := be.Get(identityKey)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Identity{}, 0, err
	}
	if err != nil {
		return domain.Identity{}, 0, fail(op, domain.CodeStorageError, err)
	}
	if e.passphrase != "" {
		pt, err := store.Open(e.passphrase, raw)
		switch {
		case errors.Is(err, store.ErrNotSealed):
			e.log.Warn("identity record is not sealed; it will be sealed on next write")
		case err != nil:
			return domain.Identity{}, 0, fail(op, domain.CodeIdentityError, err)
		default:
			raw = pt
		}
	}
	id, mode, err := wire.DecodeIdentity(raw)
	if err != nil {
		return domain.Identity{}, 0, fail(op, domain.CodeIdentityError, err)
	}
	return id, mode, nil
}

func (e *Engine) saveIdentity(be store.Backend, id domain.Identity, mode domain.IdentityMode) error {
	raw, err := wire.EncodeIdentity(id, mode)
	if err != nil {
		return err
	}
	if e.passphrase != "" {
		if raw, err = store.Seal(e.passphrase, raw, e.scrypt); err != nil {
			return err
		}
	}
	return be.Put(identityKey, raw)
}

var _ domain.Engine = (*Engine)(nil)
