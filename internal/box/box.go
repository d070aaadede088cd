package box

import (
	"errors"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"cipherbox/internal/domain"
	"cipherbox/internal/metrics"
)

// openMu serialises Open and OpenWith process wide. Two boxes over the
// same directory are still the caller's problem.
var openMu sync.Mutex

// Box is an identity store: one identity, one storage location and the
// sessions opened on it.
type Box struct {
	mu       sync.Mutex
	dir      string
	ident    domain.IdentityHandle
	sessions *sessionCache
	closed   bool

	id      ulid.ULID
	log     *logrus.Entry
	metrics *metrics.Metrics
}

type options struct {
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// Option configures a Box.
type Option func(*options)

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records box activity in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Open creates or loads the identity stored at dir.
func Open(engine domain.Engine, dir string, opts ...Option) (*Box, error) {
	openMu.Lock()
	defer openMu.Unlock()

	o := buildOptions(opts)
	ident, err := engine.OpenIdentity(dir)
	if err != nil {
		o.metrics.EngineError("open")
		o.log.WithError(err).WithField("dir", dir).Warn("open identity failed")
		return nil, err
	}
	return newBox(dir, ident, o), nil
}

// OpenWith opens dir with an externally supplied identity. See
// domain.Engine.OpenIdentityWith for the meaning of mode.
func OpenWith(engine domain.Engine, dir string, identity []byte, mode domain.IdentityMode, opts ...Option) (*Box, error) {
	openMu.Lock()
	defer openMu.Unlock()

	o := buildOptions(opts)
	ident, err := engine.OpenIdentityWith(dir, identity, mode)
	if err != nil {
		o.metrics.EngineError("open_with")
		o.log.WithError(err).WithFields(logrus.Fields{"dir": dir, "mode": mode}).Warn("open identity failed")
		return nil, err
	}
	return newBox(dir, ident, o), nil
}

func buildOptions(opts []Option) options {
	o := options{log: logrus.StandardLogger()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func newBox(dir string, ident domain.IdentityHandle, o options) *Box {
	b := &Box{
		dir:      dir,
		ident:    ident,
		sessions: newSessionCache(),
		id:       ulid.Make(),
		metrics:  o.metrics,
	}
	b.log = o.log.WithFields(logrus.Fields{"package": "box", "box": b.id.String()})
	b.log.WithFields(logrus.Fields{
		"dir":         dir,
		"fingerprint": ident.LocalFingerprint().Short(),
	}).Info("box opened")
	return b
}

// ID is a unique identifier for this open instance, used to correlate logs.
func (b *Box) ID() string { return b.id.String() }

// Dir returns the storage location the box was opened on.
func (b *Box) Dir() string { return b.dir }

// ExportIdentity serialises the identity, private keys included.
func (b *Box) ExportIdentity() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard("ExportIdentity"); err != nil {
		return nil, err
	}
	out, err := b.ident.ExportIdentity()
	if err != nil {
		return nil, b.engineFailed("export_identity", err)
	}
	return out, nil
}

// LocalFingerprint returns the fingerprint of the local identity.
func (b *Box) LocalFingerprint() (domain.Fingerprint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard("LocalFingerprint"); err != nil {
		return "", err
	}
	return b.ident.LocalFingerprint(), nil
}

// InitSessionFromPreKey returns the session cached under id, or
// establishes one as initiator from the peer's prekey bundle. An already
// cached session is returned as is and prekey is ignored.
func (b *Box) InitSessionFromPreKey(id string, prekey []byte) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard("InitSessionFromPreKey"); err != nil {
		return nil, err
	}

	s, created, err := b.sessions.getOrCreate(id, func() (*Session, error) {
		h, err := b.ident.InitSessionAsInitiator(id, prekey)
		if err != nil {
			return nil, b.engineFailed("session_from_prekey", err)
		}
		return newSession(b, id, h), nil
	})
	if err != nil {
		return nil, err
	}
	if created {
		b.metrics.SessionCached(metrics.EstablishedInitiator)
		b.log.WithField("session_id", id).Debug("session established from prekey")
	}
	return s, nil
}

// InitSessionFromMessage returns the session for id together with the
// plaintext of message. When id is cached, message is decrypted on the
// existing session. Otherwise a new session is established as responder,
// consuming the prekey message refers to.
func (b *Box) InitSessionFromMessage(id string, message []byte) (*Session, []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard("InitSessionFromMessage"); err != nil {
		return nil, nil, err
	}

	if s, ok := b.sessions.get(id); ok {
		pt, err := s.Decrypt(message)
		if err != nil {
			return nil, nil, err
		}
		return s, pt, nil
	}

	var plaintext []byte
	s, _, err := b.sessions.getOrCreate(id, func() (*Session, error) {
		h, pt, err := b.ident.InitSessionAsResponder(id, message)
		if err != nil {
			return nil, b.engineFailed("session_from_message", err)
		}
		plaintext = pt
		return newSession(b, id, h), nil
	})
	if err != nil {
		return nil, nil, err
	}
	b.metrics.SessionCached(metrics.EstablishedResponder)
	b.log.WithField("session_id", id).Debug("session established from message")
	return s, plaintext, nil
}

// GetSession returns the cached session for id, loading it from storage
// if needed. It fails with domain.ErrSessionNotFound when neither exists.
func (b *Box) GetSession(id string) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard("GetSession"); err != nil {
		return nil, err
	}
	return b.loadLocked(id)
}

// TryGetSession is GetSession with a missing session reported as
// (nil, false, nil). Every other failure is returned.
func (b *Box) TryGetSession(id string) (*Session, bool, error) {
	s, err := b.GetSession(id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

func (b *Box) loadLocked(id string) (*Session, error) {
	s, created, err := b.sessions.getOrCreate(id, func() (*Session, error) {
		h, err := b.ident.LoadSession(id)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				return nil, b.engineFailed("session_load", err)
			}
			return nil, err
		}
		return newSession(b, id, h), nil
	})
	if err != nil {
		return nil, err
	}
	if created {
		b.metrics.SessionCached(metrics.EstablishedLoaded)
		b.log.WithField("session_id", id).Debug("session loaded")
	}
	return s, nil
}

// CloseSession evicts s from the cache and closes it. Closing a closed
// session does nothing. A session opened on another box is rejected with
// domain.ErrInvalidArgument and left untouched.
func (b *Box) CloseSession(s *Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard("CloseSession"); err != nil {
		return err
	}
	if s != nil && s.box != b {
		return fmt.Errorf("%w: session %q belongs to another box", domain.ErrInvalidArgument, s.id)
	}
	b.closeSessionLocked(s)
	return nil
}

// CloseAllSessions closes every cached session. Persisted sessions are
// untouched.
func (b *Box) CloseAllSessions() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard("CloseAllSessions"); err != nil {
		return err
	}
	b.closeAllLocked()
	return nil
}

func (b *Box) closeAllLocked() {
	drained := b.sessions.drain()
	for _, s := range drained {
		s.closeHandle()
	}
	b.metrics.SessionsEvicted(len(drained))
	if len(drained) > 0 {
		b.log.WithField("count", len(drained)).Debug("sessions closed")
	}
}

func (b *Box) closeSessionLocked(s *Session) {
	if s == nil {
		return
	}
	if b.sessions.remove(s) {
		b.metrics.SessionsEvicted(1)
	}
	if s.closeHandle() {
		b.log.WithField("session_id", s.id).Debug("session closed")
	}
}

// DeleteSession permanently removes the persisted state of id and then
// closes the cached session, if any. The engine is always asked to delete,
// even when nothing was cached. If the engine fails, the cache is unchanged.
func (b *Box) DeleteSession(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard("DeleteSession"); err != nil {
		return err
	}

	if err := b.ident.DeleteSession(id); err != nil {
		return b.engineFailed("session_delete", err)
	}
	if s, ok := b.sessions.get(id); ok {
		b.closeSessionLocked(s)
	}
	b.metrics.SessionDeleted()
	b.log.WithField("session_id", id).Info("session deleted")
	return nil
}

// Close closes all sessions and releases the identity. Closing a closed box
// does nothing.
func (b *Box) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closeAllLocked()
	b.ident.Close()
	b.ident = nil
	b.closed = true
	b.log.Info("box closed")
	return nil
}

// IsClosed reports whether Close has been called.
func (b *Box) IsClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// SessionCount returns the number of cached sessions.
func (b *Box) SessionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions.len()
}

// guard rejects use of a closed box. Callers hold b.mu.
func (b *Box) guard(op string) error {
	if !b.closed {
		return nil
	}
	b.log.WithField("function", op).Error("use of closed box")
	return domain.ErrStoreClosed
}

// engineFailed records an engine failure and returns err unchanged.
func (b *Box) engineFailed(op string, err error) error {
	b.metrics.EngineError(op)
	b.log.WithError(err).WithFields(logrus.Fields{
		"op":   op,
		"code": domain.CodeOf(err),
	}).Warn("engine failure")
	return err
}
