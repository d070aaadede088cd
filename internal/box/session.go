package box

import (
	"sync"

	"github.com/sirupsen/logrus"

	"cipherbox/internal/domain"
)

// Session is a live encrypted channel with one peer. It is safe for
// concurrent use; operations on one session are serialised.
type Session struct {
	mu     sync.Mutex
	id     string
	handle domain.SessionHandle
	box    *Box
	closed bool
}

func newSession(b *Box, id string, h domain.SessionHandle) *Session {
	return &Session{id: id, handle: h, box: b}
}

// ID returns the identifier the session is cached under.
func (s *Session) ID() string { return s.id }

// Encrypt encrypts plaintext and advances the ratchet.
func (s *Session) Encrypt(plaintext []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard("Encrypt"); err != nil {
		return nil, err
	}
	ct, err := s.handle.Encrypt(plaintext)
	if err != nil {
		return nil, s.box.engineFailed("encrypt", err)
	}
	return ct, nil
}

// Decrypt decrypts ciphertext and advances the ratchet. A rejected
// message leaves the session as it was.
func (s *Session) Decrypt(ciphertext []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard("Decrypt"); err != nil {
		return nil, err
	}
	pt, err := s.handle.Decrypt(ciphertext)
	if err != nil {
		return nil, s.box.engineFailed("decrypt", err)
	}
	return pt, nil
}

// Save persists the session state. Nothing is saved implicitly.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard("Save"); err != nil {
		return err
	}
	if err := s.handle.Save(); err != nil {
		return s.box.engineFailed("session_save", err)
	}
	return nil
}

// RemoteFingerprint returns the fingerprint of the peer's identity.
func (s *Session) RemoteFingerprint() (domain.Fingerprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard("RemoteFingerprint"); err != nil {
		return "", err
	}
	return s.handle.RemoteFingerprint(), nil
}

// Close releases the session and removes it from its box's cache. It is
// idempotent and may be called after the box itself was closed.
func (s *Session) Close() {
	b := s.box
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeSessionLocked(s)
}

// IsClosed reports whether the session has been closed.
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// closeHandle transitions to Closed and reports whether it did so.
func (s *Session) closeHandle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	s.handle.Close()
	s.handle = nil
	return true
}

func (s *Session) guard(op string) error {
	if !s.closed {
		return nil
	}
	s.box.log.WithFields(logrus.Fields{"function": op, "session_id": s.id}).Error("use of closed session")
	return domain.ErrSessionClosed
}
