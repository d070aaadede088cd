package box

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"cipherbox/internal/domain"
)

// fakeEngine is a scripted engine. Ciphertexts are "ct:" + plaintext and
// bundles are "pk:<id>". It counts calls and fails on demand.
type fakeEngine struct {
	mu        sync.Mutex
	persisted map[string]bool
	prekeys   map[domain.PreKeyID]bool

	initiator atomic.Int32
	responder atomic.Int32
	loads     atomic.Int32
	deletes   atomic.Int32
	preKeys   atomic.Int32
	closed    atomic.Int32

	// failPreKeyAfter makes NewPreKey fail once this many have been made.
	failPreKeyAfter int32
	delay           time.Duration
	openErr         error
	deleteErr       error
}

var errFake = errors.New("fake engine failure")

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		persisted:       make(map[string]bool),
		prekeys:         make(map[domain.PreKeyID]bool),
		failPreKeyAfter: -1,
	}
}

func (e *fakeEngine) OpenIdentity(string) (domain.IdentityHandle, error) {
	if e.openErr != nil {
		return nil, e.openErr
	}
	return &fakeIdentity{e: e}, nil
}

func (e *fakeEngine) OpenIdentityWith(loc string, identity []byte, _ domain.IdentityMode) (domain.IdentityHandle, error) {
	if !bytes.Equal(identity, []byte("me")) {
		return nil, domain.NewEngineError("open_with", domain.CodeIdentityError, errFake)
	}
	return e.OpenIdentity(loc)
}

type fakeIdentity struct{ e *fakeEngine }

func (f *fakeIdentity) ExportIdentity() ([]byte, error)      { return []byte("me"), nil }
func (f *fakeIdentity) LocalFingerprint() domain.Fingerprint { return "00112233445566778899" }
func (f *fakeIdentity) Close()                               { f.e.closed.Add(1) }
func (f *fakeIdentity) DeleteSession(id string) error {
	f.e.deletes.Add(1)
	if f.e.deleteErr != nil {
		return f.e.deleteErr
	}
	f.e.mu.Lock()
	defer f.e.mu.Unlock()
	delete(f.e.persisted, id)
	return nil
}

func (f *fakeIdentity) NewPreKey(id domain.PreKeyID) ([]byte, error) {
	if f.e.failPreKeyAfter >= 0 && f.e.preKeys.Load() >= f.e.failPreKeyAfter {
		return nil, domain.NewEngineError("new_prekey", domain.CodeStorageError, errFake)
	}
	f.e.preKeys.Add(1)
	f.e.mu.Lock()
	f.e.prekeys[id] = true
	f.e.mu.Unlock()
	return []byte{byte(id >> 8), byte(id)}, nil
}

func (f *fakeIdentity) InitSessionAsInitiator(id string, bundle []byte) (domain.SessionHandle, error) {
	f.e.initiator.Add(1)
	time.Sleep(f.e.delay)
	if !bytes.HasPrefix(bundle, []byte("pk:")) {
		return nil, domain.NewEngineError("session_from_prekey", domain.CodeDecodeError, errFake)
	}
	return f.session(id), nil
}

func (f *fakeIdentity) InitSessionAsResponder(id string, msg []byte) (domain.SessionHandle, []byte, error) {
	f.e.responder.Add(1)
	time.Sleep(f.e.delay)
	pt, ok := bytes.CutPrefix(msg, []byte("ct:"))
	if !ok {
		return nil, nil, domain.NewEngineError("session_from_message", domain.CodeDecodeError, errFake)
	}
	return f.session(id), pt, nil
}

func (f *fakeIdentity) LoadSession(id string) (domain.SessionHandle, error) {
	f.e.loads.Add(1)
	time.Sleep(f.e.delay)
	f.e.mu.Lock()
	defer f.e.mu.Unlock()
	if !f.e.persisted[id] {
		return nil, domain.NewEngineError("session_load", domain.CodeSessionNotFound, errFake)
	}
	return f.session(id), nil
}

func (f *fakeIdentity) session(id string) *fakeSession { return &fakeSession{e: f.e, id: id} }

type fakeSession struct {
	e      *fakeEngine
	id     string
	closed bool
}

func (s *fakeSession) Encrypt(pt []byte) ([]byte, error) {
	return append([]byte("ct:"), pt...), nil
}

func (s *fakeSession) Decrypt(ct []byte) ([]byte, error) {
	pt, ok := bytes.CutPrefix(ct, []byte("ct:"))
	if !ok {
		return nil, domain.NewEngineError("decrypt", domain.CodeInvalidMessage, errFake)
	}
	return pt, nil
}

func (s *fakeSession) Save() error {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	s.e.persisted[s.id] = true
	return nil
}

func (s *fakeSession) RemoteFingerprint() domain.Fingerprint { return "peer" }
func (s *fakeSession) Close()                                { s.closed = true }
