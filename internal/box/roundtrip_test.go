package box

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherbox/internal/domain"
	"cipherbox/internal/engine"
	"cipherbox/internal/logging"
)

func openReal(t *testing.T, dir string) *Box {
	t.Helper()
	e := engine.New(engine.WithLogger(logging.Discard()))
	b, err := Open(e, dir, WithLogger(logging.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// pairUp establishes alice -> bob and returns both sessions plus the first
// message alice sent.
func pairUp(t *testing.T, alice, bob *Box) (a, b *Session, first []byte) {
	t.Helper()
	pks, err := bob.NewPreKeys(0, 1)
	require.NoError(t, err)

	a, err = alice.InitSessionFromPreKey("bob", pks[0].Data)
	require.NoError(t, err)
	first, err = a.Encrypt([]byte("hello"))
	require.NoError(t, err)

	b, pt, err := bob.InitSessionFromMessage("alice", first)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(pt))
	return a, b, first
}

func TestRoundTripRealEngine(t *testing.T) {
	alice := openReal(t, t.TempDir())
	bob := openReal(t, t.TempDir())
	a, b, _ := pairUp(t, alice, bob)

	for _, p := range [][]byte{{}, []byte("x"), make([]byte, 4096)} {
		ct, err := a.Encrypt(p)
		require.NoError(t, err)
		got, err := b.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, string(p), string(got))

		ct, err = b.Encrypt(p)
		require.NoError(t, err)
		got, err = a.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, string(p), string(got))
	}

	bobFP, err := bob.LocalFingerprint()
	require.NoError(t, err)
	remote, err := a.RemoteFingerprint()
	require.NoError(t, err)
	assert.Equal(t, bobFP, remote)
}

func TestSessionSurvivesReopen(t *testing.T) {
	aliceDir, bobDir := t.TempDir(), t.TempDir()
	alice := openReal(t, aliceDir)
	bob := openReal(t, bobDir)
	a, b, _ := pairUp(t, alice, bob)
	require.NoError(t, a.Save())
	require.NoError(t, b.Save())
	require.NoError(t, bob.Close())

	bob = openReal(t, bobDir)
	restored, err := bob.GetSession("alice")
	require.NoError(t, err)

	ct, err := a.Encrypt([]byte("after restart"))
	require.NoError(t, err)
	pt, err := restored.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "after restart", string(pt))
}

func TestDeleteIsIrreversible(t *testing.T) {
	alice := openReal(t, t.TempDir())
	bob := openReal(t, t.TempDir())
	_, b, first := pairUp(t, alice, bob)
	require.NoError(t, b.Save())

	require.NoError(t, bob.DeleteSession("alice"))

	_, err := bob.GetSession("alice")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, _, err = bob.InitSessionFromMessage("alice", first)
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPreKeyNotFound)
	assert.Zero(t, bob.SessionCount())
}

func TestDeleteUnsavedSessionIsIrreversible(t *testing.T) {
	alice := openReal(t, t.TempDir())
	bob := openReal(t, t.TempDir())
	_, _, first := pairUp(t, alice, bob)

	require.NoError(t, bob.DeleteSession("alice"))

	_, _, err := bob.InitSessionFromMessage("alice", first)
	assert.ErrorIs(t, err, domain.ErrPreKeyNotFound)
	assert.Zero(t, bob.SessionCount())
}

func TestLastPreKeyServesManyPeers(t *testing.T) {
	bob := openReal(t, t.TempDir())
	last, err := bob.NewLastPreKey()
	require.NoError(t, err)

	for _, name := range []string{"alice", "carol"} {
		peer := openReal(t, t.TempDir())
		s, err := peer.InitSessionFromPreKey("bob", last.Data)
		require.NoError(t, err)
		msg, err := s.Encrypt([]byte("hi from " + name))
		require.NoError(t, err)

		in, pt, err := bob.InitSessionFromMessage(name, msg)
		require.NoError(t, err)
		assert.Equal(t, "hi from "+name, string(pt))
		require.NoError(t, in.Save())
	}
	assert.Equal(t, 2, bob.SessionCount())
}

func TestOpenWithExportedIdentity(t *testing.T) {
	src := openReal(t, t.TempDir())
	exported, err := src.ExportIdentity()
	require.NoError(t, err)
	want, err := src.LocalFingerprint()
	require.NoError(t, err)

	e := engine.New(engine.WithLogger(logging.Discard()))
	b, err := OpenWith(e, t.TempDir(), exported, domain.IdentityModeComplete, WithLogger(logging.Discard()))
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	got, err := b.LocalFingerprint()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	mismatch, err := OpenWith(e, src.Dir(), mustExport(t), domain.IdentityModeComplete, WithLogger(logging.Discard()))
	assert.Nil(t, mismatch)
	assert.ErrorIs(t, err, domain.ErrIdentityMismatch)
}

func mustExport(t *testing.T) []byte {
	t.Helper()
	other := openReal(t, t.TempDir())
	b, err := other.ExportIdentity()
	require.NoError(t, err)
	return b
}
