package ratchet_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherbox/internal/crypto"
	"cipherbox/internal/domain"
	"cipherbox/internal/protocol/ratchet"
)

// pair returns initiator and responder states sharing a simulated X3DH root.
func pair(t *testing.T) (a, b domain.RatchetState) {
	t.Helper()
	rk := bytes.Repeat([]byte{0x42}, 32)

	bPriv, bPub, err := crypto.GenerateX25519()
	require.NoError(t, err)

	a, err = ratchet.InitAsInitiator(rk, bPub)
	require.NoError(t, err)
	b, err = ratchet.InitAsResponder(rk, bPriv, a.DiffieHellmanPublic)
	require.NoError(t, err)
	return a, b
}

type sealed struct {
	h  domain.RatchetHeader
	ct []byte
}

func encrypt(t *testing.T, st *domain.RatchetState, msg string) sealed {
	t.Helper()
	h, ct, err := ratchet.Encrypt(st, nil, []byte(msg))
	require.NoError(t, err)
	return sealed{h: h, ct: ct}
}

func TestDoubleRatchet_OneRoundTrip(t *testing.T) {
	a, b := pair(t)

	m := encrypt(t, &a, "hi")
	pt, err := ratchet.Decrypt(&b, nil, m.h, m.ct)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(pt))
}

func TestDoubleRatchet_Conversation(t *testing.T) {
	a, b := pair(t)

	for i, msg := range []string{"a1", "a2"} {
		m := encrypt(t, &a, msg)
		pt, err := ratchet.Decrypt(&b, nil, m.h, m.ct)
		require.NoError(t, err, "message %d", i)
		assert.Equal(t, msg, string(pt))
	}

	reply := encrypt(t, &b, "b1")
	pt, err := ratchet.Decrypt(&a, nil, reply.h, reply.ct)
	require.NoError(t, err)
	assert.Equal(t, "b1", string(pt))

	again := encrypt(t, &a, "a3")
	pt, err = ratchet.Decrypt(&b, nil, again.h, again.ct)
	require.NoError(t, err)
	assert.Equal(t, "a3", string(pt))
}

func TestDoubleRatchet_EmptyPlaintext(t *testing.T) {
	a, b := pair(t)

	h, ct, err := ratchet.Encrypt(&a, nil, []byte{})
	require.NoError(t, err)
	pt, err := ratchet.Decrypt(&b, nil, h, ct)
	require.NoError(t, err)
	assert.Empty(t, pt)
}

func TestDoubleRatchet_OutOfOrder(t *testing.T) {
	a, b := pair(t)

	m1 := encrypt(t, &a, "one")
	m2 := encrypt(t, &a, "two")
	m3 := encrypt(t, &a, "three")

	pt, err := ratchet.Decrypt(&b, nil, m3.h, m3.ct)
	require.NoError(t, err)
	assert.Equal(t, "three", string(pt))

	pt, err = ratchet.Decrypt(&b, nil, m1.h, m1.ct)
	require.NoError(t, err)
	assert.Equal(t, "one", string(pt))

	pt, err = ratchet.Decrypt(&b, nil, m2.h, m2.ct)
	require.NoError(t, err)
	assert.Equal(t, "two", string(pt))
}

func TestDoubleRatchet_DuplicateRejected(t *testing.T) {
	a, b := pair(t)

	m := encrypt(t, &a, "once")
	_, err := ratchet.Decrypt(&b, nil, m.h, m.ct)
	require.NoError(t, err)

	_, err = ratchet.Decrypt(&b, nil, m.h, m.ct)
	assert.ErrorIs(t, err, ratchet.ErrDuplicateMessage)
}

func TestDoubleRatchet_TamperedMessageLeavesStateIntact(t *testing.T) {
	a, b := pair(t)

	m := encrypt(t, &a, "payload")
	bad := append([]byte(nil), m.ct...)
	bad[0] ^= 0xFF

	before := ratchet.Clone(b)
	_, err := ratchet.Decrypt(&b, nil, m.h, bad)
	assert.ErrorIs(t, err, ratchet.ErrInvalidMessage)
	assert.Equal(t, before, b)

	pt, err := ratchet.Decrypt(&b, nil, m.h, m.ct)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(pt))
}

func TestDoubleRatchet_TooDistantFuture(t *testing.T) {
	a, b := pair(t)

	m := encrypt(t, &a, "far")
	m.h.MessageIndex = ratchet.MaxSkip + 5
	_, err := ratchet.Decrypt(&b, nil, m.h, m.ct)
	assert.ErrorIs(t, err, ratchet.ErrTooDistantFuture)
}

func TestDoubleRatchet_MalformedHeader(t *testing.T) {
	_, b := pair(t)

	_, err := ratchet.Decrypt(&b, nil, domain.RatchetHeader{DiffieHellmanPublicKey: []byte{1, 2}}, []byte("x"))
	assert.ErrorIs(t, err, ratchet.ErrInvalidHeader)
}
