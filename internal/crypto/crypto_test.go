package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherbox/internal/crypto"
	"cipherbox/internal/domain"
)

func TestDH_Agrees(t *testing.T) {
	aPriv, aPub, err := crypto.GenerateX25519()
	require.NoError(t, err)
	bPriv, bPub, err := crypto.GenerateX25519()
	require.NoError(t, err)

	ab, err := crypto.DH(aPriv, bPub)
	require.NoError(t, err)
	ba, err := crypto.DH(bPriv, aPub)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestDH_RejectsZeroKey(t *testing.T) {
	priv, _, err := crypto.GenerateX25519()
	require.NoError(t, err)

	var zero domain.X25519Public
	assert.True(t, crypto.IsDegenerate(zero))
	_, err = crypto.DH(priv, zero)
	assert.Error(t, err)
}

func TestSignVerify(t *testing.T) {
	priv, pub, err := crypto.GenerateEd25519()
	require.NoError(t, err)

	sig := crypto.SignEd25519(priv, []byte("prekey"))
	assert.True(t, crypto.VerifyEd25519(pub, []byte("prekey"), sig))
	assert.False(t, crypto.VerifyEd25519(pub, []byte("other"), sig))
	assert.False(t, crypto.VerifyEd25519(pub, []byte("prekey"), sig[:10]))
}

func TestFingerprint_DeterministicHex(t *testing.T) {
	id, err := crypto.NewIdentity()
	require.NoError(t, err)
	require.True(t, id.HasPrivate())

	fp := crypto.FingerprintIdentity(id)
	assert.Len(t, fp.String(), 64)
	assert.Equal(t, fp, crypto.FingerprintIdentity(id.Public()))

	other, err := crypto.NewIdentity()
	require.NoError(t, err)
	assert.NotEqual(t, fp, crypto.FingerprintIdentity(other))
}
