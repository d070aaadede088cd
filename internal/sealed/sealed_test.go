package sealed

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix([]byte(kp.Recipient), []byte("age1")))

	ct, err := Encrypt([]byte("identity record"), []string{kp.Recipient})
	require.NoError(t, err)
	assert.Contains(t, string(ct), "BEGIN AGE ENCRYPTED FILE")

	pt, err := Decrypt(ct, []byte("# created by test\n"+kp.Identity+"\n"))
	require.NoError(t, err)
	assert.Equal(t, "identity record", string(pt))
}

func TestDecryptWrongIdentity(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)
	other, err := GenerateKeypair()
	require.NoError(t, err)

	ct, err := Encrypt([]byte("secret"), []string{kp.Recipient})
	require.NoError(t, err)

	_, err = Decrypt(ct, []byte(other.Identity))
	assert.Error(t, err)
}

func TestEncryptRequiresRecipient(t *testing.T) {
	_, err := Encrypt([]byte("x"), nil)
	assert.Error(t, err)

	_, err = Encrypt([]byte("x"), []string{"not-a-key"})
	assert.Error(t, err)
}
