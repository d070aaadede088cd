package store

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"cipherbox/internal/wire"
)

// The current supported version of the sealed record format.
const envelopeVersion = 1

var (
	// ErrWrongPassphrase is returned when the passphrase is incorrect or the
	// ciphertext has been modified.
	ErrWrongPassphrase = errors.New("store: wrong passphrase or corrupted record")
	// ErrNotSealed is returned by Open for data that is not an envelope.
	ErrNotSealed = errors.New("store: record is not sealed")
)

// envelope holds the ciphertext and KDF parameters.
type envelope struct {
	V      int    `cbor:"v"`
	Salt   []byte `cbor:"salt"`
	N      int    `cbor:"n"`
	R      int    `cbor:"r"`
	P      int    `cbor:"p"`
	Cipher []byte `cbor:"c"`
}

// ScryptParams are the scrypt cost parameters used by Seal.
type ScryptParams struct {
	N, R, P int
}

// DefaultScrypt is the cost used for identity records.
var DefaultScrypt = ScryptParams{N: 1 << 15, R: 8, P: 1}

// Seal derives a key from passphrase and encrypts raw into an envelope.
func Seal(passphrase string, raw []byte, params ScryptParams) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:] /* #nosec G404 */); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], params.N, params.R, params.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte // zero nonce; salt-bound key guarantees uniqueness
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return wire.Marshal(envelope{
		V:      envelopeVersion,
		Salt:   salt[:],
		N:      params.N,
		R:      params.R,
		P:      params.P,
		Cipher: ct,
	})
}

// Open decrypts an envelope produced by Seal.
func Open(passphrase string, b []byte) ([]byte, error) {
	var env envelope
	if err := wire.Unmarshal(b, &env); err != nil || env.V == 0 {
		return nil, ErrNotSealed
	}
	if env.V > envelopeVersion {
		return nil, fmt.Errorf("store: unsupported envelope version %d", env.V)
	}

	key, err := scrypt.Key([]byte(passphrase), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte
	pt, err := aead.Open(nil, nonce[:], env.Cipher, env.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
