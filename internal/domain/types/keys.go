package types

import "crypto/subtle"

// Key sizes in bytes.
const (
	X25519KeySize         = 32
	Ed25519PublicKeySize  = 32
	Ed25519PrivateKeySize = 64
)

// X25519Public is a Curve25519 public key.
type X25519Public [X25519KeySize]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// IsZero reports, in constant time, whether every byte of p is zero.
func (p X25519Public) IsZero() bool {
	var zero X25519Public
	return subtle.ConstantTimeCompare(p[:], zero[:]) == 1
}

// X25519Private is a Curve25519 private key.
type X25519Private [X25519KeySize]byte

func (k X25519Private) Slice() []byte { return k[:] }

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [Ed25519PublicKeySize]byte

func (p Ed25519Public) Slice() []byte { return p[:] }

// Ed25519Private is an Ed25519 signing private key (seed followed by the
// public key, as crypto/ed25519 lays it out).
type Ed25519Private [Ed25519PrivateKeySize]byte

func (k Ed25519Private) Slice() []byte { return k[:] }
