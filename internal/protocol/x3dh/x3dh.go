package x3dh

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"

	"cipherbox/internal/crypto"
	"cipherbox/internal/domain"
	"cipherbox/internal/util/memzero"
)

const rootKeySize = 32

var info = []byte("cipherbox-x3dh")

// ErrBadPreKey is returned when the prekey signature fails verification.
var ErrBadPreKey = errors.New("x3dh: prekey signature verification failed")

// InitiatorRoot derives the root key for the initiator from our identity, a
// fresh ephemeral key and the peer's identity and prekey.
func InitiatorRoot(
	our domain.Identity,
	ourEphemeral domain.X25519Private,
	peerIdentity domain.X25519Public,
	peerPreKey domain.X25519Public,
) ([]byte, error) {
	dh1, err := crypto.DH(our.XPriv, peerPreKey) // DH(IKA, PKB)
	if err != nil {
		return nil, err
	}
	dh2, err := crypto.DH(ourEphemeral, peerIdentity) // DH(EKA, IKB)
	if err != nil {
		return nil, err
	}
	dh3, err := crypto.DH(ourEphemeral, peerPreKey) // DH(EKA, PKB)
	if err != nil {
		return nil, err
	}
	return deriveRoot(dh1, dh2, dh3)
}

// ResponderRoot recomputes the initiator's root key from our identity, the
// private half of the prekey the initiator used and its public keys.
func ResponderRoot(
	our domain.Identity,
	preKeyPriv domain.X25519Private,
	peerIdentity domain.X25519Public,
	peerEphemeral domain.X25519Public,
) ([]byte, error) {
	dh1, err := crypto.DH(preKeyPriv, peerIdentity) // DH(PKB, IKA)
	if err != nil {
		return nil, err
	}
	dh2, err := crypto.DH(our.XPriv, peerEphemeral) // DH(IKB, EKA)
	if err != nil {
		return nil, err
	}
	dh3, err := crypto.DH(preKeyPriv, peerEphemeral) // DH(PKB, EKA)
	if err != nil {
		return nil, err
	}
	return deriveRoot(dh1, dh2, dh3)
}

// VerifyPreKey checks the signature over a published prekey.
func VerifyPreKey(edPub domain.Ed25519Public, preKey domain.X25519Public, sig []byte) error {
	if !crypto.VerifyEd25519(edPub, preKey.Slice(), sig) {
		return ErrBadPreKey
	}
	return nil
}

// SignPreKey signs a prekey with the identity's signing key.
func SignPreKey(our domain.Identity, preKey domain.X25519Public) []byte {
	return crypto.SignEd25519(our.EdPriv, preKey.Slice())
}

func deriveRoot(dhs ...[32]byte) ([]byte, error) {
	transcript := make([]byte, 0, 32*len(dhs))
	for i := range dhs {
		transcript = append(transcript, dhs[i][:]...)
		memzero.Zero(dhs[i][:])
	}
	defer memzero.Zero(transcript)

	root := make([]byte, rootKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, transcript, nil, info), root); err != nil {
		return nil, err
	}
	return root, nil
}
