package crypto

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"cipherbox/internal/domain"
)

// Fingerprint returns the hex BLAKE3-256 digest of public key material.
func Fingerprint(pub []byte) domain.Fingerprint {
	sum := blake3.Sum256(pub)
	return domain.Fingerprint(hex.EncodeToString(sum[:]))
}

// FingerprintIdentity fingerprints both public keys of id. Peers compare
// this value out of band, so local and remote fingerprints use the same input.
func FingerprintIdentity(id domain.Identity) domain.Fingerprint {
	return Fingerprint(id.PublicBytes())
}
