package crypto

import "cipherbox/internal/domain"

// NewIdentity generates a long-term identity: an X25519 pair for
// Diffie-Hellman and an Ed25519 pair for signing prekeys.
func NewIdentity() (domain.Identity, error) {
	xPriv, xPub, err := GenerateX25519()
	if err != nil {
		return domain.Identity{}, err
	}
	edPriv, edPub, err := GenerateEd25519()
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{XPub: xPub, XPriv: xPriv, EdPub: edPub, EdPriv: edPriv}, nil
}
