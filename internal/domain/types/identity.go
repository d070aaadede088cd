package types

import "fmt"

// Identity holds your long-term X25519 and Ed25519 keys. The private halves
// are zero when only the public identity is known.
type Identity struct {
	XPub   X25519Public
	XPriv  X25519Private
	EdPub  Ed25519Public
	EdPriv Ed25519Private
}

// HasPrivate reports whether the private key material is present.
func (id Identity) HasPrivate() bool {
	return id.XPriv != X25519Private{} && id.EdPriv != Ed25519Private{}
}

// Public returns a copy with the private halves cleared.
func (id Identity) Public() Identity {
	return Identity{XPub: id.XPub, EdPub: id.EdPub}
}

// SamePublic reports whether both identities carry the same public keys.
func (id Identity) SamePublic(other Identity) bool {
	return id.XPub == other.XPub && id.EdPub == other.EdPub
}

// PublicBytes is the concatenation of the X25519 and Ed25519 public keys.
func (id Identity) PublicBytes() []byte {
	out := make([]byte, 0, len(id.XPub)+len(id.EdPub))
	out = append(out, id.XPub[:]...)
	return append(out, id.EdPub[:]...)
}

// IdentityMode selects how much of an external identity is stored locally.
type IdentityMode int

const (
	// IdentityModeComplete persists the full key pair.
	IdentityModeComplete IdentityMode = iota
	// IdentityModePublic persists only the public half.
	IdentityModePublic
)

// String returns the configuration name of the mode.
func (m IdentityMode) String() string {
	switch m {
	case IdentityModeComplete:
		return "complete"
	case IdentityModePublic:
		return "public"
	default:
		return fmt.Sprintf("IdentityMode(%d)", int(m))
	}
}

// ParseIdentityMode parses "complete" or "public".
func ParseIdentityMode(s string) (IdentityMode, error) {
	switch s {
	case "", "complete":
		return IdentityModeComplete, nil
	case "public":
		return IdentityModePublic, nil
	default:
		return 0, fmt.Errorf("unknown identity mode %q", s)
	}
}
