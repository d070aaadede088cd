package types

const (
	// MaxPreKeyID is the highest identifier handed out to ephemeral prekeys.
	MaxPreKeyID PreKeyID = 0xFFFE

	// LastPreKeyID is reserved for the last resort prekey.
	LastPreKeyID PreKeyID = 0xFFFF
)

// PreKeyID identifies a prekey within one identity.
type PreKeyID uint16

// IsLast reports whether id is the last resort identifier.
func (id PreKeyID) IsLast() bool { return id == LastPreKeyID }

// PreKey is a serialised public prekey bundle ready to be handed to a peer.
type PreKey struct {
	ID   PreKeyID
	Data []byte
}
