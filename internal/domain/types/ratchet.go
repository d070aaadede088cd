package types

// RatchetHeader travels in the clear next to every ratchet ciphertext and is
// bound into its associated data.
type RatchetHeader struct {
	DiffieHellmanPublicKey []byte
	PreviousChainLength    uint32
	MessageIndex           uint32
}

// RatchetState is the mutable Double Ratchet state of one session. It is
// persisted through wire.SessionRecord, never directly.
type RatchetState struct {
	RootKey                 []byte
	DiffieHellmanPrivate    X25519Private
	DiffieHellmanPublic     X25519Public
	PeerDiffieHellmanPublic X25519Public
	SendChainKey            []byte
	ReceiveChainKey         []byte
	SendMessageIndex        uint32
	ReceiveMessageIndex     uint32
	PreviousChainLength     uint32

	// SkippedKeys holds message keys for messages that have not arrived yet,
	// keyed by peer ratchet key and message index.
	SkippedKeys map[string][]byte
}
