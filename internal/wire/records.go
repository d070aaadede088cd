package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"cipherbox/internal/domain"
)

// Version is the format version written into every envelope and bundle.
const Version uint8 = 1

var (
	ErrVersion = errors.New("wire: unsupported format version")
	ErrKeySize = errors.New("wire: key has the wrong length")
)

// PreKeyBundle is the public prekey material a peer needs to start a
// session with us. Signature covers PreKey and is made with SigningKey.
type PreKeyBundle struct {
	Version     uint8           `cbor:"1,keyasint"`
	PreKeyID    domain.PreKeyID `cbor:"2,keyasint"`
	PreKey      []byte          `cbor:"3,keyasint"`
	IdentityKey []byte          `cbor:"4,keyasint"`
	SigningKey  []byte          `cbor:"5,keyasint"`
	Signature   []byte          `cbor:"6,keyasint"`
}

// PreKeyHeader rides on initiator messages until the responder answers.
type PreKeyHeader struct {
	PreKeyID    domain.PreKeyID `cbor:"1,keyasint"`
	IdentityKey []byte          `cbor:"2,keyasint"`
	SigningKey  []byte          `cbor:"3,keyasint"`
	Ephemeral   []byte          `cbor:"4,keyasint"`
}

// Envelope is a single encrypted message.
type Envelope struct {
	Version uint8         `cbor:"1,keyasint"`
	PreKey  *PreKeyHeader `cbor:"2,keyasint,omitempty"`
	DHKey   []byte        `cbor:"3,keyasint"`
	PN      uint32        `cbor:"4,keyasint"`
	N       uint32        `cbor:"5,keyasint"`
	Cipher  []byte        `cbor:"6,keyasint"`
}

// Header returns the ratchet header carried by the envelope.
func (e Envelope) Header() domain.RatchetHeader {
	return domain.RatchetHeader{
		DiffieHellmanPublicKey: e.DHKey,
		PreviousChainLength:    e.PN,
		MessageIndex:           e.N,
	}
}

// IdentityRecord is the stored or exported form of an identity. The
// private fields are empty for public-only records.
type IdentityRecord struct {
	Mode   domain.IdentityMode `cbor:"1,keyasint"`
	XPub   []byte              `cbor:"2,keyasint"`
	EdPub  []byte              `cbor:"3,keyasint"`
	XPriv  []byte              `cbor:"4,keyasint,omitempty"`
	EdPriv []byte              `cbor:"5,keyasint,omitempty"`
}

// PreKeyRecord is a stored private prekey.
type PreKeyRecord struct {
	ID   domain.PreKeyID `cbor:"1,keyasint"`
	Priv []byte          `cbor:"2,keyasint"`
	Pub  []byte          `cbor:"3,keyasint"`
}

// SkippedKey is a message key kept for a message that has not arrived yet.
type SkippedKey struct {
	DHKey []byte `cbor:"1,keyasint"`
	N     uint32 `cbor:"2,keyasint"`
	Key   []byte `cbor:"3,keyasint"`
}

// SessionRecord is the persisted state of one session.
type SessionRecord struct {
	Version     uint8         `cbor:"1,keyasint"`
	RemoteXPub  []byte        `cbor:"2,keyasint"`
	RemoteEdPub []byte        `cbor:"3,keyasint"`
	Pending     *PreKeyHeader `cbor:"4,keyasint,omitempty"`

	RootKey     []byte       `cbor:"5,keyasint"`
	DHPriv      []byte       `cbor:"6,keyasint"`
	DHPub       []byte       `cbor:"7,keyasint"`
	PeerDHPub   []byte       `cbor:"8,keyasint"`
	SendCK      []byte       `cbor:"9,keyasint,omitempty"`
	RecvCK      []byte       `cbor:"10,keyasint,omitempty"`
	NS          uint32       `cbor:"11,keyasint"`
	NR          uint32       `cbor:"12,keyasint"`
	PN          uint32       `cbor:"13,keyasint"`
	SkippedKeys []SkippedKey `cbor:"14,keyasint,omitempty"`
}

// EncodeIdentity serialises id. In public mode the private halves are
// left out.
func EncodeIdentity(id domain.Identity, mode domain.IdentityMode) ([]byte, error) {
	rec := IdentityRecord{Mode: mode, XPub: id.XPub.Slice(), EdPub: id.EdPub.Slice()}
	if mode == domain.IdentityModeComplete {
		rec.XPriv = id.XPriv.Slice()
		rec.EdPriv = id.EdPriv.Slice()
	}
	return Marshal(rec)
}

// DecodeIdentity parses an identity record.
func DecodeIdentity(b []byte) (domain.Identity, domain.IdentityMode, error) {
	var rec IdentityRecord
	if err := Unmarshal(b, &rec); err != nil {
		return domain.Identity{}, 0, err
	}
	var id domain.Identity
	if err := fill(id.XPub[:], rec.XPub); err != nil {
		return domain.Identity{}, 0, err
	}
	if err := fill(id.EdPub[:], rec.EdPub); err != nil {
		return domain.Identity{}, 0, err
	}
	if rec.Mode == domain.IdentityModeComplete {
		if err := fill(id.XPriv[:], rec.XPriv); err != nil {
			return domain.Identity{}, 0, err
		}
		if err := fill(id.EdPriv[:], rec.EdPriv); err != nil {
			return domain.Identity{}, 0, err
		}
	}
	return id, rec.Mode, nil
}

// DecodeBundle parses and structurally validates a prekey bundle. It does
// not check the signature.
func DecodeBundle(b []byte) (PreKeyBundle, error) {
	var pb PreKeyBundle
	if err := Unmarshal(b, &pb); err != nil {
		return PreKeyBundle{}, err
	}
	if pb.Version != Version {
		return PreKeyBundle{}, fmt.Errorf("%w: %d", ErrVersion, pb.Version)
	}
	if len(pb.PreKey) != 32 || len(pb.IdentityKey) != 32 || len(pb.SigningKey) != 32 {
		return PreKeyBundle{}, ErrKeySize
	}
	return pb, nil
}

// DecodeEnvelope parses and structurally validates an envelope.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := Unmarshal(b, &env); err != nil {
		return Envelope{}, err
	}
	if env.Version != Version {
		return Envelope{}, fmt.Errorf("%w: %d", ErrVersion, env.Version)
	}
	if len(env.DHKey) != 32 {
		return Envelope{}, ErrKeySize
	}
	if h := env.PreKey; h != nil {
		if len(h.IdentityKey) != 32 || len(h.SigningKey) != 32 || len(h.Ephemeral) != 32 {
			return Envelope{}, ErrKeySize
		}
	}
	return env, nil
}

// NewSessionRecord captures st together with the remote identity and any
// pending prekey header.
func NewSessionRecord(remote domain.Identity, pending *PreKeyHeader, st domain.RatchetState) SessionRecord {
	rec := SessionRecord{
		Version:     Version,
		RemoteXPub:  remote.XPub.Slice(),
		RemoteEdPub: remote.EdPub.Slice(),
		Pending:     pending,
		RootKey:     st.RootKey,
		DHPriv:      st.DiffieHellmanPrivate.Slice(),
		DHPub:       st.DiffieHellmanPublic.Slice(),
		PeerDHPub:   st.PeerDiffieHellmanPublic.Slice(),
		SendCK:      st.SendChainKey,
		RecvCK:      st.ReceiveChainKey,
		NS:          st.SendMessageIndex,
		NR:          st.ReceiveMessageIndex,
		PN:          st.PreviousChainLength,
	}
	for id, key := range st.SkippedKeys {
		if len(id) != 36 {
			continue
		}
		rec.SkippedKeys = append(rec.SkippedKeys, SkippedKey{
			DHKey: []byte(id[:32]),
			N:     binary.BigEndian.Uint32([]byte(id[32:])),
			Key:   key,
		})
	}
	return rec
}

// State rebuilds the ratchet state and remote identity from a record.
func (r SessionRecord) State() (domain.Identity, domain.RatchetState, error) {
	if r.Version != Version {
		return domain.Identity{}, domain.RatchetState{}, fmt.Errorf("%w: %d", ErrVersion, r.Version)
	}
	var remote domain.Identity
	st := domain.RatchetState{
		RootKey:             r.RootKey,
		SendChainKey:        r.SendCK,
		ReceiveChainKey:     r.RecvCK,
		SendMessageIndex:    r.NS,
		ReceiveMessageIndex: r.NR,
		PreviousChainLength: r.PN,
		SkippedKeys:         make(map[string][]byte, len(r.SkippedKeys)),
	}
	for _, pair := range []struct {
		dst []byte
		src []byte
	}{
		{remote.XPub[:], r.RemoteXPub},
		{remote.EdPub[:], r.RemoteEdPub},
		{st.DiffieHellmanPrivate[:], r.DHPriv},
		{st.DiffieHellmanPublic[:], r.DHPub},
		{st.PeerDiffieHellmanPublic[:], r.PeerDHPub},
	} {
		if err := fill(pair.dst, pair.src); err != nil {
			return domain.Identity{}, domain.RatchetState{}, err
		}
	}
	for _, sk := range r.SkippedKeys {
		if len(sk.DHKey) != 32 {
			return domain.Identity{}, domain.RatchetState{}, ErrKeySize
		}
		id := make([]byte, 36)
		copy(id, sk.DHKey)
		binary.BigEndian.PutUint32(id[32:], sk.N)
		st.SkippedKeys[string(id)] = sk.Key
	}
	return remote, st, nil
}

func fill(dst, src []byte) error {
	if len(src) != len(dst) {
		return ErrKeySize
	}
	copy(dst, src)
	return nil
}
