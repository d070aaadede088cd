// Package x3dh implements the key agreement used to bootstrap a Double Ratchet
// session between two identities.
//
// # Overview
//
// The initiator derives a shared 32-byte root key with a responder who has
// published a prekey bundle. The bundle contains:
//   - Identity keys (X25519 for agreement, Ed25519 for signing)
//   - One prekey (X25519), ephemeral or the last resort key, and its signature
//
// # Flows
//
// Initiator:
//  1. Verify the prekey signature.
//  2. Generate an ephemeral X25519 key pair.
//  3. Compute DH values (IKa·PKb, EKa·IKb, EKa·PKb).
//  4. HKDF over the concatenated DH transcript to produce the root key.
//
// Responder:
//  1. Receive the prekey header (initiator IK, ephemeral EK, prekey id).
//  2. Look up the prekey private half.
//  3. Compute the symmetric DH set (PKb·IKa, IKb·EKa, PKb·EKa).
//  4. HKDF the same transcript to the identical root key.
//
// # Errors
//
// ErrBadPreKey is returned when the prekey signature fails verification.
// Other errors wrap lower-level crypto failures such as low-order points.
package x3dh
