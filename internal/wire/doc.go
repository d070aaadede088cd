// Package wire defines the binary records exchanged with peers and kept on
// disk: prekey bundles, message envelopes, identity, prekey and session
// records.
//
// Everything is CBOR with Core Deterministic Encoding, so the same record
// always produces the same bytes. Signatures over prekey bundles rely on
// that property.
package wire
