// Package store provides the key/value backends the cipher engine persists
// its records in.
//
// Keys are slash separated paths such as "identity", "prekeys/42" or
// "sessions/<id>". Two backends exist: FileStore keeps one file per key
// under a home directory, BadgerStore keeps everything in a Badger
// database. Both are safe for concurrent use.
//
// Seal and Open wrap a record in a passphrase protected envelope
// (scrypt + ChaCha20-Poly1305) before it reaches the backend.
package store
