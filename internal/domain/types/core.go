package types

// Fingerprint is a hex digest of public identity material presented to users
// for out-of-band verification.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Bytes returns the hex digest as bytes.
func (f Fingerprint) Bytes() []byte { return []byte(f) }

// Short returns a truncated fingerprint for logs.
func (f Fingerprint) Short() string {
	if len(f) <= 16 {
		return string(f)
	}
	return string(f[:16])
}
