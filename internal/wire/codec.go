package wire

import (
	"errors"

	"github.com/fxamacker/cbor/v2"
)

// MaxRecordSize bounds every encoded record and message accepted by
// Unmarshal.
const MaxRecordSize = 1 << 20

// ErrTooLarge is returned for input longer than MaxRecordSize.
var ErrTooLarge = errors.New("wire: record too large")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("wire: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxNestedLevels:  16,
		MaxArrayElements: 1 << 16,
		MaxMapPairs:      1 << 16,
	}.DecMode()
	if err != nil {
		panic("wire: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v. Input longer than MaxRecordSize is
// rejected before decoding.
func Unmarshal(data []byte, v any) error {
	if len(data) > MaxRecordSize {
		return ErrTooLarge
	}
	return decMode.Unmarshal(data, v)
}
