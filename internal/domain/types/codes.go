package types

import "fmt"

// ErrorCode is the engine-specific reason attached to an engine failure.
// The numbering follows the cryptobox C API.
type ErrorCode int

const (
	CodeStorageError          ErrorCode = 1
	CodeSessionNotFound       ErrorCode = 2
	CodeDecodeError           ErrorCode = 3
	CodeRemoteIdentityChanged ErrorCode = 4
	CodeInvalidSignature      ErrorCode = 5
	CodeInvalidMessage        ErrorCode = 6
	CodeDuplicateMessage      ErrorCode = 7
	CodeTooDistantFuture      ErrorCode = 8
	CodeOutdatedMessage       ErrorCode = 9
	CodeEncodeError           ErrorCode = 12
	CodeIdentityError         ErrorCode = 13
	CodePreKeyNotFound        ErrorCode = 14
	CodePanic                 ErrorCode = 15
	CodeInitError             ErrorCode = 16
	CodeDegeneratedKey        ErrorCode = 17
)

var codeNames = map[ErrorCode]string{
	CodeStorageError:          "storage error",
	CodeSessionNotFound:       "session not found",
	CodeDecodeError:           "decode error",
	CodeRemoteIdentityChanged: "remote identity changed",
	CodeInvalidSignature:      "invalid signature",
	CodeInvalidMessage:        "invalid message",
	CodeDuplicateMessage:      "duplicate message",
	CodeTooDistantFuture:      "too distant future",
	CodeOutdatedMessage:       "outdated message",
	CodeEncodeError:           "encode error",
	CodeIdentityError:         "identity error",
	CodePreKeyNotFound:        "prekey not found",
	CodePanic:                 "panic",
	CodeInitError:             "init error",
	CodeDegeneratedKey:        "degenerated key",
}

// String returns a human readable code name.
func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code %d", int(c))
}
