package domain

import (
	interfaces "cipherbox/internal/domain/interfaces"
	types "cipherbox/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Fingerprint    = types.Fingerprint
	PreKeyID       = types.PreKeyID
	PreKey         = types.PreKey
	Identity       = types.Identity
	IdentityMode   = types.IdentityMode
	ErrorCode      = types.ErrorCode
	RatchetHeader  = types.RatchetHeader
	RatchetState   = types.RatchetState
	X25519Public   = types.X25519Public
	X25519Private  = types.X25519Private
	Ed25519Public  = types.Ed25519Public
	Ed25519Private = types.Ed25519Private
)

// Interface aliases expose the engine contracts from the interfaces subpackage.
type (
	Engine         = interfaces.Engine
	IdentityHandle = interfaces.IdentityHandle
	SessionHandle  = interfaces.SessionHandle
)

// Constants re-exported for callers that only import domain.
const (
	MaxPreKeyID  = types.MaxPreKeyID
	LastPreKeyID = types.LastPreKeyID

	IdentityModeComplete = types.IdentityModeComplete
	IdentityModePublic   = types.IdentityModePublic
)

// Engine error codes.
const (
	CodeStorageError          = types.CodeStorageError
	CodeSessionNotFound       = types.CodeSessionNotFound
	CodeDecodeError           = types.CodeDecodeError
	CodeRemoteIdentityChanged = types.CodeRemoteIdentityChanged
	CodeInvalidSignature      = types.CodeInvalidSignature
	CodeInvalidMessage        = types.CodeInvalidMessage
	CodeDuplicateMessage      = types.CodeDuplicateMessage
	CodeTooDistantFuture      = types.CodeTooDistantFuture
	CodeOutdatedMessage       = types.CodeOutdatedMessage
	CodeEncodeError           = types.CodeEncodeError
	CodeIdentityError         = types.CodeIdentityError
	CodePreKeyNotFound        = types.CodePreKeyNotFound
	CodePanic                 = types.CodePanic
	CodeInitError             = types.CodeInitError
	CodeDegeneratedKey        = types.CodeDegeneratedKey
)

// ParseIdentityMode parses "complete" or "public".
func ParseIdentityMode(s string) (IdentityMode, error) { return types.ParseIdentityMode(s) }
