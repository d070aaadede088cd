package engine

import (
	"errors"

	"cipherbox/internal/domain"
	"cipherbox/internal/protocol/ratchet"
	"cipherbox/internal/protocol/x3dh"
	"cipherbox/internal/store"
)

var (
	errPublicOnly     = errors.New("stored identity has no private keys")
	errMismatch       = errors.New("identity does not match the stored one")
	errNoPreKeyHeader = errors.New("message carries no prekey header")
	errRemoteChanged  = errors.New("prekey header names a different identity")
	errDegenerate     = errors.New("degenerate public key")
	errHandleClosed   = errors.New("handle is closed")
)

func fail(op string, code domain.ErrorCode, err error) error {
	return domain.NewEngineError(op, code, err)
}

// storageFail classifies a backend error.
func storageFail(op string, err error, missing domain.ErrorCode) error {
	if errors.Is(err, store.ErrNotFound) {
		return fail(op, missing, err)
	}
	return fail(op, domain.CodeStorageError, err)
}

// decryptFail maps ratchet and codec failures onto engine codes.
func decryptFail(op string, err error) error {
	switch {
	case errors.Is(err, ratchet.ErrDuplicateMessage):
		return fail(op, domain.CodeDuplicateMessage, err)
	case errors.Is(err, ratchet.ErrTooDistantFuture):
		return fail(op, domain.CodeTooDistantFuture, err)
	case errors.Is(err, ratchet.ErrInvalidMessage):
		return fail(op, domain.CodeInvalidMessage, err)
	case errors.Is(err, x3dh.ErrBadPreKey):
		return fail(op, domain.CodeInvalidSignature, err)
	case errors.Is(err, errDegenerate):
		return fail(op, domain.CodeDegeneratedKey, err)
	default:
		return fail(op, domain.CodeDecodeError, err)
	}
}
