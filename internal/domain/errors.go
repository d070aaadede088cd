package domain

import (
	"errors"
	"fmt"

	types "cipherbox/internal/domain/types"
)

// ErrMisuse is the category of programmer errors: using a box or a session
// after it has been closed. Callers should treat these as bugs, not retry them.
var ErrMisuse = errors.New("invalid use of a closed resource")

var (
	// ErrStoreClosed is returned by every box operation after Close.
	ErrStoreClosed = fmt.Errorf("%w: box is closed", ErrMisuse)
	// ErrSessionClosed is returned by every session operation after Close.
	ErrSessionClosed = fmt.Errorf("%w: session is closed", ErrMisuse)
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrPreKeyNotFound   = errors.New("prekey not found")
	ErrIdentityMismatch = errors.New("identity mismatch")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrDecode           = errors.New("decode error")
	ErrEngine           = errors.New("engine failure")
)

// EngineError is a failure reported by the cipher engine. It always matches
// ErrEngine and, depending on Code, one of the more specific kinds.
type EngineError struct {
	Op   string
	Code types.ErrorCode
	Err  error
}

// NewEngineError builds an EngineError for op.
func NewEngineError(op string, code types.ErrorCode, err error) *EngineError {
	return &EngineError{Op: op, Code: code, Err: err}
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Is maps engine codes onto the error kinds callers match against.
func (e *EngineError) Is(target error) bool {
	switch target {
	case ErrEngine:
		return true
	case ErrSessionNotFound:
		return e.Code == types.CodeSessionNotFound
	case ErrPreKeyNotFound:
		return e.Code == types.CodePreKeyNotFound
	case ErrIdentityMismatch:
		return e.Code == types.CodeIdentityError
	case ErrDecode:
		switch e.Code {
		case types.CodeDecodeError,
			types.CodeInvalidMessage,
			types.CodeInvalidSignature,
			types.CodeDuplicateMessage,
			types.CodeTooDistantFuture,
			types.CodeOutdatedMessage,
			types.CodeDegeneratedKey:
			return true
		}
	}
	return false
}

// CodeOf returns the engine code carried by err, or 0 if err did not come
// from the engine.
func CodeOf(err error) types.ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 0
}

// IsMisuse reports whether err is a programmer error.
func IsMisuse(err error) bool { return errors.Is(err, ErrMisuse) }
