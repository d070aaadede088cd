package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"cipherbox/internal/domain"
)

func TestEngineError_Kinds(t *testing.T) {
	cases := []struct {
		code domain.ErrorCode
		kind error
	}{
		{domain.CodeSessionNotFound, domain.ErrSessionNotFound},
		{domain.CodePreKeyNotFound, domain.ErrPreKeyNotFound},
		{domain.CodeIdentityError, domain.ErrIdentityMismatch},
		{domain.CodeDecodeError, domain.ErrDecode},
		{domain.CodeInvalidMessage, domain.ErrDecode},
		{domain.CodeInvalidSignature, domain.ErrDecode},
		{domain.CodeDuplicateMessage, domain.ErrDecode},
		{domain.CodeTooDistantFuture, domain.ErrDecode},
		{domain.CodeDegeneratedKey, domain.ErrDecode},
	}
	for _, tc := range cases {
		err := fmt.Errorf("wrapped: %w", domain.NewEngineError("op", tc.code, nil))
		assert.ErrorIs(t, err, tc.kind, tc.code.String())
		assert.ErrorIs(t, err, domain.ErrEngine, tc.code.String())
		assert.Equal(t, tc.code, domain.CodeOf(err))
		assert.False(t, domain.IsMisuse(err))
	}

	storage := domain.NewEngineError("save", domain.CodeStorageError, errors.New("disk full"))
	assert.NotErrorIs(t, storage, domain.ErrDecode)
	assert.NotErrorIs(t, storage, domain.ErrSessionNotFound)
	assert.Equal(t, "save: storage error: disk full", storage.Error())
}

func TestMisuse(t *testing.T) {
	assert.True(t, domain.IsMisuse(domain.ErrStoreClosed))
	assert.True(t, domain.IsMisuse(domain.ErrSessionClosed))
	assert.NotErrorIs(t, domain.ErrStoreClosed, domain.ErrSessionClosed)
	assert.False(t, domain.IsMisuse(domain.ErrSessionNotFound))
	assert.Zero(t, domain.CodeOf(domain.ErrStoreClosed))
}

func TestParseIdentityMode(t *testing.T) {
	m, err := domain.ParseIdentityMode("public")
	assert.NoError(t, err)
	assert.Equal(t, domain.IdentityModePublic, m)
	assert.Equal(t, "public", m.String())

	m, err = domain.ParseIdentityMode("")
	assert.NoError(t, err)
	assert.Equal(t, domain.IdentityModeComplete, m)

	_, err = domain.ParseIdentityMode("secret")
	assert.Error(t, err)
}
