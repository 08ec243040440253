package dErrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ErrorsIs_MatchesCodeAndMessage(t *testing.T) {
	err := New(CodeUnauthorized, "invalid token")

	require.ErrorIs(t, err, New(CodeUnauthorized, "invalid token"))
	assert.NotErrorIs(t, err, New(CodeUnauthorized, "token has expired"))
	assert.NotErrorIs(t, err, New(CodeForbidden, "invalid token"))
}

func Test_ErrorsIs_SeesThroughWrappedCause(t *testing.T) {
	cause := errors.New("signature is invalid")
	err := Wrap(cause, CodeUnauthorized, "invalid token")

	require.ErrorIs(t, err, New(CodeUnauthorized, "invalid token"))
	require.ErrorIs(t, err, cause)
}

func Test_ErrorsIs_RejectsUncodedTarget(t *testing.T) {
	err := New(CodeNotFound, "comp not found")

	assert.NotErrorIs(t, err, errors.New("comp not found"))
}

func Test_HasCode_WalksTheChain(t *testing.T) {
	inner := New(CodeNotFound, "comp not found")
	outer := Wrap(inner, CodeInternal, "loading comp")

	assert.True(t, HasCode(outer, CodeNotFound))
	assert.True(t, HasCode(outer, CodeInternal))
	assert.False(t, HasCode(outer, CodeConflict))
}
