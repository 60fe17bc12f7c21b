package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs_MatchesSentinelByKind(t *testing.T) {
	err := NotFound("list records", "zone %q", "example.org")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, `list records: zone "example.org"`, err.Error())

	wrapped := fmt.Errorf("handler: %w", err)
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(KindIOFailure, "read", nil))

	err := Wrap(KindIOFailure, "read zone", fs.ErrPermission)
	assert.ErrorIs(t, err, ErrIOFailure)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, "read zone: permission denied", err.Error())

	// already classified errors keep their kind
	inner := AlreadyExists("create zone", "exists")
	outer := Wrap(KindIOFailure, "manager", inner)
	assert.Equal(t, KindAlreadyExists, KindOf(outer))
}

func TestErrTimeoutIsDistinct(t *testing.T) {
	err := Wrap(KindExternalFailure, "reload", ErrTimeout)
	assert.ErrorIs(t, err, ErrExternalFailure)
	assert.ErrorIs(t, err, ErrTimeout)

	other := E(KindExternalFailure, "reload", "exit status 1")
	assert.False(t, errors.Is(other, ErrTimeout))
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "not found", KindNotFound.String())
	assert.Equal(t, "malformed input", KindMalformedInput.String())
	assert.Equal(t, "unknown", ErrorKind(200).String())
	assert.Equal(t, "io failure", ErrIOFailure.Error())
}
