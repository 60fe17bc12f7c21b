package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlockedZone(t *testing.T) {
	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	b, err := NewBlockedZone(" ads.example.com ", "api", now)
	require.NoError(t, err)
	assert.Equal(t, "ads.example.com", b.Name)
	assert.Equal(t, MechanismRPZ, b.Mechanism)

	_, err = NewBlockedZone("", "api", now)
	assert.ErrorIs(t, err, ErrMalformedInput)
	_, err = NewBlockedZone("x.com", "", now)
	assert.ErrorIs(t, err, ErrMalformedInput)
	_, err = NewBlockedZone("x.com", "api", time.Time{})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestBlockMechanismText(t *testing.T) {
	b, err := json.Marshal(BlockedZone{Name: "x.com", Mechanism: MechanismNullRoute})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x.com","mechanism":"null-route"}`, string(b))

	var m BlockMechanism
	require.NoError(t, m.UnmarshalText([]byte("RPZ")))
	assert.Equal(t, MechanismRPZ, m)
	assert.Error(t, m.UnmarshalText([]byte("hosts")))
	assert.Equal(t, "BlockMechanism(9)", BlockMechanism(9).String())
}

func TestEmptyDecision(t *testing.T) {
	assert.False(t, EmptyDecision().Blocked)
}
