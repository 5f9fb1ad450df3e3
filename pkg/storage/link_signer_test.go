package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkSignerRoundTrip(t *testing.T) {
	signer := NewLinkSigner("test-secret", time.Hour)

	token, expiresAt, err := signer.Sign("attendance-occ-1.csv")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 2*time.Second)

	name, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "attendance-occ-1.csv", name)
}

func TestLinkSignerRejectsTampering(t *testing.T) {
	signer := NewLinkSigner("test-secret", time.Hour)
	token, _, err := signer.Sign("attendance-occ-1.csv")
	require.NoError(t, err)

	_, err = signer.Verify(token + "x")
	assert.Error(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "9999999999"
	_, err = signer.Verify(strings.Join(parts, "."))
	assert.Error(t, err)

	other := NewLinkSigner("other-secret", time.Hour)
	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestLinkSignerRejectsExpired(t *testing.T) {
	signer := NewLinkSigner("test-secret", time.Nanosecond)
	token, _, err := signer.Sign("attendance-occ-1.csv")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = signer.Verify(token)
	assert.Error(t, err)
}
