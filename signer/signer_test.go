package signer_test

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poaengine/signer"
	"poaengine/types"
)

func TestSignRecoverRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("block pre-image"))
	sig, err := signer.Sign(digest[:], priv)
	require.NoError(t, err)
	assert.Len(t, sig, signer.SignatureSize)

	id, err := signer.Recover(digest[:], sig)
	require.NoError(t, err)
	assert.Equal(t, signer.KeyIdFromPubKey(priv.PubKey()), id)
}

func TestRecover_RejectsWrongLength(t *testing.T) {
	digest := sha256.Sum256([]byte("x"))
	_, err := signer.Recover(digest[:], make([]byte, 10))
	assert.ErrorIs(t, err, types.ErrSignatureRecovery)
}

func TestRecover_RejectsMalformedSignature(t *testing.T) {
	digest := sha256.Sum256([]byte("x"))
	garbage := make([]byte, signer.SignatureSize)
	for i := range garbage {
		garbage[i] = 0xFF
	}
	_, err := signer.Recover(digest[:], garbage)
	assert.Error(t, err)
}

func TestSign_RejectsNilKey(t *testing.T) {
	digest := sha256.Sum256([]byte("x"))
	_, err := signer.Sign(digest[:], nil)
	assert.Error(t, err)
}

func TestKeyIdFromPubKey_IsStableHash160(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	id1 := signer.KeyIdFromPubKey(priv.PubKey())
	id2 := signer.KeyIdFromPubKey(priv.PubKey())
	assert.Equal(t, id1, id2)
	assert.False(t, id1.IsZero())
}
