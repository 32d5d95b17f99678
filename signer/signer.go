// Package signer implements the recoverable-signature primitive the PoA
// engine authenticates block producers with: a block carries a compact
// signature instead of an explicit producer field, and the validator
// recovers the producer's KeyId from it.
package signer

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"

	"poaengine/types"
)

// SignatureSize is the length in bytes of a compact recoverable
// signature: one recovery byte followed by 32-byte R and 32-byte S.
const SignatureSize = 65

// Sign produces a 65-byte compact recoverable signature over digest
// using priv. digest is expected to already be the block's pre-image
// hash (hash_without_sign in the host's terms); Sign does not hash it
// again. The only failure mode is unusable key material: a nil priv is
// rejected with an error, and any non-nil *btcec.PrivateKey signs.
func Sign(digest []byte, priv *btcec.PrivateKey) ([]byte, error) {
	if priv == nil {
		return nil, fmt.Errorf("signer: nil private key")
	}
	sig := ecdsa.SignCompact(priv, digest, true)
	return sig, nil
}

// Recover derives the public key that produced sig over digest, then
// reduces it to a KeyId. It fails if sig is not a well-formed 65-byte
// compact signature or does not recover to a valid curve point.
//
// Recover is the hot path: it runs once per validated block and its
// result should always be read through cache.MinerCache rather than
// called directly on a repeat lookup.
func Recover(digest, sig []byte) (types.KeyId, error) {
	if len(sig) != SignatureSize {
		return types.KeyId{}, fmt.Errorf("%w: signature is %d bytes, want %d", types.ErrSignatureRecovery, len(sig), SignatureSize)
	}
	pub, _, err := ecdsa.RecoverCompact(sig, digest)
	if err != nil {
		return types.KeyId{}, fmt.Errorf("%w: %s", types.ErrSignatureRecovery, err)
	}
	return KeyIdFromPubKey(pub), nil
}

// KeyIdFromPubKey reduces a public key to its KeyId: Bitcoin's
// Hash160 (RIPEMD160(SHA256(.))) over the compressed encoding.
func KeyIdFromPubKey(pub *btcec.PublicKey) types.KeyId {
	var id types.KeyId
	copy(id[:], btcutil.Hash160(pub.SerializeCompressed()))
	return id
}
