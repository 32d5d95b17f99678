package signer

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"poaengine/types"
)

// LocalIdentity is the local node's producer credentials: which
// authority it claims to be, the key material to sign with, and the
// script the block reward should pay out to. It exists only when the
// process is configured to mine (poa-miner set and its key unlocked in
// the wallet); a validator-only node never constructs one.
type LocalIdentity struct {
	Miner        types.KeyId
	PrivateKey   *btcec.PrivateKey
	RewardScript []byte
}

// NewLocalIdentity builds a LocalIdentity from an unlocked private key,
// deriving the KeyId and a P2PKH reward script from it. It fails if priv
// is nil (wrapping types.ErrIdentityPending), or if the resulting KeyId
// disagrees with the miner address the operator configured, which
// usually means the wallet returned the wrong key.
func NewLocalIdentity(expected types.KeyId, priv *btcec.PrivateKey) (*LocalIdentity, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: no signing key material", types.ErrIdentityPending)
	}
	id := KeyIdFromPubKey(priv.PubKey())
	if id != expected {
		return nil, fmt.Errorf("signer: wallet key %s does not match configured miner %s", id, expected)
	}
	addr, err := btcutil.NewAddressPubKeyHash(id[:], &chaincfg.MainNetParams)
	if err != nil {
		// Reward script derivation is best-effort local convenience;
		// a nil script is a valid value the block assembler must
		// treat as "no explicit payout script configured".
		return &LocalIdentity{Miner: id, PrivateKey: priv}, nil
	}
	script, err := payToPubKeyHashScript(addr.Hash160())
	if err != nil {
		return &LocalIdentity{Miner: id, PrivateKey: priv}, nil
	}
	return &LocalIdentity{Miner: id, PrivateKey: priv, RewardScript: script}, nil
}

// Sign signs digest with the identity's private key.
func (li *LocalIdentity) Sign(digest []byte) ([]byte, error) {
	return Sign(digest, li.PrivateKey)
}

// payToPubKeyHashScript builds the canonical OP_DUP OP_HASH160 <hash>
// OP_EQUALVERIFY OP_CHECKSIG script by hand: the engine has no
// dependency on the host's script-building package (block assembly is
// an external collaborator, see types.BlockRef), so it only needs the
// handful of opcodes that make up a P2PKH output.
func payToPubKeyHashScript(hash160 *[20]byte) ([]byte, error) {
	if hash160 == nil {
		return nil, fmt.Errorf("signer: nil pubkey hash")
	}
	const (
		opDup         = 0x76
		opHash160     = 0xa9
		opData20      = 0x14
		opEqualVerify = 0x88
		opCheckSig    = 0xac
	)
	script := make([]byte, 0, 25)
	script = append(script, opDup, opHash160, opData20)
	script = append(script, hash160[:]...)
	script = append(script, opEqualVerify, opCheckSig)
	return script, nil
}
