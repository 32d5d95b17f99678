// Package types holds the small value types shared across the PoA engine
// packages: authority identifiers and the host-defined block handle the
// engine only ever borrows.
package types

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// KeyIdSize is the length in bytes of a KeyId, matching Bitcoin's
// RIPEMD160(SHA256(pubkey)) pubkey-hash convention.
const KeyIdSize = 20

// KeyId names an authority by the hash of its public key. It is the
// currency the whole engine reasons in: registry membership, cache keys
// and eligibility checks are all phrased in terms of KeyId, never raw
// public keys.
type KeyId [KeyIdSize]byte

// String renders the KeyId as lowercase hex. It is not the wire/address
// format (that lives in registry, which knows the encoding scheme); this
// is strictly for logs and error messages.
func (k KeyId) String() string {
	return hex.EncodeToString(k[:])
}

// IsZero reports whether k is the zero value, used to detect an unset
// LocalIdentity.
func (k KeyId) IsZero() bool {
	return k == KeyId{}
}

// BlockHash is a 32-byte block identifier as produced by the host chain.
type BlockHash = chainhash.Hash

// BlockRef is a borrowed handle into the host's block index. The engine
// never owns one: it reads through the interface and must tolerate a
// handle going stale across a reorg (see Registry/Scheduler doc comments).
type BlockRef interface {
	// Hash is this block's identifier.
	Hash() BlockHash
	// ParentHash is the previous block's identifier. IsGenesis reports
	// true instead of returning a meaningful parent for the genesis
	// block.
	ParentHash() BlockHash
	// IsGenesis reports whether this BlockRef is the chain's genesis
	// block, which carries no producer constraint.
	IsGenesis() bool
	// Timestamp is the block's declared time, seconds since the epoch.
	Timestamp() uint32
	// SigningDigest is the pre-image hash the producer signed: the
	// block hash computed over every field except the signature.
	SigningDigest() []byte
	// Signature is the 65-byte compact recoverable signature over
	// SigningDigest. Empty for a block that has not been signed yet.
	Signature() []byte
	// Parent returns the BlockRef for ParentHash, or nil if the host no
	// longer has it indexed (a stale or pruned ancestor).
	Parent() BlockRef
}
