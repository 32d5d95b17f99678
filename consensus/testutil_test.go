package consensus

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"poaengine/registry"
	"poaengine/signer"
	"poaengine/types"
)

// testAuthorities holds four fixed private keys so scenario tables can
// refer to authorities as A, B, C, D, matching the design document's
// worked examples.
type testAuthorities struct {
	privs []*btcec.PrivateKey
	ids   []types.KeyId
}

func newTestAuthorities() *testAuthorities {
	seeds := []byte{0x01, 0x02, 0x03, 0x04}
	ta := &testAuthorities{}
	for _, seed := range seeds {
		raw := sha256.Sum256([]byte{seed})
		priv, _ := btcec.PrivKeyFromBytes(raw[:])
		ta.privs = append(ta.privs, priv)
		ta.ids = append(ta.ids, signer.KeyIdFromPubKey(priv.PubKey()))
	}
	return ta
}

func (ta *testAuthorities) registry() *registry.Registry {
	reg, err := registry.New(ta.ids)
	if err != nil {
		panic(err)
	}
	return reg
}

// fakeBlock is a minimal types.BlockRef for tests: a linked list of
// in-memory nodes signed by one of the testAuthorities' keys.
type fakeBlock struct {
	hash      types.BlockHash
	parent    *fakeBlock
	genesis   bool
	timestamp uint32
	sig       []byte
}

func fakeHash(seed uint32) types.BlockHash {
	var h types.BlockHash
	binary.BigEndian.PutUint32(h[:4], seed)
	return h
}

func newGenesis() *fakeBlock {
	return &fakeBlock{hash: fakeHash(0), genesis: true, timestamp: 1000}
}

// extend builds a child of b, signed by priv, at the given timestamp.
func (b *fakeBlock) extend(seed uint32, timestamp uint32, priv *btcec.PrivateKey) *fakeBlock {
	child := &fakeBlock{hash: fakeHash(seed), parent: b, timestamp: timestamp}
	sig, err := signer.Sign(child.SigningDigest(), priv)
	if err != nil {
		panic(err)
	}
	child.sig = sig
	return child
}

func (b *fakeBlock) Hash() types.BlockHash       { return b.hash }
func (b *fakeBlock) IsGenesis() bool             { return b.genesis }
func (b *fakeBlock) Timestamp() uint32           { return b.timestamp }
func (b *fakeBlock) Signature() []byte           { return b.sig }
func (b *fakeBlock) SigningDigest() []byte {
	sum := chainhash.HashH(b.hash[:])
	return sum[:]
}

func (b *fakeBlock) ParentHash() types.BlockHash {
	if b.parent == nil {
		return types.BlockHash{}
	}
	return b.parent.hash
}

func (b *fakeBlock) Parent() types.BlockRef {
	if b.parent == nil {
		return nil
	}
	return b.parent
}

// fakeIndex is a trivial ChainIndex over a fixed set of blocks, for the
// Validator tests.
type fakeIndex struct {
	byHash map[types.BlockHash]types.BlockRef
}

func newFakeIndex(blocks ...*fakeBlock) *fakeIndex {
	idx := &fakeIndex{byHash: make(map[types.BlockHash]types.BlockRef)}
	for _, b := range blocks {
		idx.byHash[b.Hash()] = b
	}
	return idx
}

func (f *fakeIndex) Get(h types.BlockHash) (types.BlockRef, bool) {
	b, ok := f.byHash[h]
	return b, ok
}
