// Package bench benchmarks the engine's two performance-sensitive hot
// paths: signature recovery, run once per validated block, and
// next-miner computation, run once per tip change.
package bench

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"

	"poaengine/cache"
	"poaengine/consensus"
	"poaengine/registry"
	"poaengine/signer"
	"poaengine/types"
)

func BenchmarkSignerRecover(b *testing.B) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		b.Fatal(err)
	}
	digest := sha256.Sum256([]byte("benchmark pre-image"))
	sig, err := signer.Sign(digest[:], priv)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := signer.Recover(digest[:], sig); err != nil {
			b.Fatal(err)
		}
	}
}

type benchBlock struct {
	hash      types.BlockHash
	parent    *benchBlock
	genesis   bool
	timestamp uint32
	sig       []byte
}

func (b *benchBlock) Hash() types.BlockHash       { return b.hash }
func (b *benchBlock) IsGenesis() bool             { return b.genesis }
func (b *benchBlock) Timestamp() uint32           { return b.timestamp }
func (b *benchBlock) Signature() []byte           { return b.sig }
func (b *benchBlock) SigningDigest() []byte       { d := sha256.Sum256(b.hash[:]); return d[:] }
func (b *benchBlock) Parent() types.BlockRef {
	if b.parent == nil {
		return nil
	}
	return b.parent
}
func (b *benchBlock) ParentHash() types.BlockHash {
	if b.parent == nil {
		return types.BlockHash{}
	}
	return b.parent.hash
}

// buildChain constructs a roster of n authorities and a chain of length
// depth over it, round-robining producers, for a scheduler with no warm
// cache entries.
func buildChain(b *testing.B, n, depth int) (*consensus.Scheduler, *benchBlock) {
	b.Helper()
	privs := make([]*btcec.PrivateKey, n)
	ids := make([]types.KeyId, n)
	for i := range privs {
		priv, err := btcec.NewPrivateKey()
		if err != nil {
			b.Fatal(err)
		}
		privs[i] = priv
		ids[i] = signer.KeyIdFromPubKey(priv.PubKey())
	}
	reg, err := registry.New(ids)
	if err != nil {
		b.Fatal(err)
	}
	c, err := cache.New(cache.DefaultBlockMinerCapacity, cache.DefaultNextMinersCapacity)
	if err != nil {
		b.Fatal(err)
	}
	scheduler := consensus.NewScheduler(reg, c, consensus.Config{Interval: 10, Timeout: 3})

	cur := &benchBlock{genesis: true, timestamp: 1000}
	for i := 0; i < depth; i++ {
		priv := privs[i%n]
		var hash types.BlockHash
		hash[0] = byte(i + 1)
		hash[1] = byte((i + 1) >> 8)
		child := &benchBlock{hash: hash, parent: cur, timestamp: cur.timestamp + 13}
		sig, err := signer.Sign(child.SigningDigest(), priv)
		if err != nil {
			b.Fatal(err)
		}
		child.sig = sig
		cur = child
	}
	return scheduler, cur
}

func BenchmarkSchedulerNextMinersColdCache(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		scheduler, tip := buildChain(b, 21, 40)
		b.StartTimer()
		if _, err := scheduler.NextMiners(tip); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSchedulerNextMinersWarmCache(b *testing.B) {
	scheduler, tip := buildChain(b, 21, 40)
	if _, err := scheduler.NextMiners(tip); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := scheduler.NextMiners(tip); err != nil {
			b.Fatal(err)
		}
	}
}
