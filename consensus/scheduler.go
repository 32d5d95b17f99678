// Package consensus implements the PoA scheduling rule and the
// validator built on top of it: given a chain tip, who may produce the
// next block, in what order, and at what earliest timestamp; and,
// symmetrically, whether an already-produced block's authorship and
// timing are valid.
//
// Nothing here suspends: both Scheduler and Validator are purely
// computational and safe to call concurrently from the producer loop and
// from whichever goroutine the host dispatches block validation on.
package consensus

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"poaengine/cache"
	"poaengine/registry"
	"poaengine/signer"
	"poaengine/types"
)

// Scheduler computes, for any chain tip, the ordered list of authorities
// eligible to produce the following block and the earliest timestamp
// each may publish at. It consults the Registry for roster membership
// and ordering, the Signer for producer recovery, and the MinerCache to
// avoid repeating either.
type Scheduler struct {
	registry *registry.Registry
	cache    *cache.MinerCache
	cfg      Config
}

// NewScheduler wires a Scheduler to its Registry, MinerCache and cadence
// Config. All three are expected to already be constructed and are
// borrowed, not owned.
func NewScheduler(reg *registry.Registry, minerCache *cache.MinerCache, cfg Config) *Scheduler {
	return &Scheduler{registry: reg, cache: minerCache, cfg: cfg}
}

// Config returns the scheduler's cadence parameters.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// window returns w = floor(n/2), the recent-exclusion window size for
// the configured roster.
func (s *Scheduler) window() int {
	return s.registry.Len() / 2
}

// producerOf resolves the KeyId that produced ref, through the cache
// first and via signature recovery on a miss. The result is memoized
// before it is returned.
func (s *Scheduler) producerOf(ref types.BlockRef) (types.KeyId, error) {
	h := ref.Hash()
	if id, ok := s.cache.GetBlockMiner(h); ok {
		return id, nil
	}
	sig := ref.Signature()
	if len(sig) == 0 {
		return types.KeyId{}, fmt.Errorf("%w: block %s carries no signature", types.ErrSignatureRecovery, h)
	}
	id, err := signer.Recover(ref.SigningDigest(), sig)
	if err != nil {
		return types.KeyId{}, err
	}
	s.cache.PutBlockMiner(h, id)
	return id, nil
}

// recentWindow walks backwards from tip up to w blocks (stopping at
// genesis) and returns the set of their producers' roster positions as a
// bitmap, mirroring the way a miner-index snapshot is tracked
// elsewhere in this codebase's storage layer: authority identity is
// reduced to a small integer the moment it is known, and set membership
// becomes a bitmap test instead of a map lookup.
//
// The walk is a read-only snapshot over BlockRef.Parent(): if an
// ancestor cannot be resolved (a stale handle after a reorg, or a
// signature that fails to recover), the walk aborts and the caller must
// not cache a partial result. An unresolvable ancestor is reported as a
// *types.SchedulerRejection, the same as the other two "not eligible"
// conditions (nil tip, producer outside the roster), so callers as far
// up as Validator.CheckBlock see a uniform rejection instead of having
// to separately recognize a bare signature-recovery error.
func (s *Scheduler) recentWindow(tip types.BlockRef, w int) (*roaring.Bitmap, error) {
	excluded := roaring.New()
	cur := tip
	for i := 0; i < w; i++ {
		if cur == nil {
			return nil, &types.SchedulerRejection{Tip: tip.Hash(), Reason: fmt.Sprintf("ancestor %d blocks back is no longer indexed", i)}
		}
		if cur.IsGenesis() {
			break
		}
		id, err := s.producerOf(cur)
		if err != nil {
			return nil, &types.SchedulerRejection{Tip: tip.Hash(), Reason: fmt.Sprintf("ancestor %s: %s", cur.Hash(), err)}
		}
		if idx, ok := s.registry.IndexOf(id); ok {
			excluded.Add(uint32(idx))
		}
		cur = cur.Parent()
	}
	return excluded, nil
}

// NextMiners computes next_miners(tip): the ordered list of authorities
// eligible to produce the block following tip. Genesis is special-cased
// to the full roster in roster order. The result is memoized by tip's
// hash; a cache hit skips both the window walk and the ordering pass
// entirely.
func (s *Scheduler) NextMiners(tip types.BlockRef) ([]types.KeyId, error) {
	if tip == nil {
		return nil, &types.SchedulerRejection{Reason: "tip is nil"}
	}
	if tip.IsGenesis() {
		return s.registry.All(), nil
	}

	h := tip.Hash()
	if cached, ok := s.cache.GetNextMiners(h); ok {
		return cached, nil
	}

	excluded, err := s.recentWindow(tip, s.window())
	if err != nil {
		return nil, err
	}

	producer, err := s.producerOf(tip)
	if err != nil {
		return nil, &types.SchedulerRejection{Tip: h, Reason: fmt.Sprintf("tip producer: %s", err)}
	}
	pIdx, ok := s.registry.IndexOf(producer)
	if !ok {
		return nil, &types.SchedulerRejection{Tip: h, Miner: producer, Reason: "tip's producer is not in the configured roster"}
	}

	n := s.registry.Len()
	ordered := make([]types.KeyId, 0, n)
	for step := 1; step <= n; step++ {
		idx := (pIdx + step) % n
		if idx == pIdx {
			break
		}
		if excluded.Contains(uint32(idx)) {
			continue
		}
		ordered = append(ordered, s.registry.At(idx))
	}

	s.cache.PutNextMiners(h, ordered)
	return ordered, nil
}

// EarliestPublishTime returns earliest_publish_time(tip, position):
// tip.timestamp + interval + position*timeout. position is the
// authority's 0-based index within next_miners(tip).
func (s *Scheduler) EarliestPublishTime(tip types.BlockRef, position int) uint32 {
	return tip.Timestamp() + s.cfg.Interval + uint32(position)*s.cfg.Timeout
}

// Eligibility reports whether miner may produce the block following
// tip, its position within next_miners(tip), and the earliest timestamp
// it may publish at (unclamped — see EligibleNow for the
// catch-up-after-outage clamp applied when deciding whether the local
// miner may act right now).
func (s *Scheduler) Eligibility(tip types.BlockRef, miner types.KeyId) (position int, earliest uint32, err error) {
	next, err := s.NextMiners(tip)
	if err != nil {
		return 0, 0, err
	}
	for i, id := range next {
		if id == miner {
			return i, s.EarliestPublishTime(tip, i), nil
		}
	}
	return 0, 0, &types.SchedulerRejection{Tip: tip.Hash(), Miner: miner, Reason: "not present in next_miners for this tip"}
}

// EligibleNow is the query the Producer Loop makes: it wraps Eligibility
// with the long-outage clamp described in the design — if the computed
// earliest publish time already lies in the past relative to now (the
// host's adjusted wall clock), the earliest publishable time is clamped
// forward to now, so a miner catching up after a long gap does not wait
// out a schedule that has already elapsed.
func (s *Scheduler) EligibleNow(tip types.BlockRef, miner types.KeyId, now uint32) (earliest uint32, err error) {
	_, earliest, err = s.Eligibility(tip, miner)
	if err != nil {
		return 0, err
	}
	if now > earliest {
		earliest = now
	}
	return earliest, nil
}
