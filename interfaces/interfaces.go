// Package interfaces collects the host collaborator contracts the PoA
// engine is built against but never implements itself: block storage,
// assembly, submission and wall-clock time all belong to the chain node
// embedding this engine, not to the engine.
package interfaces

import (
	"context"

	"poaengine/types"
)

// ChainReader exposes the host's view of the active chain: the current
// tip and lookup of any block the host still has indexed. The engine
// treats a lookup miss as "unknown", never as an error — an orphan or a
// pruned ancestor are both ordinary conditions.
type ChainReader interface {
	// Tip returns the current best chain tip.
	Tip() types.BlockRef
	// Get resolves a hash to the BlockRef it names, if the host still
	// has it indexed.
	Get(h types.BlockHash) (types.BlockRef, bool)
}

// Clock is the host's adjusted wall clock, matching a Bitcoin-derived
// node's network-time-adjusted view of "now" rather than raw
// time.Now(): the producer loop and the long-outage catch-up clamp in
// consensus.Scheduler.EligibleNow both reason in these seconds.
type Clock interface {
	// AdjustedTime returns the current adjusted time, seconds since the
	// epoch.
	AdjustedTime() uint32
}

// BlockTemplate is an unsigned candidate block handed back by a
// BlockAssembler: everything about it except its signature is already
// fixed, so signing it is exactly attaching Signature() to make it a
// full types.BlockRef.
type BlockTemplate interface {
	types.BlockRef
	// SetSignature attaches the producer's compact signature, completing
	// the block. It is called exactly once, after Scheduler eligibility
	// and timing have both been confirmed.
	SetSignature(sig []byte)
}

// BlockAssembler builds an unsigned candidate block extending parent,
// to be produced at timestamp ts and paying its reward to rewardScript.
// Assembly failure (e.g. no eligible transactions, an internal error in
// the host's mempool) is reported as an error and simply retried on the
// next tip change; it is never a consensus fault.
type BlockAssembler interface {
	Assemble(ctx context.Context, parent types.BlockRef, ts uint32, rewardScript []byte) (BlockTemplate, error)
}

// BlockSubmitter hands a completed, signed block back to the host chain
// for acceptance (equivalent to the host's own ProcessNewBlock): the
// host is responsible for re-validating it, extending its active chain,
// and relaying it to peers. The engine does not consider a block
// produced until this call succeeds.
type BlockSubmitter interface {
	Submit(ctx context.Context, block types.BlockRef) error
}

// TipWatcher lets the Producer Loop block until the chain tip changes
// instead of polling, when the host is able to offer one; a host
// without an event source can implement this by polling ChainReader.Tip
// on the caller's behalf.
type TipWatcher interface {
	// WaitForNewTip blocks until the tip differs from since, or ctx is
	// done, whichever comes first.
	WaitForNewTip(ctx context.Context, since types.BlockHash) (types.BlockRef, error)
}
