package consensus

import (
	"errors"
	"fmt"

	"poaengine/types"
)

// ChainIndex is the host's block-index lookup: given a hash, return the
// BlockRef it names, if known. The Validator treats an unknown parent as
// a rejection rather than an error, since an orphan is a normal and
// expected condition during sync, not a malformed block.
type ChainIndex interface {
	Get(h types.BlockHash) (types.BlockRef, bool)
}

// Validator checks a candidate block's authorship and timing against
// the Scheduler's rule, mirroring the host's original checkBlock: a
// block is valid under this engine's consensus rule if and only if its
// signer was eligible to produce it and its timestamp is not earlier
// than that authority's assigned slot.
type Validator struct {
	scheduler *Scheduler
	index     ChainIndex
}

// NewValidator wires a Validator to the Scheduler it defers to and the
// ChainIndex it resolves parents through.
func NewValidator(scheduler *Scheduler, index ChainIndex) *Validator {
	return &Validator{scheduler: scheduler, index: index}
}

// CheckBlock validates block against the consensus rule. It returns
// (true, nil) for a genesis block unconditionally, (false, nil) for a
// block that fails validation for any recognized reason — an unknown
// parent, an unrecoverable signature, an ineligible producer, or an
// early timestamp — and a non-nil error only for conditions that are
// not a verdict on the block itself (a nil block).
//
// Steps, in order, matching the host's original checkBlock:
//  1. genesis always passes.
//  2. the parent must be known; an orphan is rejected, not erred.
//  3. the block's producer is recovered from its signature; a
//     malformed or unrecoverable signature is a rejection, not an
//     error, matching getBlockMiner's plain false return.
//  4. the producer must be eligible to follow the parent (Scheduler).
//  5. the block's timestamp must be >= that authority's earliest
//     publish time.
func (v *Validator) CheckBlock(block types.BlockRef) (bool, error) {
	if block == nil {
		return false, fmt.Errorf("consensus: nil block")
	}
	if block.IsGenesis() {
		return true, nil
	}

	parent, ok := v.index.Get(block.ParentHash())
	if !ok {
		return false, nil
	}

	producer, err := v.scheduler.producerOf(block)
	if err != nil {
		return false, nil
	}

	_, earliest, err := v.scheduler.Eligibility(parent, producer)
	if err != nil {
		if _, isRejection := asSchedulerRejection(err); isRejection {
			return false, nil
		}
		return false, err
	}

	if block.Timestamp() < earliest {
		return false, nil
	}
	return true, nil
}

// asSchedulerRejection reports whether err is (or wraps) a
// *types.SchedulerRejection, distinguishing an ordinary "not eligible"
// verdict from a genuine failure to compute one.
func asSchedulerRejection(err error) (*types.SchedulerRejection, bool) {
	var rej *types.SchedulerRejection
	ok := errors.As(err, &rej)
	return rej, ok
}
