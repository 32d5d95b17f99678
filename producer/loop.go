// Package producer runs the block-production state machine: for a
// process configured with a local authority identity, repeatedly wait
// for eligibility at the current tip, assemble and sign a block once
// eligible, and submit it — abandoning any in-flight step the moment
// the tip moves out from under it.
package producer

import (
	"context"
	"errors"
	"time"

	"poaengine/consensus"
	"poaengine/interfaces"
	"poaengine/logs"
	"poaengine/signer"
	"poaengine/types"
)

// pollInterval is how often the loop re-checks the chain tip when the
// host has no TipWatcher to block on, matching the host's historical
// minerSleepInterval.
const pollInterval = 100 * time.Millisecond

// keyWaitInterval is how long the loop waits between checks for a local
// identity to become available, matching the host's historical
// key_sleep: an operator may start the process before unlocking the
// signing key in its wallet.
const keyWaitInterval = 3 * time.Second

// Loop drives block production for one local identity against one
// Scheduler. It has no state of its own beyond what's needed to run:
// callers construct a fresh Loop per identity, and there is exactly one
// local identity per process.
type Loop struct {
	scheduler  *consensus.Scheduler
	chain      interfaces.ChainReader
	clock      interfaces.Clock
	assembler  interfaces.BlockAssembler
	submitter  interfaces.BlockSubmitter
	tipWatcher interfaces.TipWatcher // optional; nil falls back to polling
	identity   func() (*signer.LocalIdentity, error)
}

// New constructs a Loop. identity is called at the top of every
// iteration rather than once, so a process started before its wallet
// key is unlocked can still come up: the loop just waits
// (types.ErrIdentityPending) until identity starts returning non-nil.
//
// Validation of incoming blocks is a separate concern (consensus.
// Validator, driven by the host's own block-acceptance path); the
// Producer Loop only ever proposes, so it does not need one.
func New(
	scheduler *consensus.Scheduler,
	chain interfaces.ChainReader,
	clock interfaces.Clock,
	assembler interfaces.BlockAssembler,
	submitter interfaces.BlockSubmitter,
	tipWatcher interfaces.TipWatcher,
	identity func() (*signer.LocalIdentity, error),
) *Loop {
	return &Loop{
		scheduler:  scheduler,
		chain:      chain,
		clock:      clock,
		assembler:  assembler,
		submitter:  submitter,
		tipWatcher: tipWatcher,
		identity:   identity,
	}
}

// Run drives the loop until ctx is cancelled. It never returns a
// non-nil error for ordinary operating conditions (a stale tip, a
// transient assembly failure, a not-yet-unlocked key); those are logged
// and retried. It returns only when ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		id, err := l.identity()
		if err != nil || id == nil {
			logs.Debug("producer: local identity not ready: %v", err)
			if !sleep(ctx, keyWaitInterval) {
				return nil
			}
			continue
		}

		if !l.tick(ctx, id) {
			return nil
		}
	}
}

// tick runs one WATCH->EVAL->BUILD->WAIT->SUBMIT pass for the current
// tip (BOOT, waiting for a local identity, is Run's job). It returns
// false only when ctx was cancelled.
func (l *Loop) tick(ctx context.Context, id *signer.LocalIdentity) bool {
	tip := l.chain.Tip()
	if tip == nil {
		return sleep(ctx, pollInterval)
	}
	startTip := tip.Hash()

	earliest, err := l.scheduler.EligibleNow(tip, id.Miner, l.clock.AdjustedTime())
	if err != nil {
		if !errors.Is(err, types.ErrNotEligible) {
			logs.Warn("producer: eligibility check failed: %v", err)
		}
		return l.waitForNewTip(ctx, startTip)
	}

	if l.chain.Tip().Hash() != startTip {
		return true // stale: re-evaluate against the new tip
	}

	template, err := l.assembler.Assemble(ctx, tip, earliest, id.RewardScript)
	if err != nil {
		logs.Warn("producer: %s: %v", types.ErrAssembly, err)
		return l.waitForNewTip(ctx, startTip)
	}

	if l.chain.Tip().Hash() != startTip {
		return true // tip moved during assembly; discard the template
	}

	// Either the deadline passes or the tip moves.
	if !l.waitUntil(ctx, startTip, earliest) {
		return false
	}
	if l.chain.Tip().Hash() != startTip {
		return true // tip moved while waiting; discard the template
	}

	sig, err := id.Sign(template.SigningDigest())
	if err != nil {
		logs.Error("producer: signing failed: %v", err)
		return sleep(ctx, pollInterval)
	}
	template.SetSignature(sig)

	if l.chain.Tip().Hash() != startTip {
		return true // tip moved while signing; discard the completed block
	}

	if err := l.submitter.Submit(ctx, template); err != nil {
		logs.Error("producer: submission failed: %v", err)
		return l.waitForNewTip(ctx, startTip)
	}
	logs.Info("producer: produced block as %s at height following %s", id.Miner, startTip)
	return l.waitForNewTip(ctx, startTip)
}

// waitForNewTip blocks until the tip changes away from since, via the
// host's TipWatcher if one was supplied, or by polling otherwise.
func (l *Loop) waitForNewTip(ctx context.Context, since types.BlockHash) bool {
	if l.tipWatcher != nil {
		if _, err := l.tipWatcher.WaitForNewTip(ctx, since); err != nil {
			if ctx.Err() != nil {
				return false
			}
			logs.Warn("producer: tip watcher failed: %v", err)
			return sleep(ctx, pollInterval)
		}
		return true
	}
	for {
		if !sleep(ctx, pollInterval) {
			return false
		}
		if l.chain.Tip() == nil {
			continue
		}
		if l.chain.Tip().Hash() != since {
			return true
		}
	}
}

// waitUntil blocks until the adjusted clock reaches deadline or the tip
// moves away from since, whichever happens first, polling at
// pollInterval either way since the adjusted clock is host-controlled
// and cannot itself be watched.
func (l *Loop) waitUntil(ctx context.Context, since types.BlockHash, deadline uint32) bool {
	for {
		if l.clock.AdjustedTime() >= deadline {
			return true
		}
		if l.chain.Tip() != nil && l.chain.Tip().Hash() != since {
			return true
		}
		if !sleep(ctx, pollInterval) {
			return false
		}
	}
}

// sleep waits for d or ctx cancellation, reporting which happened.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
