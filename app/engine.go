// Package app assembles the engine's packages into one running value.
// Where the host's original design kept consensus state behind package
// globals, this constructs a single Engine at startup and passes it
// explicitly to every caller: two Engines in the same process (as in a
// simulation harness, or a test exercising several rosters side by
// side) never share state by accident.
package app

import (
	"context"
	"fmt"
	"sync"

	"poaengine/cache"
	"poaengine/config"
	"poaengine/consensus"
	"poaengine/interfaces"
	"poaengine/logs"
	"poaengine/producer"
	"poaengine/registry"
	"poaengine/signer"
	"poaengine/types"
	"poaengine/utils"
)

// Engine is the complete wired-up consensus engine: the roster, the
// scheduling rule, the validator built on it, and — for a node
// configured to produce blocks — the local identity and producer loop.
// A validator-only node has every field except Identity and has no
// producer loop to start.
type Engine struct {
	Config    *config.Config
	Registry  *registry.Registry
	Cache     *cache.MinerCache
	Scheduler *consensus.Scheduler
	Validator *consensus.Validator
	Identity  *signer.LocalIdentity // nil on a validator-only node

	loop   *producer.Loop
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Host bundles the collaborators the embedding chain node supplies;
// TipWatcher may be nil, in which case the producer loop polls.
type Host struct {
	Chain      interfaces.ChainReader
	Clock      interfaces.Clock
	Assembler  interfaces.BlockAssembler
	Submitter  interfaces.BlockSubmitter
	TipWatcher interfaces.TipWatcher
}

// New builds an Engine from a resolved Config and the host's
// collaborators. It returns a *types.ConfigError if the roster is
// malformed, or if a configured local identity's key does not match its
// claimed address.
func New(cfg *config.Config, host Host) (*Engine, error) {
	reg, err := cfg.ParseRegistry()
	if err != nil {
		return nil, err
	}

	minerCache, err := cache.New(cache.DefaultBlockMinerCapacity, cache.DefaultNextMinersCapacity)
	if err != nil {
		return nil, fmt.Errorf("app: building cache: %w", err)
	}

	scheduler := consensus.NewScheduler(reg, minerCache, cfg.Cadence)
	validator := consensus.NewValidator(scheduler, &chainIndexAdapter{host.Chain})

	e := &Engine{
		Config:    cfg,
		Registry:  reg,
		Cache:     minerCache,
		Scheduler: scheduler,
		Validator: validator,
	}

	if cfg.Miner != "" {
		id, err := buildIdentity(cfg, reg)
		if err != nil {
			return nil, err
		}
		e.Identity = id
		logs.SetPrefix(id.Miner.String()[:8])
		e.loop = producer.New(
			scheduler,
			host.Chain, host.Clock, host.Assembler, host.Submitter, host.TipWatcher,
			func() (*signer.LocalIdentity, error) {
				if e.Identity == nil {
					return nil, types.ErrIdentityPending
				}
				return e.Identity, nil
			},
		)
	}

	return e, nil
}

// buildIdentity resolves the operator's configured miner address and
// key into a LocalIdentity, verifying the address is actually a member
// of the parsed roster before the key is even parsed: a miner address
// outside the roster is a configuration mistake the engine should
// refuse to start with, not a condition to discover at the first
// eligibility check.
func buildIdentity(cfg *config.Config, reg *registry.Registry) (*signer.LocalIdentity, error) {
	expected, err := registry.DecodeKeyId(cfg.Miner, cfg.Net)
	if err != nil {
		return nil, &types.ConfigError{Field: config.KeyMiner, Reason: err.Error()}
	}
	if !reg.Contains(expected) {
		return nil, &types.ConfigError{Field: config.KeyMiner, Reason: fmt.Sprintf("%s is not a member of poa-miner-list", cfg.Miner)}
	}
	priv, err := utils.ParseSigningKey(cfg.MinerKey)
	if err != nil {
		return nil, &types.ConfigError{Field: config.KeyMinerKey, Reason: err.Error()}
	}
	id, err := signer.NewLocalIdentity(expected, priv)
	if err != nil {
		return nil, &types.ConfigError{Field: config.KeyMinerKey, Reason: err.Error()}
	}
	return id, nil
}

// Start launches the producer loop, if this Engine has a local
// identity, and returns immediately; a validator-only Engine has
// nothing to start and Start is a no-op. Stop must be called exactly
// once to release the background goroutine.
func (e *Engine) Start(ctx context.Context) error {
	if e.loop == nil {
		return nil
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.loop.Run(e.ctx); err != nil {
			logs.Error("app: producer loop exited: %v", err)
		}
	}()
	logs.Info("app: producer loop started for %s", e.Identity.Miner)
	return nil
}

// Stop cancels the producer loop and waits for it to exit. Safe to call
// on a validator-only Engine (it has nothing running).
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

// IsProducer reports whether this Engine is configured with a local
// identity and will attempt to produce blocks.
func (e *Engine) IsProducer() bool {
	return e.Identity != nil
}

// chainIndexAdapter narrows interfaces.ChainReader to the smaller
// consensus.ChainIndex the Validator needs, so the consensus package
// itself stays free of any dependency on the broader host interface.
type chainIndexAdapter struct {
	chain interfaces.ChainReader
}

func (a *chainIndexAdapter) Get(h types.BlockHash) (types.BlockRef, bool) {
	return a.chain.Get(h)
}
