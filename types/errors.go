package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conditions callers are expected to branch on
// with errors.Is. Call sites add context either via fmt.Errorf("%w", ...)
// or, for configuration and scheduling failures, via the ConfigError and
// SchedulerRejection types below, whose Unwrap returns the sentinel.
var (
	// ErrConfig marks a fatal static-configuration problem: an empty,
	// duplicated, or malformed authority roster. The host should refuse
	// to start block production (validator-only mode is still fine).
	ErrConfig = errors.New("poaengine: configuration error")

	// ErrIdentityPending means the local signing key has not been
	// unlocked in the wallet yet. The producer loop retries; it is
	// never surfaced to a validator.
	ErrIdentityPending = errors.New("poaengine: local identity not yet available")

	// ErrNotEligible means the queried authority is not present in the
	// tip's next-miner list, or the tip/producer could not be resolved
	// at all.
	ErrNotEligible = errors.New("poaengine: authority not eligible to produce next block")

	// ErrSignatureRecovery means a block's signature is malformed or
	// does not recover to a valid public key.
	ErrSignatureRecovery = errors.New("poaengine: signature recovery failed")

	// ErrStaleTip is internal to the producer loop: the chain tip moved
	// during an in-flight operation and the work in progress must be
	// discarded.
	ErrStaleTip = errors.New("poaengine: chain tip changed, discarding in-flight work")

	// ErrAssembly means the external block assembler failed to produce
	// a template. Logged and retried on the next tip change.
	ErrAssembly = errors.New("poaengine: block assembly failed")
)

// ConfigError decorates ErrConfig with the offending roster entry or
// setting so operators can see what to fix without parsing a bare string.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("poaengine: config error: field %q: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// SchedulerRejection explains why an authority is not eligible to
// produce the block after a given tip, or why the tip's next-miner list
// could not be computed at all.
type SchedulerRejection struct {
	Tip    BlockHash
	Miner  KeyId
	Reason string
}

func (e *SchedulerRejection) Error() string {
	return fmt.Sprintf("poaengine: %s not eligible after tip %s: %s", e.Miner, e.Tip, e.Reason)
}

func (e *SchedulerRejection) Unwrap() error {
	return ErrNotEligible
}
