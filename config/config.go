// Package config resolves the engine's startup arguments — the
// authority roster, cadence, and (for a producing node) local signing
// key — into the values the rest of the engine is built from. It knows
// nothing about how those arguments arrived; Load takes a plain
// map[string]string so it works whether the host parsed them from
// flags, a config file, or environment variables.
package config

import (
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"

	"poaengine/consensus"
	"poaengine/registry"
	"poaengine/types"
)

// Argument keys, matching the host's historical poa-* configuration
// names.
const (
	KeyMinerList = "poa-miner-list"
	KeyMiner     = "poa-miner"
	KeyMinerKey  = "poa-miner-key"
	KeyInterval  = "poa-interval"
	KeyTimeout   = "poa-timeout"
)

// Config is the fully-resolved set of engine startup parameters.
type Config struct {
	// MinerList is the comma-separated roster, as given to
	// registry.ParseRoster.
	MinerList string
	// Miner is this process's own authority address, if it is
	// configured to produce blocks. Empty means validator-only.
	Miner string
	// MinerKey is the key material (WIF or hex) backing Miner. Required
	// iff Miner is set.
	MinerKey string
	// Cadence is the interval/timeout pair governing publish timing.
	Cadence consensus.Config
	// Net selects the address encoding the roster and Miner are decoded
	// under.
	Net *chaincfg.Params
}

// DefaultConfig returns a Config with the default cadence, no roster,
// and no local identity — the caller must still set MinerList (and,
// for a producing node, Miner/MinerKey) before calling ParseRegistry.
func DefaultConfig() *Config {
	return &Config{
		Cadence: consensus.DefaultConfig(),
		Net:     &chaincfg.MainNetParams,
	}
}

// Load resolves Config from a generic argument map, applying the same
// defaults DefaultConfig does for anything the map leaves unset.
// Load performs only syntactic validation (numeric fields parse, a
// miner key is present whenever a miner address is); the semantic
// validation that requires the parsed roster (duplicate entries, Miner
// being a member of it) happens in ParseRegistry and app.New, which
// call it.
func Load(args map[string]string) (*Config, error) {
	cfg := DefaultConfig()

	if v, ok := args[KeyMinerList]; ok {
		cfg.MinerList = strings.TrimSpace(v)
	}
	if cfg.MinerList == "" {
		return nil, &types.ConfigError{Field: KeyMinerList, Reason: "not set"}
	}

	if v, ok := args[KeyMiner]; ok {
		cfg.Miner = strings.TrimSpace(v)
	}
	if v, ok := args[KeyMinerKey]; ok {
		cfg.MinerKey = strings.TrimSpace(v)
	}
	if cfg.Miner != "" && cfg.MinerKey == "" {
		return nil, &types.ConfigError{Field: KeyMinerKey, Reason: "poa-miner is set but no signing key was given"}
	}

	if v, ok := args[KeyInterval]; ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, &types.ConfigError{Field: KeyInterval, Reason: err.Error()}
		}
		cfg.Cadence.Interval = uint32(n)
	}
	if v, ok := args[KeyTimeout]; ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, &types.ConfigError{Field: KeyTimeout, Reason: err.Error()}
		}
		cfg.Cadence.Timeout = uint32(n)
	}

	return cfg, nil
}

// ParseRegistry decodes MinerList into a Registry under Net, the first
// step of app.New that actually requires validated addresses.
func (c *Config) ParseRegistry() (*registry.Registry, error) {
	return registry.ParseRoster(c.MinerList, c.Net)
}
