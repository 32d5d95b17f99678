// Package registry holds the configured authority roster: the ordered
// list of KeyIds permitted to produce blocks on a PoA chain, and the set
// derived from it. It is constructed once at startup and never mutated
// afterwards, so it needs no synchronization to share across goroutines.
package registry

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"poaengine/types"
)

// Registry is the immutable, ordered authority roster L and its derived
// membership set S. Both are fixed for the lifetime of the process: the
// engine has no notion of adding or removing an authority at runtime
// (see the Non-goals in the design this package implements).
type Registry struct {
	list    []types.KeyId
	indexOf map[types.KeyId]int
	params  *chaincfg.Params
}

// New builds a Registry directly from an already-decoded, duplicate-free
// list of KeyIds. Most callers should use ParseRoster instead; New is
// useful for tests and for hosts that resolve addresses to KeyIds
// themselves.
func New(list []types.KeyId) (*Registry, error) {
	if len(list) == 0 {
		return nil, &types.ConfigError{Field: "miner-list", Reason: "roster is empty"}
	}
	indexOf := make(map[types.KeyId]int, len(list))
	for i, id := range list {
		if _, dup := indexOf[id]; dup {
			return nil, &types.ConfigError{Field: "miner-list", Reason: fmt.Sprintf("duplicate authority %s", id)}
		}
		indexOf[id] = i
	}
	cp := make([]types.KeyId, len(list))
	copy(cp, list)
	return &Registry{list: cp, indexOf: indexOf, params: &chaincfg.MainNetParams}, nil
}

// ParseRoster parses the poa-miner-list configuration value: a
// comma-separated list of base58check pubkey-hash addresses. It rejects
// an empty list, any address that fails to decode, and any duplicate
// authority, mirroring the host's original refuse-to-start-on-bad-roster
// behavior.
func ParseRoster(commaSeparated string, params *chaincfg.Params) (*Registry, error) {
	if params == nil {
		params = &chaincfg.MainNetParams
	}
	fields := strings.Split(commaSeparated, ",")
	list := make([]types.KeyId, 0, len(fields))
	for _, raw := range fields {
		addrStr := strings.TrimSpace(raw)
		if addrStr == "" {
			return nil, &types.ConfigError{Field: "miner-list", Reason: "contains an empty address entry"}
		}
		addr, err := btcutil.DecodeAddress(addrStr, params)
		if err != nil {
			return nil, &types.ConfigError{Field: "miner-list", Reason: fmt.Sprintf("address %q: %s", addrStr, err)}
		}
		pkHashAddr, ok := addr.(*btcutil.AddressPubKeyHash)
		if !ok {
			return nil, &types.ConfigError{Field: "miner-list", Reason: fmt.Sprintf("address %q is not a pubkey-hash address", addrStr)}
		}
		var id types.KeyId
		copy(id[:], pkHashAddr.Hash160()[:])
		list = append(list, id)
	}
	reg, err := New(list)
	if err != nil {
		return nil, err
	}
	reg.params = params
	return reg, nil
}

// DecodeKeyId decodes a single base58check pubkey-hash address into a
// KeyId, the same decoding ParseRoster applies to each roster entry.
// Used to resolve the operator's own poa-miner address independently of
// the roster it's expected to belong to.
func DecodeKeyId(addrStr string, params *chaincfg.Params) (types.KeyId, error) {
	if params == nil {
		params = &chaincfg.MainNetParams
	}
	addr, err := btcutil.DecodeAddress(addrStr, params)
	if err != nil {
		return types.KeyId{}, fmt.Errorf("address %q: %w", addrStr, err)
	}
	pkHashAddr, ok := addr.(*btcutil.AddressPubKeyHash)
	if !ok {
		return types.KeyId{}, fmt.Errorf("address %q is not a pubkey-hash address", addrStr)
	}
	var id types.KeyId
	copy(id[:], pkHashAddr.Hash160()[:])
	return id, nil
}

// Len returns n, the roster size |L|.
func (r *Registry) Len() int {
	return len(r.list)
}

// Contains reports membership in S: id ∈ S.
func (r *Registry) Contains(id types.KeyId) bool {
	_, ok := r.indexOf[id]
	return ok
}

// IndexOf returns id's position in L, or (-1, false) if it is not a
// configured authority.
func (r *Registry) IndexOf(id types.KeyId) (int, bool) {
	i, ok := r.indexOf[id]
	if !ok {
		return -1, false
	}
	return i, true
}

// At returns L[i]. It panics on an out-of-range index, matching slice
// semantics; callers iterate with Len/At or use All.
func (r *Registry) At(i int) types.KeyId {
	return r.list[i]
}

// All returns a defensive copy of L in roster order.
func (r *Registry) All() []types.KeyId {
	cp := make([]types.KeyId, len(r.list))
	copy(cp, r.list)
	return cp
}

// AddressForDisplay renders id back into a base58check address string
// under the registry's network params, for logs and diagnostics only.
func (r *Registry) AddressForDisplay(id types.KeyId) string {
	addr, err := btcutil.NewAddressPubKeyHash(id[:], r.params)
	if err != nil {
		return id.String()
	}
	return addr.EncodeAddress()
}
