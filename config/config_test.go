package config_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poaengine/config"
	"poaengine/types"
)

func testAddress(t *testing.T, b byte) string {
	t.Helper()
	var id types.KeyId
	id[0] = b
	addr, err := btcutil.NewAddressPubKeyHash(id[:], &chaincfg.MainNetParams)
	require.NoError(t, err)
	return addr.EncodeAddress()
}

func TestLoad_AppliesDefaultCadence(t *testing.T) {
	addr := testAddress(t, 0x01)
	cfg, err := config.Load(map[string]string{
		config.KeyMinerList: addr,
	})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Cadence, cfg.Cadence)
}

func TestLoad_RejectsMissingMinerList(t *testing.T) {
	_, err := config.Load(map[string]string{})
	assert.Error(t, err)
}

func TestLoad_RejectsMinerWithoutKey(t *testing.T) {
	addr := testAddress(t, 0x01)
	_, err := config.Load(map[string]string{
		config.KeyMinerList: addr,
		config.KeyMiner:     addr,
	})
	assert.Error(t, err)
}

func TestLoad_ParsesCadenceOverrides(t *testing.T) {
	addr := testAddress(t, 0x01)
	cfg, err := config.Load(map[string]string{
		config.KeyMinerList: addr,
		config.KeyInterval:  "20",
		config.KeyTimeout:   "5",
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(20), cfg.Cadence.Interval)
	assert.Equal(t, uint32(5), cfg.Cadence.Timeout)
}

func TestLoad_RejectsMalformedCadence(t *testing.T) {
	addr := testAddress(t, 0x01)
	_, err := config.Load(map[string]string{
		config.KeyMinerList: addr,
		config.KeyInterval:  "not-a-number",
	})
	assert.Error(t, err)
}

func TestConfig_ParseRegistry(t *testing.T) {
	addr := testAddress(t, 0x01)
	cfg, err := config.Load(map[string]string{
		config.KeyMinerList: addr,
	})
	require.NoError(t, err)

	reg, err := cfg.ParseRegistry()
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
}
