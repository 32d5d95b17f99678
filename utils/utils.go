// Package utils holds small standalone helpers that don't warrant their
// own package: today, parsing the local signing key out of whichever
// string form an operator hands the process.
package utils

import (
	"encoding/hex"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

// ParseSigningKey accepts either a WIF-encoded key or a raw 32-byte hex
// private key, matching the two forms an operator is likely to have on
// hand for a poa-miner key, and returns the parsed key regardless of
// which form was given.
func ParseSigningKey(keyStr string) (*btcec.PrivateKey, error) {
	if wif, err := btcutil.DecodeWIF(keyStr); err == nil {
		return wif.PrivKey, nil
	}

	raw, err := hex.DecodeString(keyStr)
	if err != nil {
		return nil, errors.New("poaengine/utils: key is neither valid WIF nor valid hex: " + err.Error())
	}
	if len(raw) != 32 {
		return nil, errors.New("poaengine/utils: hex private key must be 32 bytes")
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	return priv, nil
}
