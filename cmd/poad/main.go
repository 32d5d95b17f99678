// Command poad is the engine's own thin wiring example: it parses the
// poa-* flags, resolves them into a config.Config, and reports what it
// resolved. It is not a chain node — block storage, assembly,
// submission and P2P relay are the embedding host's responsibility
// (see app.Host) — so it stops short of constructing an app.Engine,
// which needs the host's ChainReader, Clock, BlockAssembler and
// BlockSubmitter.
package main

import (
	"flag"
	"fmt"
	"os"

	"poaengine/config"
	"poaengine/logs"
)

func main() {
	var (
		minerList = flag.String("poa-miner-list", "", "comma-separated list of authority addresses")
		miner     = flag.String("poa-miner", "", "this node's own authority address, if producing")
		minerKey  = flag.String("poa-miner-key", "", "WIF or hex signing key for -poa-miner")
		interval  = flag.Uint("poa-interval", uint(config.DefaultConfig().Cadence.Interval), "seconds after a block before its primary successor may publish")
		timeout   = flag.Uint("poa-timeout", uint(config.DefaultConfig().Cadence.Timeout), "extra seconds granted to each fallback authority")
		verbose   = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		logs.SetLevel(logs.LevelDebug)
	}

	args := map[string]string{
		config.KeyMinerList: *minerList,
		config.KeyMiner:     *miner,
		config.KeyMinerKey:  *minerKey,
		config.KeyInterval:  fmt.Sprint(*interval),
		config.KeyTimeout:   fmt.Sprint(*timeout),
	}

	cfg, err := config.Load(args)
	if err != nil {
		logs.Error("poad: %v", err)
		os.Exit(1)
	}

	reg, err := cfg.ParseRegistry()
	if err != nil {
		logs.Error("poad: %v", err)
		os.Exit(1)
	}

	logs.Info("poad: resolved roster of %d authorities, interval=%ds timeout=%ds", reg.Len(), cfg.Cadence.Interval, cfg.Cadence.Timeout)
	if cfg.Miner != "" {
		logs.Info("poad: configured to produce as %s", cfg.Miner)
	} else {
		logs.Info("poad: running validator-only, no local miner configured")
	}
	logs.Info("poad: construct an app.Engine with this Config and your chain node's ChainReader/Clock/BlockAssembler/BlockSubmitter to start producing")
}
