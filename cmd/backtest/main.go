package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"quantsim/internal/backtest"
	"quantsim/internal/config"
	"quantsim/internal/logger"
	"quantsim/internal/marketdata"
	"quantsim/internal/rules"
	"quantsim/internal/signals"
	"quantsim/internal/ta"
	"quantsim/internal/tradelog"
	"quantsim/internal/types"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	journal := flag.Bool("journal", false, "write the on-disk trade journal")
	flag.Parse()

	_ = godotenv.Load()
	must(logger.Init())

	cfg, err := config.Load(*configPath)
	must(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer logger.Shutdown(ctx)

	if v := os.Getenv("QUANTSIM_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		_ = tradelog.CompressOlder(n)
	}

	provider, err := marketdata.FromConfig(cfg.Data)
	must(err)

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -cfg.Data.Days)
	bars, err := marketdata.LoadUniverse(ctx, provider, cfg.Universe, from, to)
	must(err)

	registry, err := rules.Build(cfg.Rules)
	must(err)

	var benchmark []types.Bar
	if cfg.Data.Benchmark != "" {
		benchmark, err = provider.DailyBars(ctx, cfg.Data.Benchmark, from, to)
		must(err)
	}

	manager := signals.NewManager(registry,
		signals.MergePolicy(cfg.Signals.MergePolicy), ta.FromConfig(cfg.Indicators))
	merged := manager.GenerateAll(ctx, bars, nil)
	if *journal {
		for _, sig := range merged {
			if err := tradelog.AppendSignal(sig); err != nil {
				logger.Warn(ctx, "signal journal write failed", "error", err)
			}
		}
	}

	engine := backtest.New(cfg)
	if *journal {
		engine.WithJournal()
	}
	result := engine.Run(ctx, bars, merged, benchmark)

	b, err := json.MarshalIndent(result, "", "  ")
	must(err)
	fmt.Println(string(b))

	if result.Status != "success" {
		os.Exit(1)
	}
}
