package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"quantsim/internal/config"
	"quantsim/internal/events"
	"quantsim/internal/logger"
	"quantsim/internal/types"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if !cfg.Collector.Enabled {
		log.Fatal("collector.enabled is false; nothing to do")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer logger.Shutdown(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "shutting down")
		cancel()
	}()

	// each collected event goes to stdout as one JSON line
	sink := func(_ context.Context, batch []types.MarketEvent) {
		for _, ev := range batch {
			b, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Println(string(b))
		}
	}

	events.NewPoller(cfg.Collector, cfg.Universe, sink).Run(ctx)
}
