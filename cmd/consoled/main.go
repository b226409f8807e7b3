package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"consoled/internal/app"
	"consoled/pkg/config"
)

func main() {
	// build metadata - set via ldflags during build/release
	var version = "dev"

	_ = godotenv.Load(".env")

	addrFlag := flag.String("addr", "", "listen address (host:port), overrides config")
	dbFlag := flag.String("db", "", "pebble storage path, overrides config")
	cfgFlag := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgFlag)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Flags win over config file values when provided.
	if *addrFlag != "" {
		host, port, err := config.SplitAddr(*addrFlag)
		if err != nil {
			log.Fatalf("invalid -addr: %v", err)
		}
		cfg.Server.Address = host
		cfg.Server.Port = port
	}
	if *dbFlag != "" {
		cfg.Server.DBPath = *dbFlag
	}

	a, err := app.New(cfg, version)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
