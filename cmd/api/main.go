package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/max-de-bug/ascii-art-indexer/internal/adapter"
	"github.com/max-de-bug/ascii-art-indexer/internal/api"
	"github.com/max-de-bug/ascii-art-indexer/internal/config"
	"github.com/max-de-bug/ascii-art-indexer/internal/logger"
	"github.com/max-de-bug/ascii-art-indexer/internal/reconciler"
	"github.com/max-de-bug/ascii-art-indexer/internal/solana"
	"github.com/max-de-bug/ascii-art-indexer/internal/store"
)

func main() {
	var configFile, envFile string
	flag.StringVar(&configFile, "config", "", "path to config file")
	flag.StringVar(&envFile, "env", "", "path to env file")
	flag.Parse()

	cfg, err := config.LoadAPIConfig(configFile, envFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"service": "api"},
	}); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Flush(5 * time.Second)

	db, err := store.Open(cfg.Database)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	pg := store.NewPGStore(db)

	// the on-read ownership check is enabled when an RPC node is configured
	var verifier api.OwnershipVerifier
	if cfg.Solana.RPCURL != "" {
		clock := adapter.NewClock()
		httpClient := adapter.NewHTTPClient(cfg.Solana.RequestTimeout)
		client := solana.NewRPCClient(cfg.Solana.RPCURL, httpClient, cfg.Solana.RateLimitPerSecond)
		verifier = reconciler.NewVerifier(client,
			solana.NewRetryPolicy(cfg.Solana.MaxRetries, cfg.Solana.RetryDelay, clock))
	} else {
		logger.Warn("rpc node not configured, on-read ownership checks disabled")
	}

	server := api.NewServer(cfg, pg, verifier)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	logger.Info("starting api server", zap.String("addr", cfg.Server.Addr()))
	if err := server.Run(ctx); err != nil {
		logger.Fatal("api server exited", zap.Error(err))
	}
}
