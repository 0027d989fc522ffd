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
	"github.com/max-de-bug/ascii-art-indexer/internal/config"
	"github.com/max-de-bug/ascii-art-indexer/internal/indexer"
	"github.com/max-de-bug/ascii-art-indexer/internal/logger"
	"github.com/max-de-bug/ascii-art-indexer/internal/solana"
	"github.com/max-de-bug/ascii-art-indexer/internal/store"
)

func main() {
	var configFile, envFile string
	flag.StringVar(&configFile, "config", "", "path to config file")
	flag.StringVar(&envFile, "env", "", "path to env file")
	flag.Parse()

	cfg, err := config.LoadIndexerConfig(configFile, envFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"service": "indexer"},
	}); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Flush(5 * time.Second)

	db, err := store.Open(cfg.Database)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}

	clock := adapter.NewClock()
	httpClient := adapter.NewHTTPClient(cfg.Solana.RequestTimeout)
	client := solana.NewRPCClient(cfg.Solana.RPCURL, httpClient, cfg.Solana.RateLimitPerSecond)
	subscriber := solana.NewWSSubscriber(cfg.Solana.WSURL, cfg.Solana.ProgramID)

	ix := indexer.New(cfg, client, subscriber, store.NewPGStore(db), clock)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := ix.Run(ctx); err != nil {
		logger.Fatal("indexer exited", zap.Error(err))
	}
}
