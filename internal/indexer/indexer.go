// Package indexer runs the ingestion pipeline: a websocket subscription for
// live events, a periodic poll that catches anything the subscription
// missed, and a one-shot backfill over recent history at startup. All
// three paths converge on the same idempotent processing gate.
package indexer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	"github.com/max-de-bug/ascii-art-indexer/internal/adapter"
	"github.com/max-de-bug/ascii-art-indexer/internal/config"
	"github.com/max-de-bug/ascii-art-indexer/internal/decoder"
	"github.com/max-de-bug/ascii-art-indexer/internal/dedup"
	"github.com/max-de-bug/ascii-art-indexer/internal/domain"
	"github.com/max-de-bug/ascii-art-indexer/internal/logger"
	"github.com/max-de-bug/ascii-art-indexer/internal/solana"
	"github.com/max-de-bug/ascii-art-indexer/internal/store"
)

const resubscribeDelay = 5 * time.Second

// Status is a point-in-time snapshot of the ingestion pipeline
type Status struct {
	Running               bool       `json:"isIndexing"`
	ProcessedTransactions int64      `json:"processedTransactions"`
	CurrentlyProcessing   int        `json:"currentlyProcessing"`
	TotalErrors           int64      `json:"totalErrors"`
	TotalRetries          int64      `json:"totalRetries"`
	CacheSize             int        `json:"cacheSize"`
	LastProcessedAt       *time.Time `json:"lastProcessedAt,omitempty"`
}

// Indexer orchestrates ingestion from subscription, poll and backfill
type Indexer struct {
	cfg        *config.IndexerConfig
	client     solana.Client
	subscriber solana.Subscriber
	store      store.Store
	decoder    *decoder.Decoder
	cache      *dedup.Cache
	clock      adapter.Clock
	retry      solana.RetryPolicy

	pool        pond.Pool
	inFlight    *xsync.Map[string, struct{}]
	resubscribe chan struct{}

	running         atomic.Bool
	processed       atomic.Int64
	totalErrors     atomic.Int64
	totalRetries    atomic.Int64
	lastProcessedAt atomic.Int64
}

// New wires an indexer from its collaborators
func New(
	cfg *config.IndexerConfig,
	client solana.Client,
	subscriber solana.Subscriber,
	st store.Store,
	clock adapter.Clock,
) *Indexer {
	return &Indexer{
		cfg:         cfg,
		client:      client,
		subscriber:  subscriber,
		store:       st,
		decoder:     decoder.New(cfg.Solana.ProgramID),
		cache:       dedup.New(cfg.CacheCapacity, cfg.CacheRetention, clock),
		clock:       clock,
		retry:       solana.NewRetryPolicy(cfg.Solana.MaxRetries, cfg.Solana.RetryDelay, clock),
		pool:        pond.NewPool(cfg.MaxConcurrent),
		inFlight:    xsync.NewMap[string, struct{}](),
		resubscribe: make(chan struct{}, 1),
	}
}

// Run starts all ingestion loops and blocks until the context is cancelled.
// In-flight work is drained before returning.
func (ix *Indexer) Run(ctx context.Context) error {
	ix.running.Store(true)
	defer ix.running.Store(false)

	logger.InfoCtx(ctx, "starting indexer",
		zap.String("program", ix.cfg.Solana.ProgramID),
		zap.Duration("pollInterval", ix.cfg.PollInterval),
		zap.Int("backfillLimit", ix.cfg.BackfillLimit))

	notifications := make(chan domain.SignatureInfo, 64)

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		ix.subscriptionLoop(ctx, notifications)
	}()
	go func() {
		defer wg.Done()
		ix.consumeLoop(ctx, notifications)
	}()
	go func() {
		defer wg.Done()
		ix.runBackfill(ctx)
	}()
	go func() {
		defer wg.Done()
		ix.pollLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		ix.maintenanceLoop(ctx)
	}()

	<-ctx.Done()
	wg.Wait()
	ix.pool.StopAndWait()

	logger.Info("indexer stopped",
		zap.Int64("processed", ix.processed.Load()),
		zap.Int64("errors", ix.totalErrors.Load()))
	return nil
}

// subscriptionLoop keeps the log subscription alive, redialing with a
// fixed delay whenever the connection breaks or a failed health probe
// signals that the subscription should be recreated
func (ix *Indexer) subscriptionLoop(ctx context.Context, out chan<- domain.SignatureInfo) {
	for {
		subCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- ix.subscriber.Subscribe(subCtx, out)
		}()

		var err error
		forced := false
		select {
		case err = <-done:
		case <-ix.resubscribe:
			forced = true
			cancel()
			err = <-done
		}
		cancel()

		if ctx.Err() != nil {
			return
		}
		switch {
		case forced:
			logger.WarnCtx(ctx, "recreating log subscription after failed health probe")
		case err == nil || errors.Is(err, domain.ErrSubscriptionClosed):
			logger.WarnCtx(ctx, "log subscription dropped, resubscribing", zap.Error(err))
		default:
			logger.ErrorCtx(ctx, err, zap.String("loop", "subscription"))
		}

		select {
		case <-ix.clock.After(resubscribeDelay):
		case <-ctx.Done():
			return
		}
	}
}

func (ix *Indexer) consumeLoop(ctx context.Context, in <-chan domain.SignatureInfo) {
	for {
		select {
		case info := <-in:
			ix.enqueue(ctx, info)
		case <-ctx.Done():
			return
		}
	}
}

// pollLoop periodically fetches the newest signatures for the program as a
// safety net behind the subscription
func (ix *Indexer) pollLoop(ctx context.Context) {
	ticker := ix.clock.NewTicker(ix.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ix.pollOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (ix *Indexer) pollOnce(ctx context.Context) {
	var signatures []domain.SignatureInfo
	err := ix.retryDo(ctx, "getSignaturesForAddress", func() error {
		var err error
		signatures, err = ix.client.GetSignaturesForAddress(ctx, ix.cfg.Solana.ProgramID, ix.cfg.PollWindow)
		return err
	})
	if err != nil {
		if ctx.Err() == nil {
			ix.totalErrors.Add(1)
			logger.ErrorCtx(ctx, err, zap.String("loop", "poll"))
		}
		return
	}

	for _, info := range signatures {
		ix.enqueue(ctx, info)
	}
}

// runBackfill processes recent history once at startup, oldest first, in
// small batches so the RPC node is not hammered
func (ix *Indexer) runBackfill(ctx context.Context) {
	var signatures []domain.SignatureInfo
	err := ix.retryDo(ctx, "getSignaturesForAddress", func() error {
		var err error
		signatures, err = ix.client.GetSignaturesForAddress(ctx, ix.cfg.Solana.ProgramID, ix.cfg.BackfillLimit)
		return err
	})
	if err != nil {
		if ctx.Err() == nil {
			ix.totalErrors.Add(1)
			logger.ErrorCtx(ctx, err, zap.String("loop", "backfill"))
		}
		return
	}

	// newest first from the node, replay in ledger order
	enqueued, skipped := 0, 0
	batchSize := ix.cfg.BackfillBatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	for i := len(signatures) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return
		}
		if ix.cache.Seen(signatures[i].Signature) {
			skipped++
			continue
		}
		ix.enqueue(ctx, signatures[i])
		enqueued++

		if enqueued%batchSize == 0 {
			select {
			case <-ix.clock.After(ix.cfg.BackfillBatchDelay):
			case <-ctx.Done():
				return
			}
		}
	}

	logger.InfoCtx(ctx, "backfill complete",
		zap.Int("enqueued", enqueued), zap.Int("skipped", skipped))
}

// maintenanceLoop runs cache cleanup and node health probes
func (ix *Indexer) maintenanceLoop(ctx context.Context) {
	cleanup := ix.clock.NewTicker(ix.cfg.CacheCleanupInterval)
	defer cleanup.Stop()
	health := ix.clock.NewTicker(ix.cfg.Solana.HealthCheckInterval)
	defer health.Stop()

	for {
		select {
		case <-cleanup.C:
			ix.cache.Cleanup()
		case <-health.C:
			ix.probeNodeHealth(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// probeNodeHealth asks the node for liveness. A stale-but-alive connection
// passes websocket keepalive, so a failed probe signals the subscription
// loop to drop and recreate the push subscription.
func (ix *Indexer) probeNodeHealth(ctx context.Context) {
	err := ix.client.GetHealth(ctx)
	if err == nil || ctx.Err() != nil {
		return
	}
	logger.WarnCtx(ctx, "rpc node health probe failed, recreating subscription", zap.Error(err))
	select {
	case ix.resubscribe <- struct{}{}:
	default:
	}
}

// retryDo wraps the retry policy and feeds the retry counter
func (ix *Indexer) retryDo(ctx context.Context, name string, op func() error) error {
	attempts := 0
	return ix.retry.Do(ctx, name, func() error {
		attempts++
		if attempts > 1 {
			ix.totalRetries.Add(1)
		}
		return op()
	})
}

// Status returns a snapshot of pipeline metrics
func (ix *Indexer) Status() Status {
	s := Status{
		Running:               ix.running.Load(),
		ProcessedTransactions: ix.processed.Load(),
		CurrentlyProcessing:   ix.inFlight.Size(),
		TotalErrors:           ix.totalErrors.Load(),
		TotalRetries:          ix.totalRetries.Load(),
		CacheSize:             ix.cache.Size(),
	}
	if last := ix.lastProcessedAt.Load(); last > 0 {
		t := time.Unix(0, last).UTC()
		s.LastProcessedAt = &t
	}
	return s
}
