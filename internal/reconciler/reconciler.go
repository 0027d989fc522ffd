// Package reconciler re-checks indexed items against the ledger. Ownership
// on chain can change without any program event (transfers, burns, closed
// token accounts), so stale rows are periodically verified and pruned.
package reconciler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/max-de-bug/ascii-art-indexer/internal/adapter"
	"github.com/max-de-bug/ascii-art-indexer/internal/config"
	"github.com/max-de-bug/ascii-art-indexer/internal/logger"
	"github.com/max-de-bug/ascii-art-indexer/internal/solana"
	"github.com/max-de-bug/ascii-art-indexer/internal/store"
	"github.com/max-de-bug/ascii-art-indexer/internal/store/schema"
)

// Reconciler sweeps stale items and reconciles them with on-chain state
type Reconciler struct {
	*Verifier

	cfg   *config.SweeperConfig
	store store.Store
	clock adapter.Clock

	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// New wires a reconciler from its collaborators
func New(cfg *config.SweeperConfig, client solana.Client, st store.Store, clock adapter.Clock) *Reconciler {
	retry := solana.NewRetryPolicy(cfg.Solana.MaxRetries, cfg.Solana.RetryDelay, clock)
	return &Reconciler{
		Verifier:  NewVerifier(client, retry),
		cfg:       cfg,
		store:     st,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start runs sweeps on the configured interval until Stop is called or the
// context ends. The first sweep runs immediately.
func (r *Reconciler) Start(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	defer close(r.stoppedCh)

	for {
		checked, removed, err := r.SweepOnce(ctx)
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("loop", "sweep"))
		} else {
			logger.InfoCtx(ctx, "sweep complete",
				zap.Int("checked", checked), zap.Int("removed", removed))
		}

		select {
		case <-r.clock.After(r.cfg.Interval):
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop signals the sweep loop to exit and waits for it
func (r *Reconciler) Stop() {
	if !r.running.CompareAndSwap(true, false) {
		return
	}
	close(r.stopChan)
	<-r.stoppedCh
}

// SweepOnce verifies one run of stale items: confirmed items get their
// verification timestamp bumped, failed ones are deleted with the owner
// aggregates recomputed in the same transaction. Returns items checked and
// items removed.
func (r *Reconciler) SweepOnce(ctx context.Context) (int, int, error) {
	cutoff := r.clock.Now().Add(-r.cfg.StaleAfter)
	items, err := r.store.GetStaleItems(ctx, cutoff, r.cfg.MaxPerRun)
	if err != nil {
		return 0, 0, err
	}
	if len(items) == 0 {
		return 0, 0, nil
	}

	logger.InfoCtx(ctx, "sweeping stale items",
		zap.Int("count", len(items)), zap.Time("cutoff", cutoff))

	checked := 0
	removed := 0
	for start := 0; start < len(items); start += r.cfg.BatchSize {
		if ctx.Err() != nil {
			return checked, removed, ctx.Err()
		}
		end := start + r.cfg.BatchSize
		if end > len(items) {
			end = len(items)
		}

		n, err := r.sweepBatch(ctx, items[start:end])
		checked += end - start
		removed += n
		if err != nil {
			return checked, removed, err
		}
	}
	return checked, removed, nil
}

// sweepBatch verifies a batch concurrently and flushes the outcome
func (r *Reconciler) sweepBatch(ctx context.Context, batch []schema.IndexedItem) (int, error) {
	var mu sync.Mutex
	confirmed := make([]schema.IndexedItem, 0, len(batch))
	failed := make([]schema.IndexedItem, 0)

	pool := pond.NewPool(r.cfg.Concurrency)
	for _, item := range batch {
		item := item
		pool.Submit(func() {
			held, err := r.VerifyOwnership(ctx, item.MintAddress, item.OwnerAddress)
			if err != nil {
				// leave the row stale, the next sweep retries it
				logger.WarnCtx(ctx, "ownership verification errored",
					zap.String("mint", item.MintAddress), zap.Error(err))
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if held {
				confirmed = append(confirmed, item)
			} else {
				failed = append(failed, item)
			}
		})
	}
	pool.StopAndWait()

	if err := r.flush(ctx, confirmed, failed); err != nil {
		return 0, err
	}
	return len(failed), nil
}

// flush persists batch outcomes with backoff so a transient database error
// does not lose a completed verification round
func (r *Reconciler) flush(ctx context.Context, confirmed, failed []schema.IndexedItem) error {
	op := func() error {
		if len(confirmed) > 0 {
			ids := make([]uuid.UUID, 0, len(confirmed))
			for _, item := range confirmed {
				ids = append(ids, item.ID)
			}
			if err := r.store.TouchItemsVerified(ctx, ids, r.clock.Now()); err != nil {
				return err
			}
			confirmed = nil
		}
		if len(failed) > 0 {
			for _, item := range failed {
				logger.InfoCtx(ctx, "removing item no longer held",
					zap.String("mint", item.MintAddress),
					zap.String("owner", item.OwnerAddress))
			}
			if err := r.store.DeleteItemsAndRecompute(ctx, failed); err != nil {
				return err
			}
			failed = nil
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = r.cfg.Solana.RequestTimeout
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
