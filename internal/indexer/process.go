package indexer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/max-de-bug/ascii-art-indexer/internal/domain"
	"github.com/max-de-bug/ascii-art-indexer/internal/logger"
	"github.com/max-de-bug/ascii-art-indexer/internal/solana"
	"github.com/max-de-bug/ascii-art-indexer/internal/store/schema"
)

// enqueue gates a signature through the in-flight set and hands it to the
// worker pool. Duplicate notifications for a signature already being
// processed are dropped here.
func (ix *Indexer) enqueue(ctx context.Context, info domain.SignatureInfo) {
	if info.Signature == "" {
		return
	}
	if _, loaded := ix.inFlight.LoadOrStore(info.Signature, struct{}{}); loaded {
		return
	}

	ix.pool.Submit(func() {
		defer ix.inFlight.Delete(info.Signature)
		ix.processSignature(ctx, info)
	})
}

// processSignature runs one signature through the dedup gates, fetches and
// decodes the transaction and persists the event. Every error class is
// logged and skipped, never fatal to the pipeline.
func (ix *Indexer) processSignature(ctx context.Context, info domain.SignatureInfo) {
	if ctx.Err() != nil {
		return
	}
	sig := info.Signature

	if ix.cache.Seen(sig) {
		return
	}

	processed, err := ix.store.IsSignatureProcessed(ctx, sig)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("signature", sig))
	} else if processed {
		ix.cache.MarkSeen(sig)
		return
	}

	var tx *solana.ParsedTransaction
	err = ix.retryDo(ctx, "getTransaction", func() error {
		var err error
		tx, err = ix.client.GetTransaction(ctx, sig)
		return err
	})
	if err != nil {
		if ctx.Err() == nil {
			ix.totalErrors.Add(1)
			logger.ErrorCtx(ctx, err, zap.String("signature", sig))
		}
		return
	}
	if tx == nil {
		// not visible on the node yet, the poll loop will pick it up again
		logger.DebugCtx(ctx, "transaction not found yet", zap.String("signature", sig))
		return
	}

	event, err := ix.decoder.Decode(tx)
	if err != nil {
		ix.totalErrors.Add(1)
		logger.ErrorCtx(ctx, err, zap.String("signature", sig))
		return
	}
	if event == nil {
		ix.cache.MarkSeen(sig)
		return
	}

	switch event.Type {
	case domain.EventTypeMint:
		ix.handleMint(ctx, tx, event.Mint)
	case domain.EventTypeBuyback:
		ix.handleBuyback(ctx, tx, event.Buyback)
	}
}

// ownership check outcomes: the ledger either confirms a holder, answers
// with a state that does not show the token held, or could not be consulted
type ownershipResult int

const (
	ownershipConfirmed ownershipResult = iota
	ownershipMismatch
	ownershipUnknown
)

// handleMint confirms on-chain ownership and persists the item together
// with the owner's recomputed level aggregate. A definitive mismatch drops
// the event; only an unavailable check falls back to best-effort indexing,
// and then only for structured events.
func (ix *Indexer) handleMint(ctx context.Context, tx *solana.ParsedTransaction, event *domain.MintEvent) {
	owner, result := ix.confirmOwnership(ctx, event)
	switch {
	case result == ownershipMismatch:
		logger.WarnCtx(ctx, "dropping mint the ledger does not show held",
			zap.String("signature", tx.Signature), zap.String("mint", event.Mint))
		ix.cache.MarkSeen(tx.Signature)
		return
	case result == ownershipUnknown && event.LowConfidence:
		// a heuristic reconstruction that the ledger could not corroborate
		// is not worth indexing
		logger.WarnCtx(ctx, "skipping unverifiable low-confidence mint",
			zap.String("signature", tx.Signature), zap.String("mint", event.Mint))
		return
	}

	now := ix.clock.Now()
	item := &schema.IndexedItem{
		MintAddress:    event.Mint,
		OwnerAddress:   owner,
		Name:           event.Name,
		Symbol:         event.Symbol,
		URI:            event.URI,
		TxSignature:    tx.Signature,
		LowConfidence:  event.LowConfidence,
		MintedAt:       mintedAt(tx, event.Timestamp, now),
		LastVerifiedAt: now,
	}

	created, err := ix.store.SaveItem(ctx, item)
	if err != nil {
		ix.totalErrors.Add(1)
		logger.ErrorCtx(ctx, err, zap.String("signature", tx.Signature))
		return
	}
	ix.cache.MarkSeen(tx.Signature)
	if !created {
		return
	}

	ix.processed.Add(1)
	ix.lastProcessedAt.Store(now.UnixNano())
	logger.InfoCtx(ctx, "indexed mint",
		zap.String("mint", event.Mint),
		zap.String("owner", owner),
		zap.String("name", event.Name),
		zap.Bool("lowConfidence", event.LowConfidence))
}

// confirmOwnership checks that the minter actually holds the token,
// retrying a few times because fresh transactions can race token account
// visibility. Returns the resolved owner and the check outcome; the
// outcome is a mismatch only when at least one attempt fetched a state
// that does not show the token held.
func (ix *Indexer) confirmOwnership(ctx context.Context, event *domain.MintEvent) (string, ownershipResult) {
	result := ownershipUnknown
	for attempt := 0; attempt <= ix.cfg.OwnershipCheckRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ix.clock.After(ix.cfg.OwnershipCheckDelay):
			case <-ctx.Done():
				return event.Minter, result
			}
		}

		state, err := ix.client.GetTokenAccountState(ctx, event.Minter, event.Mint)
		if err != nil {
			logger.WarnCtx(ctx, "ownership check failed",
				zap.String("mint", event.Mint), zap.Error(err))
			continue
		}
		if state.HoldsExactlyOne(event.Minter) {
			return state.Owner, ownershipConfirmed
		}
		if state.Exists && !state.Closed && state.Amount == 1 {
			// already transferred, index under the current holder
			return state.Owner, ownershipConfirmed
		}
		result = ownershipMismatch
	}
	return event.Minter, result
}

// handleBuyback appends the buyback record, idempotent by signature
func (ix *Indexer) handleBuyback(ctx context.Context, tx *solana.ParsedTransaction, event *domain.BuybackEvent) {
	now := ix.clock.Now()
	record := &schema.BuybackEvent{
		TxSignature: tx.Signature,
		AmountSol:   event.AmountSol,
		TokenAmount: event.TokenAmount,
		OccurredAt:  mintedAt(tx, event.Timestamp, now),
	}

	created, err := ix.store.SaveBuybackEvent(ctx, record)
	if err != nil {
		ix.totalErrors.Add(1)
		logger.ErrorCtx(ctx, err, zap.String("signature", tx.Signature))
		return
	}
	ix.cache.MarkSeen(tx.Signature)
	if !created {
		return
	}

	ix.processed.Add(1)
	ix.lastProcessedAt.Store(now.UnixNano())
	logger.InfoCtx(ctx, "indexed buyback",
		zap.Int64("amountSol", event.AmountSol),
		zap.Int64("tokenAmount", event.TokenAmount))
}

// mintedAt resolves the event time: the embedded timestamp wins, then the
// block time, then the local clock
func mintedAt(tx *solana.ParsedTransaction, eventTimestamp int64, fallback time.Time) time.Time {
	if eventTimestamp > 0 {
		return time.Unix(eventTimestamp, 0).UTC()
	}
	if tx.BlockTime != nil && *tx.BlockTime > 0 {
		return time.Unix(*tx.BlockTime, 0).UTC()
	}
	return fallback.UTC()
}
