package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/max-de-bug/ascii-art-indexer/internal/store/schema"
)

// Statistics is an aggregate snapshot over the whole projection
type Statistics struct {
	TotalItems       int64
	DistinctOwners   int64
	TotalBuybacks    int64
	TotalSolSwapped  int64
	TotalTokensBurnt int64
}

// Store defines the persistence operations of the indexer
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// SaveItem inserts an indexed item and recomputes the owner's level
	// aggregate in the same transaction. Returns false when an item with
	// the same mint or signature already exists.
	SaveItem(ctx context.Context, item *schema.IndexedItem) (bool, error)

	// SaveBuybackEvent appends a buyback record. Returns false when the
	// signature was already recorded.
	SaveBuybackEvent(ctx context.Context, event *schema.BuybackEvent) (bool, error)

	// IsSignatureProcessed reports whether a transaction signature already
	// produced an item or a buyback record.
	IsSignatureProcessed(ctx context.Context, signature string) (bool, error)

	// GetItemByMint returns the item for a mint address, nil when absent
	GetItemByMint(ctx context.Context, mint string) (*schema.IndexedItem, error)

	// GetItemsByOwner returns all items held by a wallet, newest first
	GetItemsByOwner(ctx context.Context, owner string) ([]schema.IndexedItem, error)

	// GetAggregate returns the level aggregate for a wallet, nil when absent
	GetAggregate(ctx context.Context, owner string) (*schema.LevelAggregate, error)

	// GetStaleItems returns items whose last verification is older than the
	// given time, oldest first, up to limit
	GetStaleItems(ctx context.Context, before time.Time, limit int) ([]schema.IndexedItem, error)

	// TouchItemsVerified bumps the verification timestamp of the given items
	TouchItemsVerified(ctx context.Context, ids []uuid.UUID, at time.Time) error

	// DeleteItemsAndRecompute removes items and recomputes the level
	// aggregate of every affected owner in one transaction
	DeleteItemsAndRecompute(ctx context.Context, items []schema.IndexedItem) error

	// ListBuybackEvents returns buyback records, newest first
	ListBuybackEvents(ctx context.Context, limit, offset int) ([]schema.BuybackEvent, error)

	// GetStatistics aggregates totals over items and buybacks
	GetStatistics(ctx context.Context) (*Statistics, error)
}
