package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/max-de-bug/ascii-art-indexer/internal/config"
	"github.com/max-de-bug/ascii-art-indexer/internal/level"
	"github.com/max-de-bug/ascii-art-indexer/internal/store/schema"
)

// Open connects to postgres, configures the connection pool and migrates
// the schema
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&schema.IndexedItem{},
		&schema.LevelAggregate{},
		&schema.BuybackEvent{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// PGStore implements Store backed by postgres via gorm
type PGStore struct {
	db *gorm.DB
}

// NewPGStore creates a postgres-backed store
func NewPGStore(db *gorm.DB) *PGStore {
	return &PGStore{db: db}
}

// recomputeAggregate rebuilds the level aggregate of one owner from the
// current item count. The aggregate row is locked for the duration of the
// transaction so concurrent recomputes for the same owner serialize.
func (s *PGStore) recomputeAggregate(tx *gorm.DB, owner string) error {
	// make sure a row exists so the lock has something to grab
	seed := schema.LevelAggregate{OwnerAddress: owner, Level: 1}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil &&
		!errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to seed level aggregate: %w", err)
	}

	var agg schema.LevelAggregate
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_address = ?", owner).
		First(&agg).Error; err != nil {
		return fmt.Errorf("failed to lock level aggregate: %w", err)
	}

	var count int64
	if err := tx.Model(&schema.IndexedItem{}).
		Where("owner_address = ?", owner).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count items: %w", err)
	}

	if count == 0 {
		if err := tx.Delete(&agg).Error; err != nil {
			return fmt.Errorf("failed to delete empty level aggregate: %w", err)
		}
		return nil
	}

	computed := level.Compute(count)
	agg.Level = computed.Level
	agg.Experience = computed.Experience
	agg.NextLevelAt = computed.NextLevelAt
	agg.Version++
	if err := tx.Save(&agg).Error; err != nil {
		return fmt.Errorf("failed to save level aggregate: %w", err)
	}
	return nil
}

// SaveItem inserts an indexed item and recomputes the owner's level
// aggregate in the same transaction
func (s *PGStore) SaveItem(ctx context.Context, item *schema.IndexedItem) (bool, error) {
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(item)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil
			}
			return fmt.Errorf("failed to insert item: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		created = true
		return s.recomputeAggregate(tx, item.OwnerAddress)
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// SaveBuybackEvent appends a buyback record, idempotent by signature
func (s *PGStore) SaveBuybackEvent(ctx context.Context, event *schema.BuybackEvent) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert buyback event: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// IsSignatureProcessed reports whether a signature already produced a record
func (s *PGStore) IsSignatureProcessed(ctx context.Context, signature string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&schema.IndexedItem{}).
		Where("tx_signature = ?", signature).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check item signature: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	if err := s.db.WithContext(ctx).Model(&schema.BuybackEvent{}).
		Where("tx_signature = ?", signature).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check buyback signature: %w", err)
	}
	return count > 0, nil
}

// GetItemByMint returns the item for a mint address, nil when absent
func (s *PGStore) GetItemByMint(ctx context.Context, mint string) (*schema.IndexedItem, error) {
	var item schema.IndexedItem
	if err := s.db.WithContext(ctx).
		Where("mint_address = ?", mint).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item by mint: %w", err)
	}
	return &item, nil
}

// GetItemsByOwner returns all items held by a wallet, newest first
func (s *PGStore) GetItemsByOwner(ctx context.Context, owner string) ([]schema.IndexedItem, error) {
	var items []schema.IndexedItem
	if err := s.db.WithContext(ctx).
		Where("owner_address = ?", owner).
		Order("minted_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get items by owner: %w", err)
	}
	return items, nil
}

// GetAggregate returns the level aggregate for a wallet, nil when absent
func (s *PGStore) GetAggregate(ctx context.Context, owner string) (*schema.LevelAggregate, error) {
	var agg schema.LevelAggregate
	if err := s.db.WithContext(ctx).
		Where("owner_address = ?", owner).
		First(&agg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get level aggregate: %w", err)
	}
	return &agg, nil
}

// GetStaleItems returns items not verified since before, oldest first
func (s *PGStore) GetStaleItems(ctx context.Context, before time.Time, limit int) ([]schema.IndexedItem, error) {
	var items []schema.IndexedItem
	if err := s.db.WithContext(ctx).
		Where("last_verified_at < ?", before).
		Order("last_verified_at ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get stale items: %w", err)
	}
	return items, nil
}

// TouchItemsVerified bumps the verification timestamp of the given items
func (s *PGStore) TouchItemsVerified(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&schema.IndexedItem{}).
		Where("id IN ?", ids).
		Update("last_verified_at", at).Error; err != nil {
		return fmt.Errorf("failed to touch items: %w", err)
	}
	return nil
}

// DeleteItemsAndRecompute removes items and rebuilds the aggregate of every
// affected owner in one transaction
func (s *PGStore) DeleteItemsAndRecompute(ctx context.Context, items []schema.IndexedItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	ownerSet := make(map[string]struct{})
	for _, item := range items {
		ids = append(ids, item.ID)
		ownerSet[item.OwnerAddress] = struct{}{}
	}

	// deterministic lock order across owners avoids deadlocks between
	// concurrent sweeps
	owners := make([]string, 0, len(ownerSet))
	for owner := range ownerSet {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", ids).
			Delete(&schema.IndexedItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
		for _, owner := range owners {
			if err := s.recomputeAggregate(tx, owner); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListBuybackEvents returns buyback records, newest first
func (s *PGStore) ListBuybackEvents(ctx context.Context, limit, offset int) ([]schema.BuybackEvent, error) {
	var events []schema.BuybackEvent
	if err := s.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list buyback events: %w", err)
	}
	return events, nil
}

// GetStatistics aggregates totals over items and buybacks
func (s *PGStore) GetStatistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics

	if err := s.db.WithContext(ctx).Model(&schema.IndexedItem{}).
		Count(&stats.TotalItems).Error; err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&schema.IndexedItem{}).
		Distinct("owner_address").
		Count(&stats.DistinctOwners).Error; err != nil {
		return nil, fmt.Errorf("failed to count owners: %w", err)
	}

	row := struct {
		Count       int64
		AmountSol   int64
		TokenAmount int64
	}{}
	if err := s.db.WithContext(ctx).Model(&schema.BuybackEvent{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount_sol), 0) AS amount_sol, COALESCE(SUM(token_amount), 0) AS token_amount").
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate buybacks: %w", err)
	}
	stats.TotalBuybacks = row.Count
	stats.TotalSolSwapped = row.AmountSol
	stats.TotalTokensBurnt = row.TokenAmount

	return &stats, nil
}
