package schema

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IndexedItem is one indexed ASCII art NFT. The unique constraints on mint
// and tx signature are the ground truth for idempotent ingestion.
type IndexedItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	MintAddress    string    `gorm:"size:64;uniqueIndex;not null"`
	OwnerAddress   string    `gorm:"size:64;index;not null"`
	Name           string    `gorm:"size:256"`
	Symbol         string    `gorm:"size:32"`
	URI            string    `gorm:"size:512"`
	TxSignature    string    `gorm:"size:96;uniqueIndex;not null"`
	LowConfidence  bool      `gorm:"not null;default:false"`
	MintedAt       time.Time `gorm:"not null"`
	LastVerifiedAt time.Time `gorm:"index;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (i *IndexedItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// LevelAggregate is the cached progression projection for one wallet.
// It is always recomputed from the item count, never incremented.
type LevelAggregate struct {
	OwnerAddress string `gorm:"size:64;primaryKey"`
	Level        int    `gorm:"not null"`
	Experience   int64  `gorm:"not null"`
	NextLevelAt  int64  `gorm:"not null"`
	Version      int64  `gorm:"not null;default:0"`
	UpdatedAt    time.Time
}

// BuybackEvent is an append-only record of a token buyback, unique per
// transaction signature.
type BuybackEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TxSignature string    `gorm:"size:96;uniqueIndex;not null"`
	AmountSol   int64     `gorm:"not null"`
	TokenAmount int64     `gorm:"not null"`
	OccurredAt  time.Time `gorm:"index;not null"`
	CreatedAt   time.Time
}

func (b *BuybackEvent) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
