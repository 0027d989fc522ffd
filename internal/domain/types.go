package domain

import "time"

// EventType identifies the kind of program event decoded from a transaction
type EventType string

const (
	// EventTypeMint is emitted when a new ASCII art NFT is minted
	EventTypeMint EventType = "mint"
	// EventTypeBuyback is emitted when the program executes a token buyback
	EventTypeBuyback EventType = "buyback"
)

// Event is the tagged union of all decodable program events.
// Exactly one of Mint/Buyback is non-nil, discriminated by Type.
type Event struct {
	Type    EventType
	Mint    *MintEvent
	Buyback *BuybackEvent
}

// MintEvent represents a decoded NFT mint emitted by the program
type MintEvent struct {
	// Minter is the wallet address that minted the NFT
	Minter string
	// Mint is the token mint address of the NFT
	Mint string
	// Name is the NFT display name
	Name string
	// Symbol is the NFT symbol
	Symbol string
	// URI points to the off-chain metadata
	URI string
	// Timestamp is the on-chain event timestamp (unix seconds)
	Timestamp int64
	// LowConfidence marks events reconstructed via the fallback parser,
	// where the mint account was located heuristically
	LowConfidence bool
}

// BuybackEvent represents a decoded token buyback executed by the program
type BuybackEvent struct {
	// AmountSol is the swapped amount in lamports
	AmountSol int64
	// TokenAmount is the amount of tokens received
	TokenAmount int64
	// Timestamp is the on-chain event timestamp (unix seconds)
	Timestamp int64
}

// NewMintEvent wraps a MintEvent into the tagged union
func NewMintEvent(e *MintEvent) *Event {
	return &Event{Type: EventTypeMint, Mint: e}
}

// NewBuybackEvent wraps a BuybackEvent into the tagged union
func NewBuybackEvent(e *BuybackEvent) *Event {
	return &Event{Type: EventTypeBuyback, Buyback: e}
}

// SignatureInfo is a transaction signature discovered by any ingestion loop
type SignatureInfo struct {
	// Signature is the unique transaction identifier
	Signature string
	// Slot is the ledger slot the transaction landed in
	Slot uint64
	// BlockTime is the block timestamp, if the node reported one
	BlockTime *time.Time
}

// TokenAccountState captures the current on-chain state of a (mint, owner)
// token account pair, as reported by the RPC node
type TokenAccountState struct {
	// Exists is false when no token account holds the mint for the owner
	Exists bool
	// Closed is true when the token account has been closed
	Closed bool
	// Owner is the wallet address the token account belongs to
	Owner string
	// Amount is the raw token balance
	Amount uint64
	// Decimals is the mint's decimal precision (0 for NFTs)
	Decimals uint8
}

// HoldsExactlyOne reports whether the account state represents a single
// indivisible unit currently held by the given owner
func (s TokenAccountState) HoldsExactlyOne(owner string) bool {
	return s.Exists && !s.Closed && s.Owner == owner && s.Amount == 1 && s.Decimals == 0
}
