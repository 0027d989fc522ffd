// Package decoder turns confirmed transactions into program events. The
// structured path reads Anchor event payloads from "Program data:" log
// lines; when a transaction carries no structured payload a best-effort
// fallback reconstructs the event from plain log messages.
package decoder

import (
	"encoding/base64"
	"encoding/binary"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/max-de-bug/ascii-art-indexer/internal/domain"
	"github.com/max-de-bug/ascii-art-indexer/internal/logger"
	"github.com/max-de-bug/ascii-art-indexer/internal/solana"
)

// Anchor event discriminators: first 8 bytes of sha256("event:<Name>")
var (
	mintEventDiscriminator    = [8]byte{62, 73, 213, 84, 217, 70, 37, 55}
	buybackEventDiscriminator = [8]byte{73, 203, 66, 140, 17, 155, 53, 84}
)

const (
	programDataPrefix  = "Program data: "
	mintedLogPrefix    = "Minted ASCII NFT: "
	buybackLogPrefix   = "Buyback executed: "
	lamportsPerSol     = 1_000_000_000
	maxEventStringSize = 1024
)

// Decoder extracts events emitted by one program
type Decoder struct {
	programID string
}

// New creates a decoder bound to a program ID
func New(programID string) *Decoder {
	return &Decoder{programID: programID}
}

// Decode extracts the program event from a transaction. Transactions that
// carry no recognizable event return (nil, nil); malformed payloads are
// never an error, only a skip.
func (d *Decoder) Decode(tx *solana.ParsedTransaction) (*domain.Event, error) {
	if tx == nil || tx.Failed {
		return nil, nil
	}

	if event := d.decodeStructured(tx); event != nil {
		return event, nil
	}
	return d.decodeFallback(tx), nil
}

// decodeStructured walks the log messages tracking which program frame is
// active and decodes "Program data:" payloads emitted inside our frame
func (d *Decoder) decodeStructured(tx *solana.ParsedTransaction) *domain.Event {
	invokePrefix := "Program " + d.programID + " invoke"
	successPrefix := "Program " + d.programID + " success"

	depth := 0
	for _, line := range tx.LogMessages {
		switch {
		case strings.HasPrefix(line, invokePrefix):
			depth++
		case strings.HasPrefix(line, successPrefix):
			if depth > 0 {
				depth--
			}
		case depth > 0 && strings.HasPrefix(line, programDataPrefix):
			payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(line, programDataPrefix))
			if err != nil {
				logger.Debug("skipping undecodable program data",
					zap.String("signature", tx.Signature), zap.Error(err))
				continue
			}
			if event := decodeEventPayload(payload); event != nil {
				return event
			}
		}
	}
	return nil
}

func decodeEventPayload(payload []byte) *domain.Event {
	if len(payload) < 8 {
		return nil
	}
	var disc [8]byte
	copy(disc[:], payload[:8])
	body := payload[8:]

	switch disc {
	case mintEventDiscriminator:
		return decodeMintEvent(body)
	case buybackEventDiscriminator:
		return decodeBuybackEvent(body)
	default:
		return nil
	}
}

// borshReader consumes little-endian Borsh fields and goes sticky-invalid
// on the first truncated read
type borshReader struct {
	buf []byte
	ok  bool
}

func newBorshReader(buf []byte) *borshReader {
	return &borshReader{buf: buf, ok: true}
}

func (r *borshReader) take(n int) []byte {
	if !r.ok || n < 0 || len(r.buf) < n {
		r.ok = false
		return nil
	}
	out := r.buf[:n]
	r.buf = r.buf[n:]
	return out
}

func (r *borshReader) pubkey() string {
	raw := r.take(32)
	if !r.ok {
		return ""
	}
	return base58Encode(raw)
}

func (r *borshReader) str() string {
	raw := r.take(4)
	if !r.ok {
		return ""
	}
	n := int(binary.LittleEndian.Uint32(raw))
	if n > maxEventStringSize {
		r.ok = false
		return ""
	}
	b := r.take(n)
	if !r.ok {
		return ""
	}
	return string(b)
}

func (r *borshReader) i64() int64 {
	raw := r.take(8)
	if !r.ok {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(raw))
}

func decodeMintEvent(body []byte) *domain.Event {
	r := newBorshReader(body)
	event := &domain.MintEvent{
		Minter:    r.pubkey(),
		Mint:      r.pubkey(),
		Name:      r.str(),
		Symbol:    r.str(),
		URI:       r.str(),
		Timestamp: r.i64(),
	}
	if !r.ok {
		return nil
	}
	return domain.NewMintEvent(event)
}

func decodeBuybackEvent(body []byte) *domain.Event {
	r := newBorshReader(body)
	event := &domain.BuybackEvent{
		AmountSol:   r.i64(),
		TokenAmount: r.i64(),
		Timestamp:   r.i64(),
	}
	if !r.ok {
		return nil
	}
	return domain.NewBuybackEvent(event)
}

// decodeFallback reconstructs events from plain log templates emitted by
// older program builds that did not emit structured payloads
func (d *Decoder) decodeFallback(tx *solana.ParsedTransaction) *domain.Event {
	blockTime := int64(0)
	if tx.BlockTime != nil {
		blockTime = *tx.BlockTime
	}

	for _, line := range tx.LogMessages {
		msg := line
		if idx := strings.Index(msg, "Program log: "); idx >= 0 {
			msg = msg[idx+len("Program log: "):]
		}

		if strings.HasPrefix(msg, mintedLogPrefix) {
			if event := d.parseMintedLog(msg, tx, blockTime); event != nil {
				return event
			}
		}
		if strings.HasPrefix(msg, buybackLogPrefix) {
			if event := parseBuybackLog(msg, blockTime); event != nil {
				return event
			}
		}
	}
	return nil
}

// parseMintedLog parses "Minted ASCII NFT: {name} ({symbol}), URI: {uri}"
// and locates the mint account heuristically
func (d *Decoder) parseMintedLog(msg string, tx *solana.ParsedTransaction, blockTime int64) *domain.Event {
	rest := strings.TrimPrefix(msg, mintedLogPrefix)

	uriIdx := strings.LastIndex(rest, ", URI: ")
	if uriIdx < 0 {
		return nil
	}
	uri := rest[uriIdx+len(", URI: "):]
	head := rest[:uriIdx]

	open := strings.LastIndex(head, " (")
	if open < 0 || !strings.HasSuffix(head, ")") {
		return nil
	}
	name := head[:open]
	symbol := head[open+2 : len(head)-1]

	mint := locateMintAccount(tx)
	if mint == "" || len(tx.AccountKeys) == 0 {
		return nil
	}

	logger.Debug("reconstructed mint event from log template",
		zap.String("signature", tx.Signature), zap.String("mint", mint))

	return domain.NewMintEvent(&domain.MintEvent{
		Minter:        tx.AccountKeys[0],
		Mint:          mint,
		Name:          name,
		Symbol:        symbol,
		URI:           uri,
		Timestamp:     blockTime,
		LowConfidence: true,
	})
}

// locateMintAccount picks the most plausible mint account: a freshly funded
// account first (zero balance before, funded after), then the conventional
// instruction positions 5 and 6
func locateMintAccount(tx *solana.ParsedTransaction) string {
	n := len(tx.AccountKeys)
	if len(tx.PreBalances) == n && len(tx.PostBalances) == n {
		// index 0 is the fee payer, never the mint
		for i := 1; i < n; i++ {
			if tx.PreBalances[i] == 0 && tx.PostBalances[i] > 0 &&
				!solana.IsWellKnownProgram(tx.AccountKeys[i]) {
				return tx.AccountKeys[i]
			}
		}
	}

	for _, i := range []int{5, 6} {
		if i < n && !solana.IsWellKnownProgram(tx.AccountKeys[i]) {
			return tx.AccountKeys[i]
		}
	}
	return ""
}

// parseBuybackLog parses "Buyback executed: {amount} SOL swapped for
// {tokens} tokens"
func parseBuybackLog(msg string, blockTime int64) *domain.Event {
	rest := strings.TrimPrefix(msg, buybackLogPrefix)

	solIdx := strings.Index(rest, " SOL swapped for ")
	if solIdx < 0 || !strings.HasSuffix(rest, " tokens") {
		return nil
	}

	amountSol, err := strconv.ParseFloat(rest[:solIdx], 64)
	if err != nil {
		return nil
	}
	tokensStr := strings.TrimSuffix(rest[solIdx+len(" SOL swapped for "):], " tokens")
	tokens, err := strconv.ParseInt(tokensStr, 10, 64)
	if err != nil {
		return nil
	}

	return domain.NewBuybackEvent(&domain.BuybackEvent{
		AmountSol:   int64(amountSol * lamportsPerSol),
		TokenAmount: tokens,
		Timestamp:   blockTime,
	})
}
