package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/max-de-bug/ascii-art-indexer/internal/logger"
	"github.com/max-de-bug/ascii-art-indexer/internal/store/schema"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

type itemResponse struct {
	MintAddress    string    `json:"mintAddress"`
	OwnerAddress   string    `json:"ownerAddress"`
	Name           string    `json:"name"`
	Symbol         string    `json:"symbol"`
	URI            string    `json:"uri"`
	TxSignature    string    `json:"txSignature"`
	LowConfidence  bool      `json:"lowConfidence"`
	MintedAt       time.Time `json:"mintedAt"`
	LastVerifiedAt time.Time `json:"lastVerifiedAt"`
}

func toItemResponse(item schema.IndexedItem) itemResponse {
	return itemResponse{
		MintAddress:    item.MintAddress,
		OwnerAddress:   item.OwnerAddress,
		Name:           item.Name,
		Symbol:         item.Symbol,
		URI:            item.URI,
		TxSignature:    item.TxSignature,
		LowConfidence:  item.LowConfidence,
		MintedAt:       item.MintedAt,
		LastVerifiedAt: item.LastVerifiedAt,
	}
}

type levelResponse struct {
	OwnerAddress string `json:"ownerAddress"`
	Level        int    `json:"level"`
	Experience   int64  `json:"experience"`
	NextLevelAt  int64  `json:"nextLevelAt"`
}

type buybackResponse struct {
	TxSignature string    `json:"txSignature"`
	AmountSol   int64     `json:"amountSol"`
	TokenAmount int64     `json:"tokenAmount"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleStatus reports projection-level status derived from the database
func (s *Server) handleStatus(c *gin.Context) {
	stats, err := s.store.GetStatistics(c.Request.Context())
	if err != nil {
		abortInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalItems":      stats.TotalItems,
		"distinctOwners":  stats.DistinctOwners,
		"totalBuybacks":   stats.TotalBuybacks,
		"totalSolSwapped": stats.TotalSolSwapped,
	})
}

func (s *Server) handleItemsByOwner(c *gin.Context) {
	owner := c.Param("owner")
	items, err := s.store.GetItemsByOwner(c.Request.Context(), owner)
	if err != nil {
		abortInternal(c, err)
		return
	}

	resp := make([]itemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toItemResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"owner": owner, "nfts": resp, "count": len(resp)})
}

// handleItemByMint returns a single item, re-checking on-chain ownership
// first. A failed re-check removes the row before answering 404 so the
// projection self-heals on read.
func (s *Server) handleItemByMint(c *gin.Context) {
	ctx := c.Request.Context()
	mint := c.Param("mint")

	item, err := s.store.GetItemByMint(ctx, mint)
	if err != nil {
		abortInternal(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "nft not found"})
		return
	}

	if s.verifier != nil {
		held, err := s.verifier.VerifyOwnership(ctx, item.MintAddress, item.OwnerAddress)
		if err != nil {
			// ledger unavailable, serve the stored row
			logger.WarnCtx(ctx, "on-read ownership check failed",
				zap.String("mint", mint), zap.Error(err))
		} else if !held {
			if err := s.store.DeleteItemsAndRecompute(ctx, []schema.IndexedItem{*item}); err != nil {
				abortInternal(c, err)
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "nft no longer held by indexed owner"})
			return
		}
	}

	c.JSON(http.StatusOK, toItemResponse(*item))
}

// handleLevel returns the stored aggregate, or the zero progression when
// the wallet holds nothing
func (s *Server) handleLevel(c *gin.Context) {
	owner := c.Param("owner")
	agg, err := s.store.GetAggregate(c.Request.Context(), owner)
	if err != nil {
		abortInternal(c, err)
		return
	}

	resp := levelResponse{OwnerAddress: owner, Level: 1}
	if agg != nil {
		resp.Level = agg.Level
		resp.Experience = agg.Experience
		resp.NextLevelAt = agg.NextLevelAt
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleBuybacks(c *gin.Context) {
	limit := parseIntQuery(c, "limit", defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := parseIntQuery(c, "offset", 0)

	events, err := s.store.ListBuybackEvents(c.Request.Context(), limit, offset)
	if err != nil {
		abortInternal(c, err)
		return
	}

	resp := make([]buybackResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, buybackResponse{
			TxSignature: ev.TxSignature,
			AmountSol:   ev.AmountSol,
			TokenAmount: ev.TokenAmount,
			OccurredAt:  ev.OccurredAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"buybacks": resp, "count": len(resp)})
}

func (s *Server) handleStatistics(c *gin.Context) {
	stats, err := s.store.GetStatistics(c.Request.Context())
	if err != nil {
		abortInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalBuybacks":    stats.TotalBuybacks,
		"totalSolSwapped":  stats.TotalSolSwapped,
		"totalTokensBurnt": stats.TotalTokensBurnt,
	})
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func abortInternal(c *gin.Context, err error) {
	logger.ErrorCtx(c.Request.Context(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
