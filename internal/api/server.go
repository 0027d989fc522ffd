// Package api serves the read-only HTTP surface over the indexed
// projection.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/max-de-bug/ascii-art-indexer/internal/config"
	"github.com/max-de-bug/ascii-art-indexer/internal/store"
)

// OwnershipVerifier re-checks on-chain ownership for single-item reads
type OwnershipVerifier interface {
	VerifyOwnership(ctx context.Context, mint, owner string) (bool, error)
}

// Server is the HTTP API over the store
type Server struct {
	cfg      *config.APIConfig
	store    store.Store
	verifier OwnershipVerifier
	engine   *gin.Engine
	http     *http.Server
}

// NewServer builds the gin engine with all routes registered. verifier may
// be nil, in which case single-item reads skip the on-read ownership check.
func NewServer(cfg *config.APIConfig, st store.Store, verifier OwnershipVerifier) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		store:    st,
		verifier: verifier,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) == 1 && cfg.Server.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", s.handleHealth)

	v1 := r.Group("/v1")
	{
		v1.GET("/status", s.handleStatus)
		v1.GET("/nfts/owner/:owner", s.handleItemsByOwner)
		v1.GET("/nfts/:mint", s.handleItemByMint)
		v1.GET("/levels/:owner", s.handleLevel)
		v1.GET("/buybacks", s.handleBuybacks)
		v1.GET("/buybacks/statistics", s.handleStatistics)
	}

	s.engine = r
	return s
}

// Engine exposes the router for tests
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until the context is cancelled, then drains connections
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
