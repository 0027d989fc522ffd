package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-de-bug/ascii-art-indexer/internal/config"
	"github.com/max-de-bug/ascii-art-indexer/internal/mocks"
	"github.com/max-de-bug/ascii-art-indexer/internal/store"
	"github.com/max-de-bug/ascii-art-indexer/internal/store/schema"
)

type stubVerifier struct {
	held bool
	err  error
}

func (v *stubVerifier) VerifyOwnership(context.Context, string, string) (bool, error) {
	return v.held, v.err
}

func testConfig() *config.APIConfig {
	return &config.APIConfig{
		Debug: true,
		Server: config.ServerConfig{
			Host:        "127.0.0.1",
			Port:        0,
			CORSOrigins: []string{"*"},
		},
	}
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.Engine().ServeHTTP(w, req)
	return w
}

func testItem(mint, owner string) *schema.IndexedItem {
	return &schema.IndexedItem{
		ID:             uuid.New(),
		MintAddress:    mint,
		OwnerAddress:   owner,
		Name:           "Art",
		Symbol:         "ASCII",
		URI:            "https://example.com/1",
		TxSignature:    "sig-" + mint,
		MintedAt:       time.Unix(1700000000, 0).UTC(),
		LastVerifiedAt: time.Unix(1700000100, 0).UTC(),
	}
}

func TestHealthz(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := NewServer(testConfig(), mocks.NewMockStore(ctrl), nil)
	w := doRequest(s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestItemsByOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	st.EXPECT().GetItemsByOwner(gomock.Any(), "Owner1").
		Return([]schema.IndexedItem{*testItem("Mint1", "Owner1"), *testItem("Mint2", "Owner1")}, nil)

	s := NewServer(testConfig(), st, nil)
	w := doRequest(s, http.MethodGet, "/v1/nfts/owner/Owner1")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Owner string         `json:"owner"`
		NFTs  []itemResponse `json:"nfts"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Owner1", resp.Owner)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Mint1", resp.NFTs[0].MintAddress)
}

func TestItemByMintNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	st.EXPECT().GetItemByMint(gomock.Any(), "MintX").Return(nil, nil)

	s := NewServer(testConfig(), st, nil)
	w := doRequest(s, http.MethodGet, "/v1/nfts/MintX")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestItemByMintConfirmedOwnership(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	st.EXPECT().GetItemByMint(gomock.Any(), "Mint1").Return(testItem("Mint1", "Owner1"), nil)

	s := NewServer(testConfig(), st, &stubVerifier{held: true})
	w := doRequest(s, http.MethodGet, "/v1/nfts/Mint1")

	require.Equal(t, http.StatusOK, w.Code)
	var resp itemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Owner1", resp.OwnerAddress)
}

func TestItemByMintSelfHealsOnLostOwnership(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	item := testItem("Mint1", "Owner1")
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().GetItemByMint(gomock.Any(), "Mint1").Return(item, nil)
	st.EXPECT().DeleteItemsAndRecompute(gomock.Any(), []schema.IndexedItem{*item}).Return(nil)

	s := NewServer(testConfig(), st, &stubVerifier{held: false})
	w := doRequest(s, http.MethodGet, "/v1/nfts/Mint1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestItemByMintServesStoredRowWhenLedgerUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	st.EXPECT().GetItemByMint(gomock.Any(), "Mint1").Return(testItem("Mint1", "Owner1"), nil)

	s := NewServer(testConfig(), st, &stubVerifier{err: assert.AnError})
	w := doRequest(s, http.MethodGet, "/v1/nfts/Mint1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLevelDefaultsWhenAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	st.EXPECT().GetAggregate(gomock.Any(), "Owner1").Return(nil, nil)

	s := NewServer(testConfig(), st, nil)
	w := doRequest(s, http.MethodGet, "/v1/levels/Owner1")

	require.Equal(t, http.StatusOK, w.Code)
	var resp levelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Level)
	assert.Equal(t, int64(0), resp.Experience)
}

func TestLevelReturnsAggregate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	st.EXPECT().GetAggregate(gomock.Any(), "Owner1").
		Return(&schema.LevelAggregate{OwnerAddress: "Owner1", Level: 4, Experience: 12, NextLevelAt: 20}, nil)

	s := NewServer(testConfig(), st, nil)
	w := doRequest(s, http.MethodGet, "/v1/levels/Owner1")

	require.Equal(t, http.StatusOK, w.Code)
	var resp levelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Level)
	assert.Equal(t, int64(12), resp.Experience)
	assert.Equal(t, int64(20), resp.NextLevelAt)
}

func TestBuybacksPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	st.EXPECT().ListBuybackEvents(gomock.Any(), 10, 5).
		Return([]schema.BuybackEvent{{TxSignature: "sig-1", AmountSol: 100, TokenAmount: 7}}, nil)

	s := NewServer(testConfig(), st, nil)
	w := doRequest(s, http.MethodGet, "/v1/buybacks?limit=10&offset=5")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sig-1")
}

func TestBuybacksClampsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	st.EXPECT().ListBuybackEvents(gomock.Any(), maxPageLimit, 0).Return(nil, nil)

	s := NewServer(testConfig(), st, nil)
	w := doRequest(s, http.MethodGet, "/v1/buybacks?limit=99999")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatistics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	st.EXPECT().GetStatistics(gomock.Any()).
		Return(&store.Statistics{TotalBuybacks: 3, TotalSolSwapped: 4_500_000_000, TotalTokensBurnt: 900}, nil)

	s := NewServer(testConfig(), st, nil)
	w := doRequest(s, http.MethodGet, "/v1/buybacks/statistics")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp["totalBuybacks"])
	assert.Equal(t, int64(4_500_000_000), resp["totalSolSwapped"])
}

func TestStatusReportsProjectionTotals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	st.EXPECT().GetStatistics(gomock.Any()).
		Return(&store.Statistics{TotalItems: 10, DistinctOwners: 4}, nil)

	s := NewServer(testConfig(), st, nil)
	w := doRequest(s, http.MethodGet, "/v1/status")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalItems":10`)
}
