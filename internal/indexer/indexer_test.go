package indexer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-de-bug/ascii-art-indexer/internal/config"
	"github.com/max-de-bug/ascii-art-indexer/internal/domain"
	"github.com/max-de-bug/ascii-art-indexer/internal/mocks"
	"github.com/max-de-bug/ascii-art-indexer/internal/solana"
	"github.com/max-de-bug/ascii-art-indexer/internal/store/schema"
)

const testProgramID = "AsciiArtPr0gram1111111111111111111111111111"

type testHarness struct {
	ix         *Indexer
	client     *mocks.MockSolanaClient
	subscriber *mocks.MockSubscriber
	store      *mocks.MockStore
	clock      *mocks.MockClock
}

func newTestHarness(t *testing.T, ctrl *gomock.Controller) *testHarness {
	cfg := &config.IndexerConfig{
		Solana: config.SolanaConfig{
			ProgramID:  testProgramID,
			MaxRetries: 1,
			RetryDelay: time.Millisecond,
		},
		MaxConcurrent:         1,
		CacheCapacity:         1000,
		CacheRetention:        24 * time.Hour,
		OwnershipCheckRetries: 0,
		OwnershipCheckDelay:   time.Millisecond,
	}

	client := mocks.NewMockSolanaClient(ctrl)
	subscriber := mocks.NewMockSubscriber(ctrl)
	st := mocks.NewMockStore(ctrl)
	clock := mocks.NewMockClock(ctrl)

	clock.EXPECT().Now().Return(time.Unix(1700000500, 0).UTC()).AnyTimes()
	clock.EXPECT().Since(gomock.Any()).Return(time.Minute).AnyTimes()
	clock.EXPECT().Sleep(gomock.Any()).AnyTimes()

	return &testHarness{
		ix:         New(cfg, client, subscriber, st, clock),
		client:     client,
		subscriber: subscriber,
		store:      st,
		clock:      clock,
	}
}

// buildMintTx builds a transaction whose logs carry a structured mint event
func buildMintTx(signature string) *solana.ParsedTransaction {
	disc := []byte{62, 73, 213, 84, 217, 70, 37, 55}
	var buf bytes.Buffer
	buf.Write(disc)
	buf.Write(make([]byte, 32)) // minter, the system program address in base58
	buf.Write(make([]byte, 32)) // mint
	for _, s := range []string{"Art #1", "ASCII", "https://example.com/1"} {
		_ = binary.Write(&buf, binary.LittleEndian, uint32(len(s)))
		buf.WriteString(s)
	}
	_ = binary.Write(&buf, binary.LittleEndian, int64(1700000000))

	return &solana.ParsedTransaction{
		Signature: signature,
		LogMessages: []string{
			"Program " + testProgramID + " invoke [1]",
			"Program data: " + base64.StdEncoding.EncodeToString(buf.Bytes()),
			"Program " + testProgramID + " success",
		},
	}
}

func buildBuybackTx(signature string) *solana.ParsedTransaction {
	disc := []byte{73, 203, 66, 140, 17, 155, 53, 84}
	var buf bytes.Buffer
	buf.Write(disc)
	for _, v := range []int64{2_000_000_000, 777, 1700000000} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	return &solana.ParsedTransaction{
		Signature: signature,
		LogMessages: []string{
			"Program " + testProgramID + " invoke [1]",
			"Program data: " + base64.StdEncoding.EncodeToString(buf.Bytes()),
			"Program " + testProgramID + " success",
		},
	}
}

const zeroAddress = "11111111111111111111111111111111"

func TestProcessSignatureIndexesMint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := newTestHarness(t, ctrl)
	ctx := context.Background()

	h.store.EXPECT().IsSignatureProcessed(ctx, "sig-1").Return(false, nil)
	h.client.EXPECT().GetTransaction(ctx, "sig-1").Return(buildMintTx("sig-1"), nil)
	h.client.EXPECT().GetTokenAccountState(ctx, zeroAddress, zeroAddress).
		Return(domain.TokenAccountState{Exists: true, Owner: zeroAddress, Amount: 1, Decimals: 0}, nil)

	var saved *schema.IndexedItem
	h.store.EXPECT().SaveItem(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, item *schema.IndexedItem) (bool, error) {
			saved = item
			return true, nil
		})

	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-1"})

	require.NotNil(t, saved)
	assert.Equal(t, zeroAddress, saved.MintAddress)
	assert.Equal(t, zeroAddress, saved.OwnerAddress)
	assert.Equal(t, "Art #1", saved.Name)
	assert.Equal(t, "sig-1", saved.TxSignature)
	assert.False(t, saved.LowConfidence)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), saved.MintedAt)

	status := h.ix.Status()
	assert.Equal(t, int64(1), status.ProcessedTransactions)
	assert.Equal(t, int64(0), status.TotalErrors)
	require.NotNil(t, status.LastProcessedAt)
}

func TestProcessSignatureSkipsCachedSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := newTestHarness(t, ctrl)
	ctx := context.Background()

	h.store.EXPECT().IsSignatureProcessed(ctx, "sig-1").Return(false, nil)
	h.client.EXPECT().GetTransaction(ctx, "sig-1").Return(buildBuybackTx("sig-1"), nil)
	h.store.EXPECT().SaveBuybackEvent(ctx, gomock.Any()).Return(true, nil)

	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-1"})

	// no further expectations: the cached signature short-circuits
	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-1"})
}

func TestProcessSignatureSkipsAlreadyPersisted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := newTestHarness(t, ctrl)
	ctx := context.Background()

	h.store.EXPECT().IsSignatureProcessed(ctx, "sig-1").Return(true, nil)

	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-1"})

	// the store gate result is cached, the second pass hits no collaborator
	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-1"})
}

func TestProcessSignatureIgnoresUnknownTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := newTestHarness(t, ctrl)
	ctx := context.Background()

	tx := &solana.ParsedTransaction{
		Signature:   "sig-1",
		LogMessages: []string{"Program SomeOther111 invoke [1]", "Program SomeOther111 success"},
	}
	h.store.EXPECT().IsSignatureProcessed(ctx, "sig-1").Return(false, nil)
	h.client.EXPECT().GetTransaction(ctx, "sig-1").Return(tx, nil)

	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-1"})

	// eventless transactions are cached so they are not refetched
	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-1"})
	assert.Equal(t, int64(0), h.ix.Status().ProcessedTransactions)
}

func TestProcessSignatureNotFoundIsRetriedLater(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := newTestHarness(t, ctrl)
	ctx := context.Background()

	h.store.EXPECT().IsSignatureProcessed(ctx, "sig-1").Return(false, nil).Times(2)
	h.client.EXPECT().GetTransaction(ctx, "sig-1").Return(nil, nil).Times(2)

	// an unknown signature is not cached, the next notification retries it
	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-1"})
	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-1"})
}

func TestProcessSignatureBuyback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := newTestHarness(t, ctrl)
	ctx := context.Background()

	h.store.EXPECT().IsSignatureProcessed(ctx, "sig-bb").Return(false, nil)
	h.client.EXPECT().GetTransaction(ctx, "sig-bb").Return(buildBuybackTx("sig-bb"), nil)

	var saved *schema.BuybackEvent
	h.store.EXPECT().SaveBuybackEvent(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, ev *schema.BuybackEvent) (bool, error) {
			saved = ev
			return true, nil
		})

	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-bb"})

	require.NotNil(t, saved)
	assert.Equal(t, int64(2_000_000_000), saved.AmountSol)
	assert.Equal(t, int64(777), saved.TokenAmount)
	assert.Equal(t, "sig-bb", saved.TxSignature)
}

func TestProcessSignatureSkipsUnverifiableLowConfidenceMint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := newTestHarness(t, ctrl)
	ctx := context.Background()

	tx := &solana.ParsedTransaction{
		Signature: "sig-fb",
		LogMessages: []string{
			"Program " + testProgramID + " invoke [1]",
			"Program log: Minted ASCII NFT: X (Y), URI: u",
			"Program " + testProgramID + " success",
		},
		AccountKeys:  []string{"Minter1111", "FreshMint1111"},
		PreBalances:  []uint64{10, 0},
		PostBalances: []uint64{5, 100},
	}

	h.store.EXPECT().IsSignatureProcessed(ctx, "sig-fb").Return(false, nil)
	h.client.EXPECT().GetTransaction(ctx, "sig-fb").Return(tx, nil)
	h.client.EXPECT().GetTokenAccountState(ctx, "Minter1111", "FreshMint1111").
		Return(domain.TokenAccountState{}, assert.AnError)

	// SaveItem must not be called for a heuristic match the ledger could
	// not be asked about
	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-fb"})
	assert.Equal(t, int64(0), h.ix.Status().ProcessedTransactions)
}

func TestProcessSignatureDropsMintOnOwnershipMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := newTestHarness(t, ctrl)
	ctx := context.Background()

	h.store.EXPECT().IsSignatureProcessed(ctx, "sig-mm").Return(false, nil)
	h.client.EXPECT().GetTransaction(ctx, "sig-mm").Return(buildMintTx("sig-mm"), nil)
	h.client.EXPECT().GetTokenAccountState(ctx, zeroAddress, zeroAddress).
		Return(domain.TokenAccountState{}, nil)

	// the ledger answered and no account holds the token: SaveItem must
	// not be called even for a structured event
	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-mm"})
	assert.Equal(t, int64(0), h.ix.Status().ProcessedTransactions)

	// the dropped signature is cached, the next notification is a no-op
	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-mm"})
}

func TestProcessSignaturePersistsMintWhenOwnershipCheckUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := newTestHarness(t, ctrl)
	ctx := context.Background()

	h.store.EXPECT().IsSignatureProcessed(ctx, "sig-rpc").Return(false, nil)
	h.client.EXPECT().GetTransaction(ctx, "sig-rpc").Return(buildMintTx("sig-rpc"), nil)
	h.client.EXPECT().GetTokenAccountState(ctx, zeroAddress, zeroAddress).
		Return(domain.TokenAccountState{}, assert.AnError)

	var saved *schema.IndexedItem
	h.store.EXPECT().SaveItem(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, item *schema.IndexedItem) (bool, error) {
			saved = item
			return true, nil
		})

	// a structured event is indexed best-effort under the minter when the
	// check itself is unavailable
	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-rpc"})

	require.NotNil(t, saved)
	assert.Equal(t, zeroAddress, saved.OwnerAddress)
	assert.False(t, saved.LowConfidence)
}

func TestProcessSignatureDuplicateSaveIsNotCounted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := newTestHarness(t, ctrl)
	ctx := context.Background()

	h.store.EXPECT().IsSignatureProcessed(ctx, "sig-dup").Return(false, nil)
	h.client.EXPECT().GetTransaction(ctx, "sig-dup").Return(buildBuybackTx("sig-dup"), nil)
	h.store.EXPECT().SaveBuybackEvent(ctx, gomock.Any()).Return(false, nil)

	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-dup"})

	assert.Equal(t, int64(0), h.ix.Status().ProcessedTransactions)
	// but the signature is cached so it is not refetched
	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-dup"})
}

func TestHealthProbeFailureRecreatesSubscription(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := newTestHarness(t, ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Unix(1700000500, 0)
		return ch
	}).AnyTimes()

	subscribed := make(chan struct{}, 2)
	h.subscriber.EXPECT().Subscribe(gomock.Any(), gomock.Any()).
		DoAndReturn(func(subCtx context.Context, _ chan<- domain.SignatureInfo) error {
			subscribed <- struct{}{}
			<-subCtx.Done()
			return domain.ErrSubscriptionClosed
		}).Times(2)

	out := make(chan domain.SignatureInfo, 1)
	loopDone := make(chan struct{})
	go func() {
		h.ix.subscriptionLoop(ctx, out)
		close(loopDone)
	}()

	<-subscribed

	// a failed probe must drop the live subscription and redial
	h.client.EXPECT().GetHealth(gomock.Any()).Return(assert.AnError)
	h.ix.probeNodeHealth(ctx)

	select {
	case <-subscribed:
	case <-time.After(time.Second):
		t.Fatal("subscription was not recreated after failed health probe")
	}

	cancel()
	<-loopDone
}

func TestProcessSignatureRetriesExhaustedIsLoggedNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := newTestHarness(t, ctrl)
	ctx := context.Background()

	h.store.EXPECT().IsSignatureProcessed(ctx, "sig-err").Return(false, nil)
	h.client.EXPECT().GetTransaction(ctx, "sig-err").
		Return(nil, assert.AnError)

	h.ix.processSignature(ctx, domain.SignatureInfo{Signature: "sig-err"})

	status := h.ix.Status()
	assert.Equal(t, int64(1), status.TotalErrors)
	assert.Equal(t, int64(0), status.ProcessedTransactions)
}
