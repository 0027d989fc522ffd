package solana_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-de-bug/ascii-art-indexer/internal/adapter"
	"github.com/max-de-bug/ascii-art-indexer/internal/domain"
	"github.com/max-de-bug/ascii-art-indexer/internal/mocks"
	"github.com/max-de-bug/ascii-art-indexer/internal/solana"
)

const testRPCURL = "https://rpc.test"

func TestGetSignaturesForAddressFiltersFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Post(gomock.Any(), testRPCURL, gomock.Any()).
		Return([]byte(`{"jsonrpc":"2.0","id":1,"result":[
			{"signature":"sig-ok","slot":100,"blockTime":1700000000,"err":null},
			{"signature":"sig-failed","slot":101,"err":{"InstructionError":[0,"Custom"]}},
			{"signature":"sig-no-time","slot":102,"err":null}
		]}`), nil)

	client := solana.NewRPCClient(testRPCURL, httpClient, 100)
	infos, err := client.GetSignaturesForAddress(context.Background(), "Program111", 5)

	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "sig-ok", infos[0].Signature)
	assert.Equal(t, uint64(100), infos[0].Slot)
	require.NotNil(t, infos[0].BlockTime)
	assert.Equal(t, int64(1700000000), infos[0].BlockTime.Unix())
	assert.Equal(t, "sig-no-time", infos[1].Signature)
	assert.Nil(t, infos[1].BlockTime)
}

func TestGetTransactionNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Post(gomock.Any(), testRPCURL, gomock.Any()).
		Return([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`), nil)

	client := solana.NewRPCClient(testRPCURL, httpClient, 100)
	tx, err := client.GetTransaction(context.Background(), "sig-unknown")

	require.NoError(t, err)
	assert.Nil(t, tx)
}

func TestGetTransactionParsesMeta(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Post(gomock.Any(), testRPCURL, gomock.Any()).
		Return([]byte(`{"jsonrpc":"2.0","id":1,"result":{
			"slot":200,
			"blockTime":1700000050,
			"meta":{
				"err":null,
				"logMessages":["Program X invoke [1]","Program X success"],
				"preBalances":[10,0],
				"postBalances":[5,100]
			},
			"transaction":{
				"signatures":["sig-1"],
				"message":{"accountKeys":["Key1","Key2"]}
			}
		}}`), nil)

	client := solana.NewRPCClient(testRPCURL, httpClient, 100)
	tx, err := client.GetTransaction(context.Background(), "sig-1")

	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, "sig-1", tx.Signature)
	assert.Equal(t, uint64(200), tx.Slot)
	assert.False(t, tx.Failed)
	assert.Equal(t, []string{"Key1", "Key2"}, tx.AccountKeys)
	assert.Equal(t, []uint64{10, 0}, tx.PreBalances)
	assert.Equal(t, []uint64{5, 100}, tx.PostBalances)
	assert.Len(t, tx.LogMessages, 2)
}

func TestGetTokenAccountState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Post(gomock.Any(), testRPCURL, gomock.Any()).
		Return([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":[{
			"pubkey":"TokenAcc1",
			"account":{"data":{"parsed":{"info":{
				"owner":"Owner1",
				"state":"initialized",
				"tokenAmount":{"amount":"1","decimals":0}
			}}}}
		}]}}`), nil)

	client := solana.NewRPCClient(testRPCURL, httpClient, 100)
	state, err := client.GetTokenAccountState(context.Background(), "Owner1", "Mint1")

	require.NoError(t, err)
	assert.True(t, state.HoldsExactlyOne("Owner1"))
	assert.False(t, state.HoldsExactlyOne("SomeoneElse"))
}

func TestGetTokenAccountStateMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Post(gomock.Any(), testRPCURL, gomock.Any()).
		Return([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":[]}}`), nil)

	client := solana.NewRPCClient(testRPCURL, httpClient, 100)
	state, err := client.GetTokenAccountState(context.Background(), "Owner1", "Mint1")

	require.NoError(t, err)
	assert.False(t, state.Exists)
	assert.False(t, state.HoldsExactlyOne("Owner1"))
}

func TestCallClassifiesRateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Post(gomock.Any(), testRPCURL, gomock.Any()).
		Return(nil, &adapter.StatusError{Code: http.StatusTooManyRequests, Body: "slow down"})

	client := solana.NewRPCClient(testRPCURL, httpClient, 100)
	err := client.GetHealth(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestCallSurfacesRPCError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Post(gomock.Any(), testRPCURL, gomock.Any()).
		Return([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`), nil)

	client := solana.NewRPCClient(testRPCURL, httpClient, 100)
	_, err := client.GetTransaction(context.Background(), "sig")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
}
