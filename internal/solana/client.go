package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/max-de-bug/ascii-art-indexer/internal/adapter"
	"github.com/max-de-bug/ascii-art-indexer/internal/domain"
)

// Client defines the read operations against a Solana RPC node
//
//go:generate mockgen -source=client.go -destination=../mocks/solana.go -package=mocks -mock_names=Client=MockSolanaClient
type Client interface {
	// GetSignaturesForAddress returns the most recent transaction
	// signatures mentioning the address, newest first
	GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]domain.SignatureInfo, error)

	// GetTransaction fetches a confirmed transaction, nil when the node
	// does not know the signature
	GetTransaction(ctx context.Context, signature string) (*ParsedTransaction, error)

	// GetTokenAccountState returns the current token account state for a
	// (owner, mint) pair
	GetTokenAccountState(ctx context.Context, owner, mint string) (domain.TokenAccountState, error)

	// GetHealth probes node liveness
	GetHealth(ctx context.Context) error
}

// RPCClient talks JSON-RPC 2.0 to a Solana node over HTTP POST.
// All calls share a token-bucket limiter to pace requests against
// public node rate limits.
type RPCClient struct {
	url     string
	http    adapter.HTTPClient
	limiter *rate.Limiter
	nextID  atomic.Uint64
}

// NewRPCClient creates a client for the given RPC endpoint.
// requestsPerSecond bounds the outbound call rate.
func NewRPCClient(url string, httpClient adapter.HTTPClient, requestsPerSecond float64) *RPCClient {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	return &RPCClient{
		url:     url,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (c *RPCClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	respBody, err := c.http.Post(ctx, c.url, body)
	if err != nil {
		var statusErr *adapter.StatusError
		if errors.As(err, &statusErr) && statusErr.IsRateLimited() {
			return fmt.Errorf("%w: %s %s", domain.ErrRateLimited, method, statusErr.Body)
		}
		return fmt.Errorf("rpc call %s failed: %w", method, err)
	}

	var resp rpcResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("failed to decode rpc response for %s: %w", method, err)
	}
	if resp.Error != nil {
		if resp.Error.Code == -32429 {
			return fmt.Errorf("%w: %s", domain.ErrRateLimited, resp.Error.Message)
		}
		return fmt.Errorf("rpc error for %s: %d %s", method, resp.Error.Code, resp.Error.Message)
	}

	if result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("failed to decode rpc result for %s: %w", method, err)
		}
	}
	return nil
}

// GetSignaturesForAddress returns recent signatures mentioning the address,
// newest first. Failed transactions are filtered out.
func (c *RPCClient) GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]domain.SignatureInfo, error) {
	var results []signatureResult
	err := c.call(ctx, "getSignaturesForAddress", []interface{}{
		address,
		map[string]interface{}{"limit": limit, "commitment": "confirmed"},
	}, &results)
	if err != nil {
		return nil, err
	}

	infos := make([]domain.SignatureInfo, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		info := domain.SignatureInfo{Signature: r.Signature, Slot: r.Slot}
		if r.BlockTime != nil {
			t := timeFromUnix(*r.BlockTime)
			info.BlockTime = &t
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// GetTransaction fetches a confirmed transaction with its log messages and
// balance deltas, nil when the node does not know the signature
func (c *RPCClient) GetTransaction(ctx context.Context, signature string) (*ParsedTransaction, error) {
	var result *transactionResult
	err := c.call(ctx, "getTransaction", []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "json",
			"commitment":                     "confirmed",
			"maxSupportedTransactionVersion": 0,
		},
	}, &result)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	tx := &ParsedTransaction{
		Signature:   signature,
		Slot:        result.Slot,
		BlockTime:   result.BlockTime,
		AccountKeys: result.Transaction.Message.AccountKeys,
	}
	if result.Meta != nil {
		tx.Failed = result.Meta.Err != nil
		tx.LogMessages = result.Meta.LogMessages
		tx.PreBalances = result.Meta.PreBalances
		tx.PostBalances = result.Meta.PostBalances
	}
	return tx, nil
}

// GetTokenAccountState returns the token account state for an (owner, mint)
// pair. A missing account reports Exists == false, never an error.
func (c *RPCClient) GetTokenAccountState(ctx context.Context, owner, mint string) (domain.TokenAccountState, error) {
	var result tokenAccountsResult
	err := c.call(ctx, "getTokenAccountsByOwner", []interface{}{
		owner,
		map[string]interface{}{"mint": mint},
		map[string]interface{}{"encoding": "jsonParsed", "commitment": "confirmed"},
	}, &result)
	if err != nil {
		return domain.TokenAccountState{}, err
	}
	if len(result.Value) == 0 {
		return domain.TokenAccountState{}, nil
	}

	// a wallet holds at most one associated token account per mint in
	// practice, take the first funded one
	for _, acc := range result.Value {
		info := acc.Account.Data.Parsed.Info
		amount, err := strconv.ParseUint(info.TokenAmount.Amount, 10, 64)
		if err != nil {
			return domain.TokenAccountState{}, fmt.Errorf("failed to parse token amount %q: %w", info.TokenAmount.Amount, err)
		}
		state := domain.TokenAccountState{
			Exists:   true,
			Closed:   info.State == "closed",
			Owner:    info.Owner,
			Amount:   amount,
			Decimals: info.TokenAmount.Decimals,
		}
		if state.Amount > 0 {
			return state, nil
		}
	}

	info := result.Value[0].Account.Data.Parsed.Info
	return domain.TokenAccountState{
		Exists:   true,
		Closed:   info.State == "closed",
		Owner:    info.Owner,
		Decimals: info.TokenAmount.Decimals,
	}, nil
}

func timeFromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// GetHealth probes node liveness via the getHealth RPC
func (c *RPCClient) GetHealth(ctx context.Context) error {
	var status string
	if err := c.call(ctx, "getHealth", nil, &status); err != nil {
		return err
	}
	if status != "ok" {
		return fmt.Errorf("node reported unhealthy status %q", status)
	}
	return nil
}
