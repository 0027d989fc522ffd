package reconciler

import (
	"context"

	"github.com/max-de-bug/ascii-art-indexer/internal/solana"
)

// Verifier answers whether an indexed owner still holds a mint on chain
type Verifier struct {
	client solana.Client
	retry  solana.RetryPolicy
}

// NewVerifier creates a verifier over an RPC client
func NewVerifier(client solana.Client, retry solana.RetryPolicy) *Verifier {
	return &Verifier{client: client, retry: retry}
}

// VerifyOwnership checks on chain that the owner still holds exactly one
// unit of the mint
func (v *Verifier) VerifyOwnership(ctx context.Context, mint, owner string) (bool, error) {
	held := false
	err := v.retry.Do(ctx, "getTokenAccountsByOwner", func() error {
		state, err := v.client.GetTokenAccountState(ctx, owner, mint)
		if err != nil {
			return err
		}
		held = state.HoldsExactlyOne(owner)
		return nil
	})
	if err != nil {
		return false, err
	}
	return held, nil
}
