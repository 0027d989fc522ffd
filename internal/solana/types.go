package solana

import "encoding/json"

// System accounts that never hold a minted token. The fallback decoder
// skips them when scanning balance deltas for the mint account.
var wellKnownPrograms = map[string]struct{}{
	"11111111111111111111111111111111":             {}, // system program
	"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA":  {}, // token program
	"ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL": {}, // associated token account program
	"metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s":  {}, // token metadata program
	"ComputeBudget111111111111111111111111111111":  {}, // compute budget program
	"SysvarRent111111111111111111111111111111111":  {}, // rent sysvar
}

// IsWellKnownProgram reports whether the address is a system account that
// cannot be a minted NFT account
func IsWellKnownProgram(address string) bool {
	_, ok := wellKnownPrograms[address]
	return ok
}

// ParsedTransaction is the subset of a confirmed transaction the decoder
// needs: log messages, static account keys and lamport balance deltas.
type ParsedTransaction struct {
	Signature    string
	Slot         uint64
	BlockTime    *int64
	Failed       bool
	LogMessages  []string
	AccountKeys  []string
	PreBalances  []uint64
	PostBalances []uint64
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type signatureResult struct {
	Signature string      `json:"signature"`
	Slot      uint64      `json:"slot"`
	BlockTime *int64      `json:"blockTime"`
	Err       interface{} `json:"err"`
}

type transactionResult struct {
	Slot        uint64           `json:"slot"`
	BlockTime   *int64           `json:"blockTime"`
	Meta        *transactionMeta `json:"meta"`
	Transaction struct {
		Signatures []string `json:"signatures"`
		Message    struct {
			AccountKeys []string `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
}

type transactionMeta struct {
	Err          interface{} `json:"err"`
	LogMessages  []string    `json:"logMessages"`
	PreBalances  []uint64    `json:"preBalances"`
	PostBalances []uint64    `json:"postBalances"`
}

type tokenAccountsResult struct {
	Value []struct {
		Pubkey  string `json:"pubkey"`
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						Owner       string `json:"owner"`
						State       string `json:"state"`
						TokenAmount struct {
							Amount   string `json:"amount"`
							Decimals uint8  `json:"decimals"`
						} `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}
