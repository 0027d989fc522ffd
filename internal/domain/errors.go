package domain

import "errors"

var (
	// ErrSubscriptionClosed is returned when the log subscription terminates
	ErrSubscriptionClosed = errors.New("log subscription closed")

	// ErrRateLimited is returned when the RPC node rejects a call with 429
	ErrRateLimited = errors.New("rpc rate limited")

	// ErrRetriesExhausted is returned when an RPC call fails after all attempts
	ErrRetriesExhausted = errors.New("retries exhausted")
)
