package chain

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/rpc"
)

// WithRetry runs fn until it succeeds, doubling the delay after each failure.
// It gives up after maxRetries retries or when ctx is done.
func WithRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = baseDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = baseDelay << 16
	policy.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxRetries)), ctx)
	return backoff.Retry(func() error { return fn(ctx) }, b)
}

// RetryCaller retries failed calls on an underlying Caller.
type RetryCaller struct {
	Caller     Caller
	MaxRetries int
	BaseDelay  time.Duration
}

// CallContract implements Caller. JSON-RPC error responses, such as reverts, are
// returned without retrying.
func (r *RetryCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := WithRetry(ctx, r.MaxRetries, r.BaseDelay, func(ctx context.Context) error {
		var err error
		out, err = r.Caller.CallContract(ctx, msg, blockNumber)
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) {
			return backoff.Permanent(err)
		}
		return err
	})
	return out, err
}
