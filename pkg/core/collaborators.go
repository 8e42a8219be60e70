package core

import (
	"context"

	"github.com/holiman/uint256"
)

// AntiBot is an opaque allow/deny oracle consulted before a transfer.
type AntiBot interface {
	Allow(ctx context.Context, from, to Address, amount *uint256.Int) (bool, error)
}

// TransferObserver is implemented by anti-bot validators that keep per-address
// history. Observe is called once a consulted transfer has been committed.
type TransferObserver interface {
	Observe(ctx context.Context, from, to Address, amount *uint256.Int)
}

// PairResolver locates (creating if necessary) the AMM pair of token against
// the wrapped native asset. Implemented by the AMM router.
type PairResolver interface {
	ResolvePair(ctx context.Context, token Address) (Address, error)
}

// Distributor receives the reflection portion of a taxed transfer after it has
// been credited to the token's pool. It runs inside the transfer: an error aborts
// the transfer. Implementations must not call back into the token.
type Distributor interface {
	Distribute(ctx context.Context, split TaxSplit) error
}

// Direction classifies a transfer relative to the AMM pair.
type Direction int

const (
	// DirectionNeutral is a wallet-to-wallet transfer.
	DirectionNeutral Direction = iota
	// DirectionBuy moves tokens out of the pair.
	DirectionBuy
	// DirectionSell moves tokens into the pair.
	DirectionSell
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	default:
		return "neutral"
	}
}

// TaxSplit is the outcome of the tax stage for one transfer.
type TaxSplit struct {
	Direction  Direction
	From       Address
	To         Address
	Gross      *uint256.Int
	Marketing  *uint256.Int
	Reflection *uint256.Int
	Net        *uint256.Int
}

// Tax returns Marketing + Reflection.
func (s TaxSplit) Tax() *uint256.Int {
	return new(uint256.Int).Add(s.Marketing, s.Reflection)
}
