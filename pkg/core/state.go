package core

import "github.com/holiman/uint256"

// Holding is one balance in a TokenState.
type Holding struct {
	Address Address
	Amount  *uint256.Int
}

// Approval is one allowance in a TokenState.
type Approval struct {
	Owner   Address
	Spender Address
	Amount  *uint256.Int
}

// TokenState is a complete, serializable picture of an initialized token.
type TokenState struct {
	Config         TokenConfig
	Taxes          TaxRates
	Limits         Limits
	TradingEnabled bool
	Owner          Address
	Balances       []Holding
	Allowances     []Approval
}

// Supply sums the balances. Used to verify restored state.
func (s TokenState) Supply() (*uint256.Int, bool) {
	total := Zero()
	for _, h := range s.Balances {
		if _, overflow := total.AddOverflow(total, h.Amount); overflow {
			return nil, false
		}
	}
	return total, true
}
