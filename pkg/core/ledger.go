package core

import "github.com/holiman/uint256"

// Revertible is state an execution environment can roll back when an enclosing
// call fails. Snapshot ids are only valid until reverted or discarded.
type Revertible interface {
	Snapshot() int
	RevertToSnapshot(id int)
	DiscardSnapshot(id int)
}

// Ledger stores balances and allowances. It performs bookkeeping only: the token
// decides whether and how much moves.
type Ledger interface {
	Revertible

	BalanceOf(addr Address) *uint256.Int
	AddBalance(addr Address, amount *uint256.Int)
	// SubBalance fails with ErrInsufficientBalance and leaves state untouched.
	SubBalance(addr Address, amount *uint256.Int) error

	Allowance(owner, spender Address) *uint256.Int
	SetAllowance(owner, spender Address, amount *uint256.Int)

	// ForEachBalance visits non-zero balances in address order.
	ForEachBalance(fn func(addr Address, amount *uint256.Int))
	// ForEachAllowance visits non-zero allowances in (owner, spender) order.
	ForEachAllowance(fn func(owner, spender Address, amount *uint256.Int))
}
