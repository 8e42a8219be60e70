package amm

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/internal/ledger"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// WETH wraps the native asset 1:1. The native backing sits on WETHAddress.
type WETH struct {
	chain  *Chain
	ledger *ledger.Memory
}

func newWETH(c *Chain) *WETH {
	return &WETH{chain: c, ledger: ledger.NewMemory()}
}

// Deposit wraps amount of caller's native balance.
func (w *WETH) Deposit(caller core.Address, amount *uint256.Int) error {
	if err := w.chain.moveNative(caller, WETHAddress, amount); err != nil {
		return err
	}
	w.ledger.AddBalance(caller, amount)
	return nil
}

// Withdraw unwraps amount back to caller's native balance.
func (w *WETH) Withdraw(caller core.Address, amount *uint256.Int) error {
	if err := w.ledger.SubBalance(caller, amount); err != nil {
		return err
	}
	return w.chain.moveNative(WETHAddress, caller, amount)
}

// BalanceOf returns addr's wrapped balance.
func (w *WETH) BalanceOf(addr core.Address) *uint256.Int {
	return w.ledger.BalanceOf(addr)
}

// Transfer moves wrapped balance from caller to to.
func (w *WETH) Transfer(_ context.Context, caller, to core.Address, amount *uint256.Int) error {
	if err := w.ledger.SubBalance(caller, amount); err != nil {
		return err
	}
	w.ledger.AddBalance(to, amount)
	return nil
}

// Approve sets spender's allowance over caller's wrapped balance.
func (w *WETH) Approve(caller, spender core.Address, amount *uint256.Int) {
	w.ledger.SetAllowance(caller, spender, amount)
}

// TransferFrom moves wrapped balance on caller's allowance.
func (w *WETH) TransferFrom(_ context.Context, caller, from, to core.Address, amount *uint256.Int) error {
	allowance := w.ledger.Allowance(from, caller)
	if caller != from {
		if allowance.Lt(amount) {
			return core.ErrInsufficientAllowance
		}
		if !core.IsMaxAmount(allowance) {
			w.ledger.SetAllowance(from, caller, new(uint256.Int).Sub(allowance, amount))
		}
	}
	if err := w.ledger.SubBalance(from, amount); err != nil {
		return err
	}
	w.ledger.AddBalance(to, amount)
	return nil
}

// Snapshot implements core.Revertible.
func (w *WETH) Snapshot() int { return w.ledger.Snapshot() }

// RevertToSnapshot implements core.Revertible.
func (w *WETH) RevertToSnapshot(id int) { w.ledger.RevertToSnapshot(id) }

// DiscardSnapshot implements core.Revertible.
func (w *WETH) DiscardSnapshot(id int) { w.ledger.DiscardSnapshot(id) }
