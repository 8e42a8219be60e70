package amm

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/internal/ledger"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// MinimumLiquidity is locked forever on the first mint.
const MinimumLiquidity = 1000

type reserves struct {
	r0, r1 *uint256.Int
}

// Pair is a constant-product pool of token0/token1. Its LP shares live in its
// own ledger.
type Pair struct {
	chain   *Chain
	address core.Address
	token0  core.Address
	token1  core.Address

	reserve0 *uint256.Int
	reserve1 *uint256.Int
	lp       *ledger.Memory
	lpSupply *uint256.Int

	revisions []pairRevision
	nextRevID int
}

type pairRevision struct {
	id       int
	lpID     int
	reserves reserves
	lpSupply *uint256.Int
}

func newPair(c *Chain, addr, t0, t1 core.Address) *Pair {
	return &Pair{
		chain:    c,
		address:  addr,
		token0:   t0,
		token1:   t1,
		reserve0: core.Zero(),
		reserve1: core.Zero(),
		lp:       ledger.NewMemory(),
		lpSupply: core.Zero(),
	}
}

// Address returns the pair's account.
func (p *Pair) Address() core.Address { return p.address }

// Tokens returns (token0, token1).
func (p *Pair) Tokens() (core.Address, core.Address) { return p.token0, p.token1 }

// Reserves returns copies of the last synced reserves.
func (p *Pair) Reserves() (*uint256.Int, *uint256.Int) {
	return p.reserve0.Clone(), p.reserve1.Clone()
}

// ReservesFor returns the reserves ordered as (a, other).
func (p *Pair) ReservesFor(a core.Address) (*uint256.Int, *uint256.Int) {
	if a == p.token0 {
		return p.reserve0.Clone(), p.reserve1.Clone()
	}
	return p.reserve1.Clone(), p.reserve0.Clone()
}

// LiquidityOf returns addr's LP share balance.
func (p *Pair) LiquidityOf(addr core.Address) *uint256.Int {
	return p.lp.BalanceOf(addr)
}

// TotalLiquidity returns the LP share supply.
func (p *Pair) TotalLiquidity() *uint256.Int { return p.lpSupply.Clone() }

func (p *Pair) balances() (*uint256.Int, *uint256.Int, error) {
	t0, err := p.chain.token(p.token0)
	if err != nil {
		return nil, nil, err
	}
	t1, err := p.chain.token(p.token1)
	if err != nil {
		return nil, nil, err
	}
	return t0.BalanceOf(p.address), t1.BalanceOf(p.address), nil
}

// Mint issues LP shares for whatever was deposited since the last sync.
func (p *Pair) Mint(to core.Address) (*uint256.Int, error) {
	b0, b1, err := p.balances()
	if err != nil {
		return nil, err
	}
	a0 := new(uint256.Int).Sub(b0, p.reserve0)
	a1 := new(uint256.Int).Sub(b1, p.reserve1)

	liquidity := core.Zero()
	if p.lpSupply.IsZero() {
		product := new(uint256.Int).Mul(a0, a1)
		root := new(uint256.Int).Sqrt(product)
		minimum := uint256.NewInt(MinimumLiquidity)
		if root.Lt(minimum) {
			return nil, ErrInsufficientLiquidityMinted
		}
		liquidity.Sub(root, minimum)
		p.lp.AddBalance(core.ZeroAddress, minimum)
		p.lpSupply.Add(p.lpSupply, minimum)
	} else {
		l0 := new(uint256.Int).Div(new(uint256.Int).Mul(a0, p.lpSupply), p.reserve0)
		l1 := new(uint256.Int).Div(new(uint256.Int).Mul(a1, p.lpSupply), p.reserve1)
		if l0.Lt(l1) {
			liquidity.Set(l0)
		} else {
			liquidity.Set(l1)
		}
	}
	if liquidity.IsZero() {
		return nil, ErrInsufficientLiquidityMinted
	}
	p.lp.AddBalance(to, liquidity)
	p.lpSupply.Add(p.lpSupply, liquidity)
	p.sync(b0, b1)
	return liquidity, nil
}

// Swap sends the requested outputs to to and then checks that the inputs the
// pair received keep the fee-adjusted invariant. A failing token transfer
// surfaces as ErrTransferFailed.
func (p *Pair) Swap(ctx context.Context, amount0Out, amount1Out *uint256.Int, to core.Address) error {
	if amount0Out.IsZero() && amount1Out.IsZero() {
		return ErrInsufficientOutputAmount
	}
	if !amount0Out.Lt(p.reserve0) || !amount1Out.Lt(p.reserve1) {
		return ErrInsufficientLiquidity
	}

	if !amount0Out.IsZero() {
		if err := p.safeTransfer(ctx, p.token0, to, amount0Out); err != nil {
			return err
		}
	}
	if !amount1Out.IsZero() {
		if err := p.safeTransfer(ctx, p.token1, to, amount1Out); err != nil {
			return err
		}
	}

	b0, b1, err := p.balances()
	if err != nil {
		return err
	}
	in0 := amountIn(b0, p.reserve0, amount0Out)
	in1 := amountIn(b1, p.reserve1, amount1Out)
	if in0.IsZero() && in1.IsZero() {
		return ErrInsufficientInputAmount
	}

	thousand := uint256.NewInt(1000)
	three := uint256.NewInt(3)
	adj0 := new(uint256.Int).Sub(new(uint256.Int).Mul(b0, thousand), new(uint256.Int).Mul(in0, three))
	adj1 := new(uint256.Int).Sub(new(uint256.Int).Mul(b1, thousand), new(uint256.Int).Mul(in1, three))
	lhs := new(uint256.Int).Mul(adj0, adj1)
	rhs := new(uint256.Int).Mul(new(uint256.Int).Mul(p.reserve0, p.reserve1), uint256.NewInt(1_000_000))
	if lhs.Lt(rhs) {
		return ErrK
	}
	p.sync(b0, b1)
	return nil
}

// amountIn is what arrived beyond the post-output reserve.
func amountIn(balance, reserve, out *uint256.Int) *uint256.Int {
	floor := new(uint256.Int).Sub(reserve, out)
	if balance.Gt(floor) {
		return new(uint256.Int).Sub(balance, floor)
	}
	return core.Zero()
}

func (p *Pair) safeTransfer(ctx context.Context, tokenAddr, to core.Address, amount *uint256.Int) error {
	tok, err := p.chain.token(tokenAddr)
	if err != nil {
		return err
	}
	if err := tok.Transfer(ctx, p.address, to, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}

func (p *Pair) sync(b0, b1 *uint256.Int) {
	p.reserve0 = b0.Clone()
	p.reserve1 = b1.Clone()
}

// Snapshot implements core.Revertible.
func (p *Pair) Snapshot() int {
	id := p.nextRevID
	p.nextRevID++
	p.revisions = append(p.revisions, pairRevision{
		id:       id,
		lpID:     p.lp.Snapshot(),
		reserves: reserves{p.reserve0.Clone(), p.reserve1.Clone()},
		lpSupply: p.lpSupply.Clone(),
	})
	return id
}

// RevertToSnapshot implements core.Revertible.
func (p *Pair) RevertToSnapshot(id int) {
	idx := p.revisionIndex(id)
	rev := p.revisions[idx]
	p.lp.RevertToSnapshot(rev.lpID)
	p.reserve0, p.reserve1 = rev.reserves.r0, rev.reserves.r1
	p.lpSupply = rev.lpSupply
	p.revisions = p.revisions[:idx]
}

// DiscardSnapshot implements core.Revertible.
func (p *Pair) DiscardSnapshot(id int) {
	idx := p.revisionIndex(id)
	p.lp.DiscardSnapshot(p.revisions[idx].lpID)
	p.revisions = p.revisions[:idx]
}

func (p *Pair) revisionIndex(id int) int {
	for i := len(p.revisions) - 1; i >= 0; i-- {
		if p.revisions[i].id == id {
			return i
		}
	}
	panic(fmt.Errorf("amm: pair revision id %d cannot be reverted", id))
}
