package amm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/internal/ledger"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// Well-known addresses of the reference deployment.
var (
	RouterAddress  = core.MustParseAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	FactoryAddress = core.MustParseAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	WETHAddress    = core.MustParseAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

// ERC20 is the token surface the pair and router rely on.
type ERC20 interface {
	BalanceOf(addr core.Address) *uint256.Int
	Transfer(ctx context.Context, caller, to core.Address, amount *uint256.Int) error
	TransferFrom(ctx context.Context, caller, from, to core.Address, amount *uint256.Int) error
}

// Token is an ERC20 the chain can roll back together with its own state.
type Token interface {
	ERC20
	core.Revertible
}

// Chain is the execution environment: native balances, the wrapped native
// token, the factory, the router and every registered token.
type Chain struct {
	mu      sync.Mutex
	logger  *slog.Logger
	native  *ledger.Memory
	weth    *WETH
	factory *Factory
	router  *Router
	tokens  map[core.Address]Token
	order   []core.Address
}

// NewChain deploys the reference contracts.
func NewChain(logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Chain{
		logger: logger,
		native: ledger.NewMemory(),
		tokens: make(map[core.Address]Token),
	}
	c.weth = newWETH(c)
	c.factory = newFactory(c)
	c.router = &Router{chain: c}
	c.register(WETHAddress, c.weth)
	return c
}

// Router returns the router.
func (c *Chain) Router() *Router { return c.router }

// Factory returns the factory.
func (c *Chain) Factory() *Factory { return c.factory }

// WETH returns the wrapped native token.
func (c *Chain) WETH() *WETH { return c.weth }

// RegisterToken makes an ERC20 reachable by address for the router and pairs.
func (c *Chain) RegisterToken(addr core.Address, tok Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.register(addr, tok)
}

func (c *Chain) register(addr core.Address, tok Token) {
	if _, ok := c.tokens[addr]; !ok {
		c.order = append(c.order, addr)
	}
	c.tokens[addr] = tok
}

func (c *Chain) token(addr core.Address) (Token, error) {
	tok, ok := c.tokens[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, addr.Hex())
	}
	return tok, nil
}

// Fund credits native balance, standing in for genesis allocations.
func (c *Chain) Fund(addr core.Address, amount *uint256.Int) {
	c.native.AddBalance(addr, amount)
}

// NativeBalance returns addr's native balance.
func (c *Chain) NativeBalance(addr core.Address) *uint256.Int {
	return c.native.BalanceOf(addr)
}

func (c *Chain) moveNative(from, to core.Address, amount *uint256.Int) error {
	if err := c.native.SubBalance(from, amount); err != nil {
		return ErrInsufficientNative
	}
	c.native.AddBalance(to, amount)
	return nil
}

// revertibles lists all state touched by a transaction. Pairs created inside a
// transaction are dropped by the factory's own revert.
func (c *Chain) revertibles() []core.Revertible {
	out := []core.Revertible{c.native, c.factory}
	for _, p := range c.factory.pairs {
		out = append(out, p)
	}
	for _, addr := range c.order {
		out = append(out, c.tokens[addr])
	}
	return out
}

// Tx runs fn atomically: if it fails, every registered piece of state returns
// to where it was before fn started. Transactions are serialized; fn must not
// start another one.
func (c *Chain) Tx(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	revs := c.revertibles()
	ids := make([]int, len(revs))
	for i, r := range revs {
		ids[i] = r.Snapshot()
	}
	if err := fn(); err != nil {
		for i := len(revs) - 1; i >= 0; i-- {
			revs[i].RevertToSnapshot(ids[i])
		}
		c.logger.Debug("transaction reverted", "error", err)
		return err
	}
	for i := len(revs) - 1; i >= 0; i-- {
		revs[i].DiscardSnapshot(ids[i])
	}
	return nil
}
