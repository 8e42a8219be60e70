package amm

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// Router is the user-facing entry point: it wraps native value, moves tokens
// into pairs and drives swaps along a path. Every method runs in one Chain.Tx.
type Router struct {
	chain *Chain
}

var _ core.PairResolver = (*Router)(nil)

// Address returns the router's account.
func (r *Router) Address() core.Address { return RouterAddress }

// WETH returns the wrapped native token address.
func (r *Router) WETH() core.Address { return WETHAddress }

// ResolvePair returns the token/WETH pair, creating it when missing. It is
// called by a token during its own initialization, so it only touches the
// factory and never snapshots registered tokens.
func (r *Router) ResolvePair(_ context.Context, token core.Address) (core.Address, error) {
	r.chain.mu.Lock()
	defer r.chain.mu.Unlock()
	if p := r.chain.factory.GetPair(token, WETHAddress); p != nil {
		return p.address, nil
	}
	p, err := r.chain.factory.CreatePair(token, WETHAddress)
	if err != nil {
		return core.Address{}, err
	}
	return p.address, nil
}

// Quote returns the amount of b equivalent to amountA at the given reserves.
func Quote(amountA, reserveA, reserveB *uint256.Int) (*uint256.Int, error) {
	if amountA.IsZero() {
		return nil, ErrRouterAAmount
	}
	if reserveA.IsZero() || reserveB.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	return new(uint256.Int).Div(new(uint256.Int).Mul(amountA, reserveB), reserveA), nil
}

// GetAmountOut applies the 0.3% fee and the constant-product formula.
func GetAmountOut(amountIn, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return nil, ErrInsufficientInputAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	withFee := new(uint256.Int).Mul(amountIn, uint256.NewInt(997))
	numerator := new(uint256.Int).Mul(withFee, reserveOut)
	denominator := new(uint256.Int).Add(new(uint256.Int).Mul(reserveIn, uint256.NewInt(1000)), withFee)
	return numerator.Div(numerator, denominator), nil
}

// GetAmountsOut chains GetAmountOut along path.
func (r *Router) GetAmountsOut(amountIn *uint256.Int, path []core.Address) ([]*uint256.Int, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}
	amounts := make([]*uint256.Int, len(path))
	amounts[0] = amountIn.Clone()
	for i := 0; i < len(path)-1; i++ {
		p := r.chain.factory.GetPair(path[i], path[i+1])
		if p == nil {
			return nil, ErrPairNotFound
		}
		reserveIn, reserveOut := p.ReservesFor(path[i])
		out, err := GetAmountOut(amounts[i], reserveIn, reserveOut)
		if err != nil {
			return nil, err
		}
		amounts[i+1] = out
	}
	return amounts, nil
}

// LiquidityResult reports what AddLiquidityETH deposited.
type LiquidityResult struct {
	AmountToken *uint256.Int
	AmountETH   *uint256.Int
	Liquidity   *uint256.Int
}

// AddLiquidityETH deposits token and native value into the token/WETH pair,
// creating the pair if needed. The router pulls the token with TransferFrom, so
// caller must have approved it. Unused native value is refunded.
func (r *Router) AddLiquidityETH(
	ctx context.Context,
	caller, token core.Address,
	amountTokenDesired, amountTokenMin, amountETHMin, value *uint256.Int,
	to core.Address,
) (LiquidityResult, error) {
	var res LiquidityResult
	err := r.chain.Tx(func() error {
		p := r.chain.factory.GetPair(token, WETHAddress)
		if p == nil {
			var err error
			if p, err = r.chain.factory.CreatePair(token, WETHAddress); err != nil {
				return err
			}
		}

		amountToken, amountETH, err := optimalAmounts(p, token, amountTokenDesired, value, amountTokenMin, amountETHMin)
		if err != nil {
			return err
		}

		tok, err := r.chain.token(token)
		if err != nil {
			return err
		}
		if err := tok.TransferFrom(ctx, RouterAddress, caller, p.address, amountToken); err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFromFailed, err)
		}
		if err := r.chain.moveNative(caller, RouterAddress, value); err != nil {
			return err
		}
		if err := r.chain.weth.Deposit(RouterAddress, amountETH); err != nil {
			return err
		}
		if err := r.chain.weth.Transfer(ctx, RouterAddress, p.address, amountETH); err != nil {
			return err
		}
		liquidity, err := p.Mint(to)
		if err != nil {
			return err
		}
		if refund := new(uint256.Int).Sub(value, amountETH); !refund.IsZero() {
			if err := r.chain.moveNative(RouterAddress, caller, refund); err != nil {
				return err
			}
		}
		res = LiquidityResult{AmountToken: amountToken, AmountETH: amountETH, Liquidity: liquidity}
		return nil
	})
	if err != nil {
		return LiquidityResult{}, err
	}
	r.chain.logger.Debug("liquidity added",
		"token", token.Hex(),
		"amount_token", res.AmountToken.Dec(),
		"amount_eth", res.AmountETH.Dec(),
		"liquidity", res.Liquidity.Dec(),
	)
	return res, nil
}

// optimalAmounts keeps the deposit at the current pool ratio.
func optimalAmounts(p *Pair, token core.Address, tokenDesired, ethDesired, tokenMin, ethMin *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	reserveToken, reserveETH := p.ReservesFor(token)
	if reserveToken.IsZero() && reserveETH.IsZero() {
		return tokenDesired.Clone(), ethDesired.Clone(), nil
	}
	ethOptimal, err := Quote(tokenDesired, reserveToken, reserveETH)
	if err != nil {
		return nil, nil, err
	}
	if !ethOptimal.Gt(ethDesired) {
		if ethOptimal.Lt(ethMin) {
			return nil, nil, ErrRouterBAmount
		}
		return tokenDesired.Clone(), ethOptimal, nil
	}
	tokenOptimal, err := Quote(ethDesired, reserveETH, reserveToken)
	if err != nil {
		return nil, nil, err
	}
	if tokenOptimal.Lt(tokenMin) {
		return nil, nil, ErrRouterAAmount
	}
	return tokenOptimal, ethDesired.Clone(), nil
}

// SwapExactETHForTokens sells exactly value of native along path, which must
// start with WETH, and delivers the output to to.
func (r *Router) SwapExactETHForTokens(
	ctx context.Context,
	caller core.Address,
	value, amountOutMin *uint256.Int,
	path []core.Address,
	to core.Address,
) ([]*uint256.Int, error) {
	if len(path) < 2 || path[0] != WETHAddress {
		return nil, ErrInvalidPath
	}
	var amounts []*uint256.Int
	err := r.chain.Tx(func() error {
		var err error
		if amounts, err = r.GetAmountsOut(value, path); err != nil {
			return err
		}
		if amounts[len(amounts)-1].Lt(amountOutMin) {
			return ErrRouterOutput
		}
		first := r.chain.factory.GetPair(path[0], path[1])
		if err := r.chain.moveNative(caller, RouterAddress, value); err != nil {
			return err
		}
		if err := r.chain.weth.Deposit(RouterAddress, value); err != nil {
			return err
		}
		if err := r.chain.weth.Transfer(ctx, RouterAddress, first.address, value); err != nil {
			return err
		}
		return r.swap(ctx, amounts, path, to)
	})
	if err != nil {
		return nil, err
	}
	r.chain.logger.Debug("swap eth for tokens", "caller", caller.Hex(), "in", value.Dec(), "out", amounts[len(amounts)-1].Dec())
	return amounts, nil
}

// SwapExactTokensForETHSupportingFeeOnTransferTokens sells amountIn of path[0]
// for native value. Output is computed from what each pair actually received,
// so tokens that tax their transfers can be sold.
func (r *Router) SwapExactTokensForETHSupportingFeeOnTransferTokens(
	ctx context.Context,
	caller core.Address,
	amountIn, amountOutMin *uint256.Int,
	path []core.Address,
	to core.Address,
) (*uint256.Int, error) {
	if len(path) < 2 || path[len(path)-1] != WETHAddress {
		return nil, ErrInvalidPath
	}
	var amountOut *uint256.Int
	err := r.chain.Tx(func() error {
		first := r.chain.factory.GetPair(path[0], path[1])
		if first == nil {
			return ErrPairNotFound
		}
		tok, err := r.chain.token(path[0])
		if err != nil {
			return err
		}
		if err := tok.TransferFrom(ctx, RouterAddress, caller, first.address, amountIn); err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFromFailed, err)
		}
		if err := r.swapSupportingFee(ctx, path, RouterAddress); err != nil {
			return err
		}
		amountOut = r.chain.weth.BalanceOf(RouterAddress)
		if amountOut.Lt(amountOutMin) {
			return ErrRouterOutput
		}
		if err := r.chain.weth.Withdraw(RouterAddress, amountOut); err != nil {
			return err
		}
		return r.chain.moveNative(RouterAddress, to, amountOut)
	})
	if err != nil {
		return nil, err
	}
	r.chain.logger.Debug("swap tokens for eth", "caller", caller.Hex(), "in", amountIn.Dec(), "out", amountOut.Dec())
	return amountOut, nil
}

// swap walks path with precomputed amounts; intermediate outputs go straight
// to the next pair.
func (r *Router) swap(ctx context.Context, amounts []*uint256.Int, path []core.Address, to core.Address) error {
	for i := 0; i < len(path)-1; i++ {
		p := r.chain.factory.GetPair(path[i], path[i+1])
		if p == nil {
			return ErrPairNotFound
		}
		recipient, err := r.hopRecipient(path, i, to)
		if err != nil {
			return err
		}
		out0, out1 := splitOutput(p, path[i+1], amounts[i+1])
		if err := p.Swap(ctx, out0, out1, recipient); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) swapSupportingFee(ctx context.Context, path []core.Address, to core.Address) error {
	for i := 0; i < len(path)-1; i++ {
		p := r.chain.factory.GetPair(path[i], path[i+1])
		if p == nil {
			return ErrPairNotFound
		}
		input, err := r.chain.token(path[i])
		if err != nil {
			return err
		}
		reserveIn, reserveOut := p.ReservesFor(path[i])
		received := new(uint256.Int).Sub(input.BalanceOf(p.address), reserveIn)
		out, err := GetAmountOut(received, reserveIn, reserveOut)
		if err != nil {
			return err
		}
		recipient, err := r.hopRecipient(path, i, to)
		if err != nil {
			return err
		}
		out0, out1 := splitOutput(p, path[i+1], out)
		if err := p.Swap(ctx, out0, out1, recipient); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) hopRecipient(path []core.Address, i int, to core.Address) (core.Address, error) {
	if i >= len(path)-2 {
		return to, nil
	}
	next := r.chain.factory.GetPair(path[i+1], path[i+2])
	if next == nil {
		return core.Address{}, ErrPairNotFound
	}
	return next.address, nil
}

func splitOutput(p *Pair, output core.Address, amount *uint256.Int) (*uint256.Int, *uint256.Int) {
	if output == p.token0 {
		return amount, core.Zero()
	}
	return core.Zero(), amount
}
