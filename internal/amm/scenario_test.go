package amm_test

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/internal/amm"
	"github.com/leapstack-labs/karmatoken/internal/antibot"
	"github.com/leapstack-labs/karmatoken/internal/testutil"
	"github.com/leapstack-labs/karmatoken/internal/token"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenAddr = core.MustParseAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	owner     = core.MustParseAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	user      = core.MustParseAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	user2     = core.MustParseAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	user3     = core.MustParseAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
	marketing = core.MustParseAddress("0xe422C2757AD02bb90f44cA32976eb2B07086cad0")
	reward    = core.MustParseAddress("0xdac17f958d2ee523a2206206994597c13d831ec7")
	recipient = core.MustParseAddress("0x888cea2bbdd5d47a4032cf63668d7525c74af57a")
)

func eth(milli uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(milli), uint256.NewInt(1_000_000_000_000_000))
}

func supply() *uint256.Int { return core.Units(1_000_000, 18) }

func supplyDiv(n uint64) *uint256.Int {
	return new(uint256.Int).Div(supply(), uint256.NewInt(n))
}

type fixture struct {
	chain  *amm.Chain
	router *amm.Router
	tok    *token.Token
	weth   core.Address
}

func deploy(t *testing.T, buy, sell core.TaxRate, marketingWallet, rewardToken core.Address) *fixture {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	chain := amm.NewChain(logger)
	tok := token.New(tokenAddr, token.WithLogger(logger), token.WithPairResolver(chain.Router()))
	chain.RegisterToken(tokenAddr, tok)

	err := tok.Initialize(context.Background(), owner, core.InitParams{
		Name:            "A A A",
		Symbol:          "aaa",
		Decimals:        18,
		Supply:          supply(),
		MaxTx:           supplyDiv(1000),
		MaxWallet:       new(uint256.Int).Mul(supplyDiv(1000), uint256.NewInt(2)),
		Router:          amm.RouterAddress,
		KarmaDeployer:   owner,
		BuyTax:          buy,
		SellTax:         sell,
		MarketingWallet: marketingWallet,
		RewardToken:     rewardToken,
		LimitedOwner:    user,
	})
	require.NoError(t, err)

	for _, a := range []core.Address{owner, user, user2, user3} {
		chain.Fund(a, eth(10_000_000))
	}
	return &fixture{chain: chain, router: chain.Router(), tok: tok, weth: chain.Router().WETH()}
}

func (f *fixture) buy(t *testing.T, who core.Address, value *uint256.Int) error {
	t.Helper()
	_, err := f.router.SwapExactETHForTokens(context.Background(), who, value, core.Zero(), []core.Address{f.weth, tokenAddr}, who)
	return err
}

// runLifecycle replays the full deployment lifecycle and returns the golden
// balances observed along the way.
func runLifecycle(t *testing.T, f *fixture, user2Golden, user3Golden string) {
	ctx := context.Background()

	t.Run("seed liquidity", func(t *testing.T) {
		require.NoError(t, f.tok.Approve(ctx, owner, amm.RouterAddress, supply()))
		res, err := f.router.AddLiquidityETH(ctx, owner, tokenAddr, supply(), uint256.NewInt(1), eth(10_000), eth(100_000), owner)
		require.NoError(t, err)
		assert.Equal(t, "9999999999999999999000", res.Liquidity.Dec())

		pair := f.chain.Factory().GetPair(tokenAddr, f.weth)
		require.NotNil(t, pair)
		assert.Equal(t, f.tok.Pair(), pair.Address())
		assert.Equal(t, "9999999999999999999000", pair.LiquidityOf(owner).Dec())

		require.NoError(t, f.buy(t, owner, eth(1000)))
		assert.Equal(t, "9871580343970612988504", f.tok.BalanceOf(owner).Dec())
	})

	t.Run("trade disabled", func(t *testing.T) {
		before := f.chain.NativeBalance(user)
		err := f.buy(t, user, eth(1))
		require.ErrorIs(t, err, amm.ErrTransferFailed)
		assert.ErrorIs(t, err, core.ErrTradingDisabled)
		assert.Equal(t, before, f.chain.NativeBalance(user), "failed swap must refund native value")

		require.NoError(t, f.tok.EnableTrading(ctx, owner))
		require.NoError(t, f.buy(t, user, eth(1)))
	})

	t.Run("max tx", func(t *testing.T) {
		err := f.buy(t, user, eth(1000))
		require.ErrorIs(t, err, amm.ErrTransferFailed)
		assert.ErrorIs(t, err, core.ErrMaxTxExceeded)
	})

	t.Run("max wallet", func(t *testing.T) {
		require.NoError(t, f.buy(t, user, eth(100)))
		require.NoError(t, f.buy(t, user, eth(100)))
		err := f.buy(t, user, eth(100))
		require.ErrorIs(t, err, amm.ErrTransferFailed)
		assert.ErrorIs(t, err, core.ErrMaxWalletExceeded)
	})

	t.Run("limits", func(t *testing.T) {
		assert.ErrorIs(t, f.tok.UpdateMaxTxAmount(ctx, owner, uint256.NewInt(1)), core.ErrMaxTxBelowFloor)
		assert.Equal(t, supplyDiv(1000), f.tok.MaxTxAmount())
		require.NoError(t, f.tok.UpdateMaxTxAmount(ctx, owner, supplyDiv(2000)))
		assert.Equal(t, supplyDiv(2000), f.tok.MaxTxAmount())

		require.NoError(t, f.tok.UpdateMaxTxAmount(ctx, owner, supplyDiv(1000)))
		assert.ErrorIs(t, f.tok.UpdateMaxTxAmount(ctx, user, uint256.NewInt(1)), core.ErrMaxTxBelowFloor)
		assert.ErrorIs(t, f.tok.UpdateMaxTxAmount(ctx, user, supplyDiv(2000)), core.ErrNotKarmaDeployer)
		assert.Equal(t, supplyDiv(1000), f.tok.MaxTxAmount())
		require.NoError(t, f.tok.UpdateMaxTxAmount(ctx, user, supplyDiv(500)))
		assert.Equal(t, supplyDiv(500), f.tok.MaxTxAmount())

		assert.ErrorIs(t, f.tok.UpdateMaxWalletAmount(ctx, owner, uint256.NewInt(1)), core.ErrMaxWalletBelowFloor)
		require.NoError(t, f.tok.UpdateMaxWalletAmount(ctx, owner, supplyDiv(2000)))
		assert.Equal(t, supplyDiv(2000), f.tok.MaxWalletAmount())
	})

	t.Run("trading toggles", func(t *testing.T) {
		require.NoError(t, f.tok.DisableTrading(ctx, owner))
		assert.False(t, f.tok.TradingEnabled())
		require.NoError(t, f.tok.EnableTrading(ctx, owner))
		assert.True(t, f.tok.TradingEnabled())

		require.NoError(t, f.tok.TransferOwnership(ctx, owner, user))
		assert.Equal(t, user, f.tok.Owner())
		assert.ErrorIs(t, f.tok.DisableTrading(ctx, user), core.ErrNotKarmaDisable)
		assert.True(t, f.tok.TradingEnabled())
	})

	t.Run("plain transfer", func(t *testing.T) {
		require.NoError(t, f.tok.Transfer(ctx, owner, recipient, uint256.NewInt(1_000_000)))
		assert.Equal(t, uint256.NewInt(1_000_000), f.tok.BalanceOf(recipient))
	})

	t.Run("buy", func(t *testing.T) {
		require.NoError(t, f.tok.UpdateMaxTxAmount(ctx, user, supplyDiv(100)))
		require.NoError(t, f.tok.UpdateMaxWalletAmount(ctx, user, new(uint256.Int).Mul(supplyDiv(100), uint256.NewInt(2))))

		require.NoError(t, f.buy(t, user2, eth(1000)))
		assert.Equal(t, user2Golden, f.tok.BalanceOf(user2).Dec())
	})

	t.Run("sell", func(t *testing.T) {
		require.NoError(t, f.buy(t, user3, eth(1000)))
		require.NoError(t, f.tok.Approve(ctx, user3, amm.RouterAddress, core.MaxAmount()))
		held := f.tok.BalanceOf(user3)
		assert.Equal(t, user3Golden, held.Dec())

		before := f.chain.NativeBalance(user3)
		out, err := f.router.SwapExactTokensForETHSupportingFeeOnTransferTokens(
			ctx, user3, held, core.Zero(), []core.Address{tokenAddr, f.weth}, user3)
		require.NoError(t, err)
		assert.True(t, f.tok.BalanceOf(user3).IsZero())

		delta := new(uint256.Int).Sub(f.chain.NativeBalance(user3), before)
		assert.Equal(t, out, delta)
		assert.False(t, delta.IsZero())
		assert.False(t, delta.Gt(eth(1000)))
		assert.True(t, core.IsMaxAmount(f.tok.Allowance(user3, amm.RouterAddress)), "infinite allowance is not spent")
	})
}

func TestLifecycle_NoMarketingWallet(t *testing.T) {
	f := deploy(t, core.TaxRate{Marketing: 100}, core.TaxRate{Marketing: 150}, core.ZeroAddress, core.ZeroAddress)
	runLifecycle(t, f, "9640142343784256986721", "9453594501185203117436")
	assert.Equal(t, f.tok.TotalSupply(), sumBalances(f))
}

func TestLifecycle_MarketingWallet(t *testing.T) {
	f := deploy(t, core.TaxRate{Marketing: 50}, core.TaxRate{Marketing: 150}, marketing, reward)
	runLifecycle(t, f, "9158135226595044137385", "8980914776125942961565")
	assert.False(t, f.tok.BalanceOf(marketing).IsZero())
	assert.Equal(t, f.tok.TotalSupply(), sumBalances(f))
}

func TestOwnerBuy_ExemptFromTax(t *testing.T) {
	for _, buy := range []core.TaxRate{{Marketing: 50}, {Marketing: 100}} {
		f := deploy(t, buy, core.TaxRate{Marketing: 150}, marketing, reward)
		ctx := context.Background()
		require.NoError(t, f.tok.Approve(ctx, owner, amm.RouterAddress, supply()))
		_, err := f.router.AddLiquidityETH(ctx, owner, tokenAddr, supply(), uint256.NewInt(1), eth(10_000), eth(100_000), owner)
		require.NoError(t, err)
		require.NoError(t, f.buy(t, owner, eth(1000)))
		assert.Equal(t, "9871580343970612988504", f.tok.BalanceOf(owner).Dec())
		assert.True(t, f.tok.BalanceOf(marketing).IsZero())
	}
}

func sumBalances(f *fixture) *uint256.Int {
	total := core.Zero()
	holders := []core.Address{owner, user, user2, user3, marketing, recipient, tokenAddr, f.tok.Pair()}
	for _, h := range holders {
		total.Add(total, f.tok.BalanceOf(h))
	}
	return total
}

func TestChainTx_RevertsAntiBotCooldown(t *testing.T) {
	ctx := context.Background()
	logger := testutil.NewTestLogger(t)
	chain := amm.NewChain(logger)
	botAddr := core.MustParseAddress("0x00000000000000000000000000000000000000b7")
	validator := antibot.New(antibot.WithCooldown(1), antibot.WithExempt(amm.RouterAddress))
	tok := token.New(tokenAddr,
		token.WithLogger(logger),
		token.WithPairResolver(chain.Router()),
		token.WithAntiBot(validator),
	)
	chain.RegisterToken(tokenAddr, tok)

	err := tok.Initialize(ctx, owner, core.InitParams{
		Name:          "A A A",
		Symbol:        "aaa",
		Decimals:      18,
		Supply:        supply(),
		MaxTx:         supplyDiv(1000),
		MaxWallet:     supplyDiv(500),
		Router:        amm.RouterAddress,
		KarmaDeployer: owner,
		AntiBot:       botAddr,
	})
	require.NoError(t, err)
	require.NoError(t, tok.Transfer(ctx, owner, user, core.Units(10, 18)))

	slippage := amm.ErrRouterOutput
	err = chain.Tx(func() error {
		if err := tok.Transfer(ctx, user, user2, core.Units(1, 18)); err != nil {
			return err
		}
		return slippage
	})
	require.ErrorIs(t, err, slippage)
	assert.Equal(t, core.Units(10, 18), tok.BalanceOf(user))

	require.NoError(t, tok.Transfer(ctx, user, user2, core.Units(1, 18)), "the reverted transfer did not start a cooldown")
	require.ErrorIs(t, tok.Transfer(ctx, user, user3, core.Units(1, 18)), core.ErrAntiBotDenied)
}
