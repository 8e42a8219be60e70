package token

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, core.DirectionBuy, classify(pairAddr, pairAddr, alice))
	assert.Equal(t, core.DirectionSell, classify(pairAddr, alice, pairAddr))
	assert.Equal(t, core.DirectionNeutral, classify(pairAddr, alice, bob))
	assert.Equal(t, core.DirectionNeutral, classify(core.ZeroAddress, alice, bob))
}

func TestComputeTax(t *testing.T) {
	tests := []struct {
		name       string
		amount     uint64
		rate       core.TaxRate
		marketing  uint64
		reflection uint64
		net        uint64
	}{
		{name: "no tax", amount: 1000, rate: core.TaxRate{}, net: 1000},
		{name: "five percent marketing", amount: 1000, rate: core.TaxRate{Marketing: 50}, marketing: 50, net: 950},
		{name: "split", amount: 1000, rate: core.TaxRate{Marketing: 30, Reflection: 20}, marketing: 30, reflection: 20, net: 950},
		{name: "rounds down each portion", amount: 999, rate: core.TaxRate{Marketing: 15, Reflection: 15}, marketing: 14, reflection: 14, net: 971},
		{name: "dust is untaxed", amount: 10, rate: core.TaxRate{Marketing: 50}, net: 10},
		{name: "full rate", amount: 1000, rate: core.TaxRate{Marketing: 1000}, marketing: 1000},
		{name: "zero amount", amount: 0, rate: core.TaxRate{Marketing: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := computeTax(core.DirectionBuy, pairAddr, alice, uint256.NewInt(tt.amount), tt.rate)
			require.NoError(t, err)
			assert.Equal(t, tt.marketing, split.Marketing.Uint64())
			assert.Equal(t, tt.reflection, split.Reflection.Uint64())
			assert.Equal(t, tt.net, split.Net.Uint64())
			assert.Equal(t, tt.amount, new(uint256.Int).Add(split.Net, split.Tax()).Uint64())
		})
	}
}

func TestComputeTax_MaxAmount(t *testing.T) {
	split, err := computeTax(core.DirectionSell, alice, pairAddr, core.MaxAmount(), core.TaxRate{Marketing: 1000})
	require.NoError(t, err)
	assert.True(t, core.IsMaxAmount(split.Marketing))
	assert.True(t, split.Net.IsZero())
}

func TestComputeTax_RejectsOversizedRate(t *testing.T) {
	tests := []struct {
		name string
		rate core.TaxRate
	}{
		{name: "sum above denominator", rate: core.TaxRate{Marketing: 600, Reflection: 401}},
		{name: "sum wraps around", rate: core.TaxRate{Marketing: ^uint64(0), Reflection: 2}},
		{name: "single component", rate: core.TaxRate{Reflection: ^uint64(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := computeTax(core.DirectionSell, alice, pairAddr, tokens(1), tt.rate)
			assert.ErrorIs(t, err, core.ErrTaxTooHigh)
		})
	}
}

func TestTax_WrappingRateCannotMint(t *testing.T) {
	ctx := context.Background()
	tok := newTestToken(t, nil)
	require.NoError(t, tok.EnableTrading(ctx, deployer))
	fund(t, tok, alice, tokens(100))
	tok.taxes.Sell = core.TaxRate{Marketing: ^uint64(0), Reflection: 2}

	err := tok.Transfer(ctx, alice, pairAddr, tokens(1))
	require.ErrorIs(t, err, core.ErrTaxTooHigh)
	assert.Equal(t, tokens(100), tok.BalanceOf(alice))
	assert.True(t, tok.BalanceOf(pairAddr).IsZero())
	assert.True(t, tok.BalanceOf(marketing).IsZero())

	st, err := tok.State()
	require.NoError(t, err)
	supply, ok := st.Supply()
	require.True(t, ok)
	assert.Equal(t, testSupply(), supply)
}

func TestTax_AppliedOnTransfer(t *testing.T) {
	ctx := context.Background()
	tok := newTestToken(t, func(p *core.InitParams) {
		p.BuyTax = core.TaxRate{Marketing: 30, Reflection: 20}
		p.SellTax = core.TaxRate{Marketing: 100, Reflection: 50}
	})
	require.NoError(t, tok.EnableTrading(ctx, deployer))
	fund(t, tok, pairAddr, tokens(100_000))

	require.NoError(t, tok.Transfer(ctx, pairAddr, alice, tokens(100)))
	assert.Equal(t, tokens(95), tok.BalanceOf(alice))
	assert.Equal(t, tokens(3), tok.BalanceOf(marketing))
	assert.Equal(t, tokens(2), tok.BalanceOf(self), "reflection is pooled on the token account")

	split, err := tok.Quote(ctx, alice, pairAddr, tokens(20))
	require.NoError(t, err)
	assert.Equal(t, core.DirectionSell, split.Direction)
	assert.Equal(t, tokens(2), split.Marketing)
	assert.Equal(t, tokens(1), split.Reflection)
	assert.Equal(t, tokens(17), split.Net)
	assert.Equal(t, tokens(95), tok.BalanceOf(alice), "quote does not move funds")

	require.NoError(t, tok.Transfer(ctx, alice, pairAddr, tokens(20)))
	assert.Equal(t, tokens(75), tok.BalanceOf(alice))
	assert.Equal(t, tokens(5), tok.BalanceOf(marketing))
	assert.Equal(t, tokens(3), tok.BalanceOf(self))

	require.NoError(t, tok.Transfer(ctx, alice, bob, tokens(10)))
	assert.Equal(t, tokens(10), tok.BalanceOf(bob), "wallet to wallet is untaxed")

	var collected []core.Event
	for _, e := range tok.Events() {
		if e.Kind == core.EventTaxCollected {
			collected = append(collected, e)
		}
	}
	require.Len(t, collected, 2)
	assert.Equal(t, "buy", collected[0].Detail)
	assert.Equal(t, tokens(5), collected[0].Amount)
	assert.Equal(t, "sell", collected[1].Detail)
}

func TestTax_DisabledWithoutMarketingWallet(t *testing.T) {
	ctx := context.Background()
	tok := newTestToken(t, func(p *core.InitParams) {
		p.MarketingWallet = core.ZeroAddress
		p.BuyTax = core.TaxRate{Marketing: 100}
	})
	require.NoError(t, tok.EnableTrading(ctx, deployer))
	fund(t, tok, pairAddr, tokens(100_000))

	require.NoError(t, tok.Transfer(ctx, pairAddr, alice, tokens(100)))
	assert.Equal(t, tokens(100), tok.BalanceOf(alice))
}

func TestTax_ExemptEndpoints(t *testing.T) {
	ctx := context.Background()
	tok := newTestToken(t, nil)
	fund(t, tok, pairAddr, tokens(100_000))

	require.NoError(t, tok.Transfer(ctx, pairAddr, deployer, tokens(100)))
	require.NoError(t, tok.Transfer(ctx, deployer, pairAddr, tokens(100)))
	assert.True(t, tok.BalanceOf(marketing).IsZero())
}
