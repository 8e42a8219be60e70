package token

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateLimits_Tiers(t *testing.T) {
	owner := core.MustParseAddress("0x00000000000000000000000000000000000000c1")
	start := supplyDiv(1000)

	tests := []struct {
		name    string
		caller  core.Address
		value   *uint256.Int
		wantErr error
	}{
		{name: "karma lowers", caller: deployer, value: supplyDiv(2000)},
		{name: "karma raises", caller: deployer, value: supplyDiv(500)},
		{name: "karma below floor", caller: deployer, value: uint256.NewInt(1), wantErr: core.ErrMaxTxBelowFloor},
		{name: "owner raises", caller: owner, value: supplyDiv(500)},
		{name: "owner keeps", caller: owner, value: start},
		{name: "owner lowers", caller: owner, value: supplyDiv(2000), wantErr: core.ErrNotKarmaDeployer},
		{name: "limited owner raises", caller: limited, value: supplyDiv(500)},
		{name: "limited owner lowers", caller: limited, value: supplyDiv(2000), wantErr: core.ErrNotKarmaDeployer},
		{name: "limited owner below floor", caller: limited, value: uint256.NewInt(1), wantErr: core.ErrMaxTxBelowFloor},
		{name: "stranger raises", caller: stranger, value: supplyDiv(500), wantErr: core.ErrNotLimitsManager},
		{name: "stranger below floor", caller: stranger, value: uint256.NewInt(1), wantErr: core.ErrMaxTxBelowFloor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := newTestToken(t, nil)
			require.NoError(t, tok.TransferOwnership(context.Background(), deployer, owner))

			err := tok.UpdateMaxTxAmount(context.Background(), tt.caller, tt.value)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, start, tok.MaxTxAmount(), "a refused update leaves the limit unchanged")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, tok.MaxTxAmount())
		})
	}
}

func TestUpdateMaxWalletAmount(t *testing.T) {
	ctx := context.Background()
	tok := newTestToken(t, nil)
	start := tok.MaxWalletAmount()

	err := tok.UpdateMaxWalletAmount(ctx, limited, uint256.NewInt(1))
	require.ErrorIs(t, err, core.ErrMaxWalletBelowFloor)
	assert.Equal(t, "maxWalletAmount < 0.01%", err.Error())

	err = tok.UpdateMaxWalletAmount(ctx, limited, supplyDiv(2000))
	require.ErrorIs(t, err, core.ErrNotKarmaDeployer)
	assert.Equal(t, "Only Karma deployer", err.Error())
	assert.Equal(t, start, tok.MaxWalletAmount())

	require.NoError(t, tok.UpdateMaxWalletAmount(ctx, limited, supplyDiv(100)))
	assert.Equal(t, supplyDiv(100), tok.MaxWalletAmount())

	last := tok.Events()[len(tok.Events())-1]
	assert.Equal(t, core.EventMaxWalletUpdated, last.Kind)
	assert.Equal(t, start.Dec(), last.Detail)
	assert.Equal(t, supplyDiv(100), last.Amount)
}

func TestLimits_EnforcedOnTransfer(t *testing.T) {
	ctx := context.Background()
	tok := newTestToken(t, func(p *core.InitParams) { p.MarketingWallet = core.ZeroAddress })
	require.NoError(t, tok.EnableTrading(ctx, deployer))
	fund(t, tok, pairAddr, tokens(100_000))
	fund(t, tok, alice, tokens(2_000))

	maxTx := tok.MaxTxAmount()
	over := new(uint256.Int).AddUint64(maxTx, 1)

	err := tok.Transfer(ctx, alice, bob, over)
	require.ErrorIs(t, err, core.ErrMaxTxExceeded)
	assert.Equal(t, core.KindLimit, core.KindOf(err))

	require.NoError(t, tok.Transfer(ctx, alice, bob, maxTx), "max tx is inclusive")
	require.NoError(t, tok.Transfer(ctx, alice, bob, maxTx))
	assert.Equal(t, tok.MaxWalletAmount(), tok.BalanceOf(bob), "bob is exactly at the wallet cap")

	err = tok.Transfer(ctx, deployer, bob, uint256.NewInt(1))
	require.ErrorIs(t, err, core.ErrMaxWalletExceeded, "an exempt sender does not lift the recipient's cap")

	require.NoError(t, tok.Transfer(ctx, bob, pairAddr, maxTx), "the pair is never wallet capped")
	require.NoError(t, tok.Transfer(ctx, deployer, pairAddr, tokens(5_000)), "exempt sender skips max tx")
	require.NoError(t, tok.Transfer(ctx, pairAddr, deployer, tokens(5_000)), "exempt recipient skips both limits")
}
