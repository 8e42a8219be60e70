package token

import (
	"context"
	"testing"

	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradingGate_Transitions(t *testing.T) {
	ctx := context.Background()
	tok := newTestToken(t, nil)

	err := tok.EnableTrading(ctx, limited)
	require.ErrorIs(t, err, core.ErrNotKarma)
	assert.Equal(t, "Only karma deployer", err.Error())
	assert.False(t, tok.TradingEnabled())

	require.NoError(t, tok.EnableTrading(ctx, deployer))
	assert.True(t, tok.TradingEnabled())

	err = tok.EnableTrading(ctx, deployer)
	require.ErrorIs(t, err, core.ErrAlreadyEnabled)
	assert.Equal(t, "Trading already active", err.Error())

	require.NoError(t, tok.DisableTrading(ctx, deployer))
	assert.False(t, tok.TradingEnabled())
	assert.ErrorIs(t, tok.DisableTrading(ctx, deployer), core.ErrAlreadyDisabled)

	require.NoError(t, tok.EnableTrading(ctx, deployer))
	assert.True(t, tok.TradingEnabled())
}

func TestTradingGate_DisableAfterOwnershipTransfer(t *testing.T) {
	ctx := context.Background()
	tok := newTestToken(t, nil)
	require.NoError(t, tok.EnableTrading(ctx, deployer))
	require.NoError(t, tok.TransferOwnership(ctx, deployer, limited))

	err := tok.DisableTrading(ctx, limited)
	require.ErrorIs(t, err, core.ErrNotKarmaDisable)
	assert.Equal(t, "Only karma deployer can disable", err.Error())
	assert.Equal(t, core.KindPermission, core.KindOf(err))
	assert.True(t, tok.TradingEnabled())

	require.NoError(t, tok.DisableTrading(ctx, deployer), "the karma deployer keeps control after handing over ownership")
}

func TestTradingGate_Transfers(t *testing.T) {
	ctx := context.Background()
	tok := newTestToken(t, nil)
	fund(t, tok, pairAddr, tokens(100_000))
	fund(t, tok, alice, tokens(100))

	tests := []struct {
		name    string
		from    core.Address
		to      core.Address
		wantErr error
	}{
		{name: "buy by non-exempt", from: pairAddr, to: alice, wantErr: core.ErrTradingDisabled},
		{name: "sell by non-exempt", from: alice, to: pairAddr, wantErr: core.ErrTradingDisabled},
		{name: "wallet to wallet", from: alice, to: bob},
		{name: "buy by owner", from: pairAddr, to: deployer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tok.Transfer(ctx, tt.from, tt.to, tokens(1))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Trading not enabled", err.Error())
				return
			}
			require.NoError(t, err)
		})
	}

	require.NoError(t, tok.EnableTrading(ctx, deployer))
	require.NoError(t, tok.Transfer(ctx, pairAddr, alice, tokens(1)))
}

func TestTradingState_String(t *testing.T) {
	assert.Equal(t, "enabled", TradingEnabled.String())
	assert.Equal(t, "disabled", TradingDisabled.String())
}
