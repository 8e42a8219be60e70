package token

import (
	"context"
	"testing"

	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissions_Matrix(t *testing.T) {
	owner := core.MustParseAddress("0x00000000000000000000000000000000000000c1")
	karma := core.MustParseAddress("0x00000000000000000000000000000000000000c2")
	p := permissions{owner: owner, karmaDeployer: karma, limitedOwner: limited}

	tests := []struct {
		caller core.Address
		cap    Capability
		want   bool
	}{
		{karma, CapEnableTrading, true},
		{karma, CapDisableTrading, true},
		{karma, CapRaiseLimits, true},
		{karma, CapLowerLimits, true},
		{karma, CapTransferOwnership, false},
		{owner, CapEnableTrading, false},
		{owner, CapDisableTrading, false},
		{owner, CapRaiseLimits, true},
		{owner, CapLowerLimits, false},
		{owner, CapTransferOwnership, true},
		{limited, CapRaiseLimits, true},
		{limited, CapLowerLimits, false},
		{limited, CapEnableTrading, false},
		{stranger, CapRaiseLimits, false},
		{core.ZeroAddress, CapRaiseLimits, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.can(tt.caller, tt.cap), "caller %s cap %d", tt.caller.Hex(), tt.cap)
	}
}

func TestPermissions_RolesAndExemption(t *testing.T) {
	p := permissions{owner: deployer, karmaDeployer: deployer, limitedOwner: limited}

	assert.Equal(t, []Role{RoleOwner, RoleKarmaDeployer}, p.roles(deployer))
	assert.Equal(t, []Role{RoleLimitedOwner}, p.roles(limited))
	assert.Empty(t, p.roles(stranger))

	assert.True(t, p.exempt(deployer, self))
	assert.True(t, p.exempt(self, self))
	assert.False(t, p.exempt(limited, self), "the limited owner is not exempt")
	assert.False(t, p.exempt(core.ZeroAddress, self))

	renounced := permissions{karmaDeployer: deployer}
	assert.Empty(t, renounced.roles(core.ZeroAddress))
	assert.False(t, renounced.can(core.ZeroAddress, CapTransferOwnership))
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "owner", RoleOwner.String())
	assert.Equal(t, "karma_deployer", RoleKarmaDeployer.String())
	assert.Equal(t, "limited_owner", RoleLimitedOwner.String())
	assert.Equal(t, "none", Role(0).String())
}

func TestOwnership(t *testing.T) {
	ctx := context.Background()
	tok := newTestToken(t, nil)

	assert.ErrorIs(t, tok.TransferOwnership(ctx, alice, bob), core.ErrNotOwner)
	assert.ErrorIs(t, tok.TransferOwnership(ctx, deployer, core.ZeroAddress), core.ErrZeroOwner)

	require.NoError(t, tok.TransferOwnership(ctx, deployer, alice))
	assert.Equal(t, alice, tok.Owner())
	assert.Equal(t, deployer, tok.KarmaDeployer(), "karma deployer survives ownership transfer")
	assert.Equal(t, limited, tok.LimitedOwner())
	assert.Equal(t, []Role{RoleOwner}, tok.Roles(alice))
	assert.True(t, tok.Can(deployer, CapEnableTrading))

	require.NoError(t, tok.RenounceOwnership(ctx, alice))
	assert.Equal(t, core.ZeroAddress, tok.Owner())
	assert.ErrorIs(t, tok.RenounceOwnership(ctx, alice), core.ErrNotOwner)

	last := tok.Events()[len(tok.Events())-1]
	assert.Equal(t, core.EventOwnershipTransferred, last.Kind)
	assert.Equal(t, alice, last.From)
	assert.Equal(t, core.ZeroAddress, last.To)
}
