package token

import "github.com/leapstack-labs/karmatoken/pkg/core"

// Role is a privileged identity.
type Role int

const (
	// RoleOwner is the transferable owner.
	RoleOwner Role = iota + 1
	// RoleKarmaDeployer is fixed at initialization and outlives ownership changes.
	RoleKarmaDeployer
	// RoleLimitedOwner is fixed at initialization and may only loosen limits.
	RoleLimitedOwner
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleKarmaDeployer:
		return "karma_deployer"
	case RoleLimitedOwner:
		return "limited_owner"
	default:
		return "none"
	}
}

// Capability is a privileged action.
type Capability int

const (
	// CapEnableTrading opens the trading gate.
	CapEnableTrading Capability = iota + 1
	// CapDisableTrading closes the trading gate.
	CapDisableTrading
	// CapRaiseLimits increases maxTx/maxWallet.
	CapRaiseLimits
	// CapLowerLimits decreases maxTx/maxWallet.
	CapLowerLimits
	// CapTransferOwnership hands over or renounces the owner role.
	CapTransferOwnership
)

// capabilities is the fixed role -> capability matrix.
var capabilities = map[Role][]Capability{
	RoleKarmaDeployer: {CapEnableTrading, CapDisableTrading, CapRaiseLimits, CapLowerLimits},
	RoleOwner:         {CapRaiseLimits, CapTransferOwnership},
	RoleLimitedOwner:  {CapRaiseLimits},
}

// permissions binds roles to identities. karmaDeployer and limitedOwner never
// change after initialization.
type permissions struct {
	owner         core.Address
	karmaDeployer core.Address
	limitedOwner  core.Address
}

// roles returns every role caller holds. The zero address holds none, so a
// renounced owner or unset limited owner matches nobody.
func (p permissions) roles(caller core.Address) []Role {
	if core.IsZero(caller) {
		return nil
	}
	var out []Role
	if caller == p.owner {
		out = append(out, RoleOwner)
	}
	if caller == p.karmaDeployer {
		out = append(out, RoleKarmaDeployer)
	}
	if caller == p.limitedOwner {
		out = append(out, RoleLimitedOwner)
	}
	return out
}

// can reports whether any role held by caller grants c.
func (p permissions) can(caller core.Address, c Capability) bool {
	for _, r := range p.roles(caller) {
		for _, granted := range capabilities[r] {
			if granted == c {
				return true
			}
		}
	}
	return false
}

// exempt reports whether addr bypasses the gate, limits and tax: the owner, the
// karma deployer and the token itself.
func (p permissions) exempt(addr, self core.Address) bool {
	if core.IsZero(addr) {
		return false
	}
	return addr == p.owner || addr == p.karmaDeployer || addr == self
}

// Roles returns the roles caller currently holds.
func (t *Token) Roles(caller core.Address) []Role {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.perms.roles(caller)
}

// Can reports whether caller currently holds capability c.
func (t *Token) Can(caller core.Address, c Capability) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.perms.can(caller, c)
}
