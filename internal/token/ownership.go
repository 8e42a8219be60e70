package token

import (
	"context"

	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// TransferOwnership hands the owner role to newOwner. The karma deployer and
// limited owner are unaffected.
func (t *Token) TransferOwnership(ctx context.Context, caller, newOwner core.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return core.ErrNotInitialized
	}
	if !t.perms.can(caller, CapTransferOwnership) {
		return core.ErrNotOwner
	}
	if core.IsZero(newOwner) {
		return core.ErrZeroOwner
	}
	t.setOwner(caller, newOwner)
	return nil
}

// RenounceOwnership leaves the token without an owner.
func (t *Token) RenounceOwnership(ctx context.Context, caller core.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return core.ErrNotInitialized
	}
	if !t.perms.can(caller, CapTransferOwnership) {
		return core.ErrNotOwner
	}
	t.setOwner(caller, core.ZeroAddress)
	return nil
}

func (t *Token) setOwner(caller, next core.Address) {
	prev := t.perms.owner
	t.perms.owner = next
	t.emit(core.Event{Kind: core.EventOwnershipTransferred, Caller: caller, From: prev, To: next})
	t.logger.Info("ownership transferred", "from", prev.Hex(), "to", next.Hex())
}
