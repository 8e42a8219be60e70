package token

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// LimitKind selects one of the two anti-whale caps.
type LimitKind int

const (
	// LimitMaxTx is the per-transfer cap.
	LimitMaxTx LimitKind = iota
	// LimitMaxWallet is the per-holder cap.
	LimitMaxWallet
)

// String returns the string representation of the limit.
func (k LimitKind) String() string {
	if k == LimitMaxWallet {
		return "maxWalletAmount"
	}
	return "maxTxAmount"
}

func (k LimitKind) belowFloor() error {
	if k == LimitMaxWallet {
		return core.ErrMaxWalletBelowFloor
	}
	return core.ErrMaxTxBelowFloor
}

func (k LimitKind) event() core.EventKind {
	if k == LimitMaxWallet {
		return core.EventMaxWalletUpdated
	}
	return core.EventMaxTxUpdated
}

type limits struct {
	floor   *uint256.Int
	current core.Limits
}

func newLimits(supply *uint256.Int, initial core.Limits) limits {
	return limits{floor: core.LimitFloor(supply), current: initial.Clone()}
}

func (l *limits) get(k LimitKind) *uint256.Int {
	if k == LimitMaxWallet {
		return l.current.MaxWalletAmount
	}
	return l.current.MaxTxAmount
}

func (l *limits) set(k LimitKind, v *uint256.Int) {
	if k == LimitMaxWallet {
		l.current.MaxWalletAmount = v.Clone()
		return
	}
	l.current.MaxTxAmount = v.Clone()
}

// authorize applies the floor and then the caller tier. The karma deployer may
// move a limit either way; other managers (owner, limited owner) may only keep
// or raise it. Anyone else is refused.
func (l *limits) authorize(p permissions, caller core.Address, k LimitKind, next *uint256.Int) error {
	if next.Lt(l.floor) {
		return k.belowFloor()
	}
	if p.can(caller, CapLowerLimits) {
		return nil
	}
	if !p.can(caller, CapRaiseLimits) {
		return core.ErrNotLimitsManager
	}
	if next.Lt(l.get(k)) {
		return core.ErrNotKarmaDeployer
	}
	return nil
}

// UpdateMaxTxAmount changes the per-transfer cap.
func (t *Token) UpdateMaxTxAmount(ctx context.Context, caller core.Address, v *uint256.Int) error {
	return t.updateLimit(ctx, caller, LimitMaxTx, v)
}

// UpdateMaxWalletAmount changes the per-holder cap.
func (t *Token) UpdateMaxWalletAmount(ctx context.Context, caller core.Address, v *uint256.Int) error {
	return t.updateLimit(ctx, caller, LimitMaxWallet, v)
}

func (t *Token) updateLimit(ctx context.Context, caller core.Address, k LimitKind, v *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v == nil {
		v = core.Zero()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return core.ErrNotInitialized
	}
	if err := t.limits.authorize(t.perms, caller, k, v); err != nil {
		t.logger.Debug("limit update refused", "limit", k.String(), "caller", caller.Hex(), "value", v.Dec(), "error", err)
		return err
	}
	prev := t.limits.get(k).Clone()
	t.limits.set(k, v)
	t.emit(core.Event{Kind: k.event(), Caller: caller, Amount: v.Clone(), Detail: prev.Dec()})
	t.logger.Info("limit updated", "limit", k.String(), "caller", caller.Hex(), "from", prev.Dec(), "to", v.Dec())
	return nil
}

// checkMaxTx is the max-tx stage.
func (v transferView) checkMaxTx(from, to core.Address, amount *uint256.Int) error {
	if v.exempt(from) || v.exempt(to) {
		return nil
	}
	if amount.Gt(v.limits.MaxTxAmount) {
		return core.ErrMaxTxExceeded
	}
	return nil
}

// checkMaxWallet is the max-wallet stage; it runs after tax so it sees the
// amount the recipient actually receives. The pair holds liquidity and is
// never capped.
func (v transferView) checkMaxWallet(to core.Address, recipientBalance, net *uint256.Int) error {
	if v.exempt(to) || to == v.pair {
		return nil
	}
	after, overflow := new(uint256.Int).AddOverflow(recipientBalance, net)
	if overflow || after.Gt(v.limits.MaxWalletAmount) {
		return core.ErrMaxWalletExceeded
	}
	return nil
}
