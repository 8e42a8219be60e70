package token

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

var _ core.Revertible = (*Token)(nil)

// tokenRevision is the token-level half of a snapshot; the ledger keeps the
// other half under ledgerID.
type tokenRevision struct {
	id          int
	ledgerID    int
	initialized bool
	cfg         core.TokenConfig
	taxes       core.TaxRates
	perms       permissions
	gate        gate
	limits      limits
	eventsLen   int
	// antiBotID is set when the attached validator is itself revertible.
	antiBotID  int
	antiBotRev core.Revertible
}

// Snapshot opens a revision covering the token state, its ledger and a
// revertible anti-bot validator, so an execution environment can undo a call
// that succeeded here but failed later.
func (t *Token) Snapshot() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextRevID
	t.nextRevID++
	rev := tokenRevision{
		id:          id,
		ledgerID:    t.ledger.Snapshot(),
		initialized: t.initialized,
		cfg:         t.cfg.Clone(),
		taxes:       t.taxes,
		perms:       t.perms,
		gate:        t.gate,
		limits:      limits{floor: t.limits.floor, current: t.limits.current.Clone()},
		eventsLen:   len(t.events),
	}
	if r, ok := t.antiBot.(core.Revertible); ok {
		rev.antiBotRev = r
		rev.antiBotID = r.Snapshot()
	}
	t.snapshots = append(t.snapshots, rev)
	return id
}

// RevertToSnapshot restores the state captured by Snapshot(id).
func (t *Token) RevertToSnapshot(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.revisionIndex(id)
	rev := t.snapshots[idx]
	t.ledger.RevertToSnapshot(rev.ledgerID)
	if rev.antiBotRev != nil {
		rev.antiBotRev.RevertToSnapshot(rev.antiBotID)
	}
	t.initialized = rev.initialized
	t.cfg = rev.cfg
	t.taxes = rev.taxes
	t.perms = rev.perms
	t.gate = rev.gate
	t.limits = rev.limits
	if rev.eventsLen <= len(t.events) {
		t.events = t.events[:rev.eventsLen]
	}
	t.snapshots = t.snapshots[:idx]
}

// DiscardSnapshot keeps everything done since Snapshot(id).
func (t *Token) DiscardSnapshot(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.revisionIndex(id)
	rev := t.snapshots[idx]
	t.ledger.DiscardSnapshot(rev.ledgerID)
	if rev.antiBotRev != nil {
		rev.antiBotRev.DiscardSnapshot(rev.antiBotID)
	}
	t.snapshots = t.snapshots[:idx]
}

func (t *Token) revisionIndex(id int) int {
	for i := len(t.snapshots) - 1; i >= 0; i-- {
		if t.snapshots[i].id == id {
			return i
		}
	}
	panic(fmt.Errorf("token: revision id %d cannot be reverted", id))
}

// State exports the token for persistence.
func (t *Token) State() (core.TokenState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return core.TokenState{}, core.ErrNotInitialized
	}
	st := core.TokenState{
		Config:         t.cfg.Clone(),
		Taxes:          t.taxes,
		Limits:         t.limits.current.Clone(),
		TradingEnabled: t.gate.enabled(),
		Owner:          t.perms.owner,
	}
	t.ledger.ForEachBalance(func(addr core.Address, amount *uint256.Int) {
		st.Balances = append(st.Balances, core.Holding{Address: addr, Amount: amount})
	})
	t.ledger.ForEachAllowance(func(owner, spender core.Address, amount *uint256.Int) {
		st.Allowances = append(st.Allowances, core.Approval{Owner: owner, Spender: spender, Amount: amount})
	})
	return st, nil
}

// Restore rebuilds an initialized token from persisted state. The ledger (the
// default one or the one passed WithLedger) must be empty. The restored state
// is checked against the invariants before it is accepted.
func Restore(st core.TokenState, opts ...Option) (*Token, error) {
	cfg := st.Config
	if cfg.TotalSupply == nil || cfg.TotalSupply.IsZero() {
		return nil, fmt.Errorf("%w: restored supply is zero", core.ErrInvalidConfig)
	}
	supply, ok := st.Supply()
	if !ok || !supply.Eq(cfg.TotalSupply) {
		return nil, fmt.Errorf("%w: balances do not sum to total supply", core.ErrInvalidConfig)
	}
	if err := st.Taxes.Validate(); err != nil {
		return nil, err
	}
	floor := core.LimitFloor(cfg.TotalSupply)
	if st.Limits.MaxTxAmount == nil || st.Limits.MaxTxAmount.Lt(floor) {
		return nil, core.ErrMaxTxBelowFloor
	}
	if st.Limits.MaxWalletAmount == nil || st.Limits.MaxWalletAmount.Lt(floor) {
		return nil, core.ErrMaxWalletBelowFloor
	}

	t := New(cfg.Address, opts...)
	t.cfg = cfg.Clone()
	t.taxes = st.Taxes
	t.perms = permissions{owner: st.Owner, karmaDeployer: cfg.KarmaDeployer, limitedOwner: cfg.LimitedOwner}
	t.gate = gate{state: TradingDisabled}
	if st.TradingEnabled {
		t.gate.state = TradingEnabled
	}
	t.limits = newLimits(cfg.TotalSupply, st.Limits)
	for _, h := range st.Balances {
		t.ledger.AddBalance(h.Address, h.Amount)
	}
	for _, a := range st.Allowances {
		t.ledger.SetAllowance(a.Owner, a.Spender, a.Amount)
	}
	t.initialized = true
	return t, nil
}
