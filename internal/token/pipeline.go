package token

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// transferView is every piece of state a transfer decision depends on, captured
// before the first ledger write.
type transferView struct {
	self           core.Address
	pair           core.Address
	marketing      core.Address
	antiBot        core.Address
	tradingEnabled bool
	taxesEnabled   bool
	taxes          core.TaxRates
	limits         core.Limits
	perms          permissions
}

func (v transferView) exempt(addr core.Address) bool {
	return v.perms.exempt(addr, v.self)
}

// view captures the current decision state. Caller holds mu.
func (t *Token) view() transferView {
	return transferView{
		self:           t.address,
		pair:           t.cfg.Pair,
		marketing:      t.cfg.MarketingWallet,
		antiBot:        t.cfg.AntiBot,
		tradingEnabled: t.gate.enabled(),
		taxesEnabled:   t.cfg.TaxesEnabled(),
		taxes:          t.taxes,
		limits:         t.limits.current.Clone(),
		perms:          t.perms,
	}
}

// transferContext threads one transfer through the stages.
type transferContext struct {
	ctx    context.Context
	view   transferView
	from   core.Address
	to     core.Address
	amount *uint256.Int
	split  core.TaxSplit
}

// stage is one validation step. Stages run in order and the first error wins.
type stage struct {
	name string
	run  func(t *Token, tc *transferContext) error
}

var transferStages = []stage{
	{name: "gate", run: func(_ *Token, tc *transferContext) error {
		return tc.view.checkGate(tc.from, tc.to)
	}},
	{name: "antibot", run: func(t *Token, tc *transferContext) error {
		return t.checkAntiBot(tc)
	}},
	{name: "max_tx", run: func(_ *Token, tc *transferContext) error {
		return tc.view.checkMaxTx(tc.from, tc.to, tc.amount)
	}},
	{name: "tax", run: func(_ *Token, tc *transferContext) error {
		split, err := tc.view.taxStage(tc.from, tc.to, tc.amount)
		if err != nil {
			return err
		}
		tc.split = split
		return nil
	}},
	{name: "max_wallet", run: func(t *Token, tc *transferContext) error {
		return tc.view.checkMaxWallet(tc.to, t.ledger.BalanceOf(tc.to), tc.split.Net)
	}},
}

// antiBotApplies reports whether the validator is consulted for tc.
func (t *Token) antiBotApplies(tc *transferContext) bool {
	if t.antiBot == nil || core.IsZero(tc.view.antiBot) {
		return false
	}
	return !tc.view.exempt(tc.from) && !tc.view.exempt(tc.to)
}

// checkAntiBot consults the validator when the configuration names one and a
// validator is attached.
func (t *Token) checkAntiBot(tc *transferContext) error {
	if !t.antiBotApplies(tc) {
		return nil
	}
	ok, err := t.antiBot.Allow(tc.ctx, tc.from, tc.to, tc.amount.Clone())
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrAntiBotDenied, err)
	}
	if !ok {
		return core.ErrAntiBotDenied
	}
	return nil
}

// validate runs the stages without touching the ledger. Caller holds mu.
func (t *Token) validate(ctx context.Context, from, to core.Address, amount *uint256.Int) (*transferContext, error) {
	if core.IsZero(from) {
		return nil, core.ErrTransferFromZero
	}
	if core.IsZero(to) {
		return nil, core.ErrTransferToZero
	}
	if amount == nil {
		amount = core.Zero()
	}
	if t.ledger.BalanceOf(from).Lt(amount) {
		return nil, core.ErrInsufficientBalance
	}

	tc := &transferContext{ctx: ctx, view: t.view(), from: from, to: to, amount: amount.Clone()}
	for _, s := range transferStages {
		if err := s.run(t, tc); err != nil {
			t.logger.Debug("transfer rejected",
				"stage", s.name,
				"from", from.Hex(),
				"to", to.Hex(),
				"amount", amount.Dec(),
				"error", err,
			)
			return nil, err
		}
	}
	return tc, nil
}

// transfer validates and commits one transfer. Caller holds mu.
func (t *Token) transfer(ctx context.Context, caller, from, to core.Address, amount *uint256.Int) (core.TaxSplit, error) {
	tc, err := t.validate(ctx, from, to, amount)
	if err != nil {
		return core.TaxSplit{}, err
	}
	split := tc.split

	snap := t.ledger.Snapshot()
	if err := t.commit(tc); err != nil {
		t.ledger.RevertToSnapshot(snap)
		t.logger.Warn("transfer reverted", "from", from.Hex(), "to", to.Hex(), "amount", split.Gross.Dec(), "error", err)
		return core.TaxSplit{}, err
	}
	t.ledger.DiscardSnapshot(snap)

	t.emit(core.Event{Kind: core.EventTransfer, Caller: caller, From: from, To: to, Amount: split.Net.Clone()})
	if !split.Marketing.IsZero() {
		t.emit(core.Event{Kind: core.EventTransfer, Caller: caller, From: from, To: tc.view.marketing, Amount: split.Marketing.Clone()})
	}
	if !split.Reflection.IsZero() {
		t.emit(core.Event{Kind: core.EventTransfer, Caller: caller, From: from, To: t.address, Amount: split.Reflection.Clone()})
	}
	if !split.Tax().IsZero() {
		t.emit(core.Event{Kind: core.EventTaxCollected, Caller: caller, From: from, To: to, Amount: split.Tax(), Detail: split.Direction.String()})
	}

	t.logger.Debug("transfer committed",
		"direction", split.Direction.String(),
		"from", from.Hex(),
		"to", to.Hex(),
		"gross", split.Gross.Dec(),
		"net", split.Net.Dec(),
		"tax", split.Tax().Dec(),
	)
	return split, nil
}

// commit performs the ledger mutation and the downstream distribution. Runs
// inside a ledger snapshot.
func (t *Token) commit(tc *transferContext) error {
	split := tc.split
	if err := t.ledger.SubBalance(tc.from, split.Gross); err != nil {
		return err
	}
	t.ledger.AddBalance(tc.to, split.Net)
	t.ledger.AddBalance(tc.view.marketing, split.Marketing)
	t.ledger.AddBalance(t.address, split.Reflection)

	if t.distributor != nil && !split.Reflection.IsZero() {
		if err := t.distributor.Distribute(tc.ctx, split); err != nil {
			return fmt.Errorf("%w: %w", core.ErrDistributionFailed, err)
		}
	}
	if obs, ok := t.antiBot.(core.TransferObserver); ok && t.antiBotApplies(tc) {
		obs.Observe(tc.ctx, tc.from, tc.to, split.Gross.Clone())
	}
	return nil
}
