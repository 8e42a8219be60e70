package token

import (
	"context"

	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// TradingState is the state of the trading gate.
type TradingState int

const (
	// TradingDisabled blocks non-exempt transfers touching the pair.
	TradingDisabled TradingState = iota
	// TradingEnabled lets every transfer through the gate.
	TradingEnabled
)

// String returns the string representation of the state.
func (s TradingState) String() string {
	if s == TradingEnabled {
		return "enabled"
	}
	return "disabled"
}

type gate struct {
	state TradingState
}

func (g gate) enabled() bool { return g.state == TradingEnabled }

func (g *gate) open() error {
	if g.state == TradingEnabled {
		return core.ErrAlreadyEnabled
	}
	g.state = TradingEnabled
	return nil
}

func (g *gate) close() error {
	if g.state == TradingDisabled {
		return core.ErrAlreadyDisabled
	}
	g.state = TradingDisabled
	return nil
}

// EnableTrading opens the gate. Only the karma deployer may call it.
func (t *Token) EnableTrading(ctx context.Context, caller core.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return core.ErrNotInitialized
	}
	if !t.perms.can(caller, CapEnableTrading) {
		return core.ErrNotKarma
	}
	if err := t.gate.open(); err != nil {
		return err
	}
	t.emit(core.Event{Kind: core.EventTradingEnabled, Caller: caller})
	t.logger.Info("trading enabled", "caller", caller.Hex())
	return nil
}

// DisableTrading closes the gate. Only the fixed karma deployer may call it,
// whoever the owner currently is.
func (t *Token) DisableTrading(ctx context.Context, caller core.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return core.ErrNotInitialized
	}
	if !t.perms.can(caller, CapDisableTrading) {
		return core.ErrNotKarmaDisable
	}
	if err := t.gate.close(); err != nil {
		return err
	}
	t.emit(core.Event{Kind: core.EventTradingDisabled, Caller: caller})
	t.logger.Info("trading disabled", "caller", caller.Hex())
	return nil
}

// checkGate is the gate stage: while disabled, a transfer touching the pair
// needs an exempt endpoint.
func (v transferView) checkGate(from, to core.Address) error {
	if v.tradingEnabled || core.IsZero(v.pair) {
		return nil
	}
	if from != v.pair && to != v.pair {
		return nil
	}
	if v.exempt(from) || v.exempt(to) {
		return nil
	}
	return core.ErrTradingDisabled
}
