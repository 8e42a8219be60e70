package token

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// Initialize performs the one-time setup: it binds the identity, resolves the
// pair, records taxes, limits and roles, and mints the whole supply to caller,
// who becomes the owner. Every later call fails with ErrAlreadyInitialized.
func (t *Token) Initialize(ctx context.Context, caller core.Address, p core.InitParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return core.ErrAlreadyInitialized
	}
	if core.IsZero(caller) {
		return fmt.Errorf("%w: deployer is the zero address", core.ErrInvalidConfig)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	pair := p.Pair
	if t.resolver != nil && !core.IsZero(p.Router) {
		resolved, err := t.resolver.ResolvePair(ctx, t.address)
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrPairResolution, err)
		}
		pair = resolved
	}

	t.cfg = core.TokenConfig{
		Address:              t.address,
		Name:                 p.Name,
		Symbol:               p.Symbol,
		Decimals:             p.Decimals,
		TotalSupply:          p.Supply.Clone(),
		Router:               p.Router,
		Pair:                 pair,
		KarmaDeployer:        p.KarmaDeployer,
		LimitedOwner:         p.LimitedOwner,
		MarketingWallet:      p.MarketingWallet,
		RewardToken:          p.RewardToken,
		AntiBot:              p.AntiBot,
		KarmaCampaignFactory: p.KarmaCampaignFactory,
	}
	t.taxes = core.TaxRates{Buy: p.BuyTax, Sell: p.SellTax}
	t.perms = permissions{
		owner:         caller,
		karmaDeployer: p.KarmaDeployer,
		limitedOwner:  p.LimitedOwner,
	}
	t.gate = gate{state: TradingDisabled}
	t.limits = newLimits(t.cfg.TotalSupply, core.Limits{MaxTxAmount: p.MaxTx, MaxWalletAmount: p.MaxWallet})

	t.ledger.AddBalance(caller, t.cfg.TotalSupply)
	t.initialized = true

	t.emit(core.Event{Kind: core.EventInitialized, Caller: caller, Detail: p.Symbol})
	t.emit(core.Event{Kind: core.EventTransfer, Caller: caller, To: caller, Amount: t.cfg.TotalSupply.Clone()})
	t.emit(core.Event{Kind: core.EventOwnershipTransferred, Caller: caller, To: caller})

	t.logger.Info("token initialized",
		"symbol", p.Symbol,
		"supply", t.cfg.TotalSupply.Dec(),
		"pair", pair.Hex(),
		"owner", caller.Hex(),
		"karma_deployer", p.KarmaDeployer.Hex(),
	)
	return nil
}
