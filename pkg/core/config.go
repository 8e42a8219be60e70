package core

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/holiman/uint256"
)

// TaxRate is one side (buy or sell) of the tax schedule, in TaxDenominator units.
type TaxRate struct {
	Marketing  uint64
	Reflection uint64
}

// Total returns the combined rate, saturating at math.MaxUint64.
func (r TaxRate) Total() uint64 {
	sum, carry := bits.Add64(r.Marketing, r.Reflection, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// IsZero reports whether the side collects nothing.
func (r TaxRate) IsZero() bool {
	return r.Marketing == 0 && r.Reflection == 0
}

// Validate rejects a side that would take more than the whole amount.
func (r TaxRate) Validate() error {
	if r.Marketing > TaxDenominator || r.Reflection > TaxDenominator || r.Total() > TaxDenominator {
		return ErrTaxTooHigh
	}
	return nil
}

// TaxRates is the immutable tax schedule.
type TaxRates struct {
	Buy  TaxRate
	Sell TaxRate
}

// Validate rejects schedules that would take more than the whole amount.
func (t TaxRates) Validate() error {
	if err := t.Buy.Validate(); err != nil {
		return err
	}
	return t.Sell.Validate()
}

// Limits are the mutable anti-whale caps.
type Limits struct {
	MaxTxAmount     *uint256.Int
	MaxWalletAmount *uint256.Int
}

// Clone returns a deep copy.
func (l Limits) Clone() Limits {
	return Limits{
		MaxTxAmount:     cloneOrZero(l.MaxTxAmount),
		MaxWalletAmount: cloneOrZero(l.MaxWalletAmount),
	}
}

// TokenConfig is the identity and wiring fixed at initialization.
type TokenConfig struct {
	// Address is the token's own account. It holds the reflection pool.
	Address              Address
	Name                 string
	Symbol               string
	Decimals             uint8
	TotalSupply          *uint256.Int
	Router               Address
	Pair                 Address
	KarmaDeployer        Address
	LimitedOwner         Address
	MarketingWallet      Address
	RewardToken          Address
	AntiBot              Address
	KarmaCampaignFactory Address
}

// Clone returns a deep copy.
func (c TokenConfig) Clone() TokenConfig {
	c.TotalSupply = cloneOrZero(c.TotalSupply)
	return c
}

// TaxesEnabled reports whether transfers through the pair are taxed at all.
// Without a marketing wallet there is nowhere to route the tax.
func (c TokenConfig) TaxesEnabled() bool {
	return !IsZero(c.MarketingWallet)
}

// InitParams carries everything Initialize accepts.
type InitParams struct {
	Name      string
	Symbol    string
	Decimals  uint8
	Supply    *uint256.Int
	MaxTx     *uint256.Int
	MaxWallet *uint256.Int
	Router    Address
	// Pair is used verbatim when no PairResolver is attached.
	Pair                 Address
	KarmaDeployer        Address
	BuyTax               TaxRate
	SellTax              TaxRate
	MarketingWallet      Address
	RewardToken          Address
	AntiBot              Address
	LimitedOwner         Address
	KarmaCampaignFactory Address
}

// Validate checks the parameters that do not depend on token state.
func (p InitParams) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(p.Symbol) == "" {
		problems = append(problems, "symbol is required")
	}
	if p.Supply == nil || p.Supply.IsZero() {
		problems = append(problems, "supply must be positive")
	}
	if IsZero(p.KarmaDeployer) {
		problems = append(problems, "karma deployer is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	floor := LimitFloor(p.Supply)
	if p.MaxTx == nil || p.MaxTx.Lt(floor) {
		return ErrMaxTxBelowFloor
	}
	if p.MaxWallet == nil || p.MaxWallet.Lt(floor) {
		return ErrMaxWalletBelowFloor
	}
	return TaxRates{Buy: p.BuyTax, Sell: p.SellTax}.Validate()
}
