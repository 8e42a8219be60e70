package token

import (
	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

var taxDenominator = uint256.NewInt(core.TaxDenominator)

// classify compares both endpoints against the pair cached at initialization.
func classify(pair, from, to core.Address) core.Direction {
	if core.IsZero(pair) {
		return core.DirectionNeutral
	}
	switch {
	case to == pair:
		return core.DirectionSell
	case from == pair:
		return core.DirectionBuy
	default:
		return core.DirectionNeutral
	}
}

// computeTax splits amount by rate. Each portion rounds down independently, so
// the recipient keeps the rounding dust.
func computeTax(dir core.Direction, from, to core.Address, amount *uint256.Int, rate core.TaxRate) (core.TaxSplit, error) {
	split := core.TaxSplit{
		Direction:  dir,
		From:       from,
		To:         to,
		Gross:      amount.Clone(),
		Marketing:  core.Zero(),
		Reflection: core.Zero(),
		Net:        amount.Clone(),
	}
	if rate.IsZero() || amount.IsZero() {
		return split, nil
	}
	if err := rate.Validate(); err != nil {
		return core.TaxSplit{}, err
	}

	var overflow bool
	if split.Marketing, overflow = portion(amount, rate.Marketing); overflow {
		return core.TaxSplit{}, core.ErrMathOverflow
	}
	if split.Reflection, overflow = portion(amount, rate.Reflection); overflow {
		return core.TaxSplit{}, core.ErrMathOverflow
	}
	split.Net.Sub(split.Net, split.Tax())
	return split, nil
}

func portion(amount *uint256.Int, rate uint64) (*uint256.Int, bool) {
	if rate == 0 {
		return core.Zero(), false
	}
	return new(uint256.Int).MulDivOverflow(amount, uint256.NewInt(rate), taxDenominator)
}

// taxStage classifies the transfer and applies the matching side of the
// schedule. Exempt endpoints and tokens without a marketing wallet are not taxed.
func (v transferView) taxStage(from, to core.Address, amount *uint256.Int) (core.TaxSplit, error) {
	dir := classify(v.pair, from, to)
	rate := core.TaxRate{}
	if v.taxesEnabled && !v.exempt(from) && !v.exempt(to) {
		switch dir {
		case core.DirectionBuy:
			rate = v.taxes.Buy
		case core.DirectionSell:
			rate = v.taxes.Sell
		}
	}
	return computeTax(dir, from, to, amount, rate)
}
