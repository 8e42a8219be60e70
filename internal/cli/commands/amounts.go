package commands

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// parseAmountArg reads a command-line amount. "max" is the infinite amount.
// With units set, the value is in whole tokens and may carry up to decimals
// fractional digits; otherwise it is in base units.
func parseAmountArg(s string, units bool, decimals uint8) (*uint256.Int, error) {
	if strings.EqualFold(strings.TrimSpace(s), "max") {
		return core.MaxAmount(), nil
	}
	if !units {
		return core.ParseAmount(s)
	}
	return parseUnits(s, decimals)
}

// parseUnits converts a decimal token amount such as "1.5" into base units.
func parseUnits(s string, decimals uint8) (*uint256.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if s == "" || s == "." {
		return nil, fmt.Errorf("empty amount")
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("invalid amount %q: more than %d decimal places", s, decimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := strings.TrimLeft(whole+frac+strings.Repeat("0", int(decimals)-len(frac)), "0")
	if digits == "" {
		return core.Zero(), nil
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// formatUnits renders base units as a decimal token amount, trimming
// trailing zeros.
func formatUnits(v *uint256.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	if core.IsMaxAmount(v) {
		return "max"
	}
	scale := core.Units(1, decimals)
	whole, frac := new(uint256.Int).DivMod(v, scale, new(uint256.Int))
	if frac.IsZero() {
		return whole.Dec()
	}
	fs := frac.Dec()
	fs = strings.Repeat("0", int(decimals)-len(fs)) + fs
	return whole.Dec() + "." + strings.TrimRight(fs, "0")
}
