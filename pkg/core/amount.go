package core

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// TaxDenominator is the scale tax rates are expressed against (per-mille).
const TaxDenominator = 1000

// LimitFloorDivisor derives the anti-whale floor: totalSupply / 10_000 (0.01%).
const LimitFloorDivisor = 10_000

// Zero returns a fresh zero amount.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// MaxAmount returns 2^256-1, the "infinite" allowance.
func MaxAmount() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

// IsMaxAmount reports whether v is the infinite allowance.
func IsMaxAmount(v *uint256.Int) bool {
	return v != nil && v.Eq(MaxAmount())
}

// ParseAmount parses a base-unit amount written in decimal or 0x-prefixed hex.
// Underscores are accepted as digit separators.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := uint256.FromHex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		return v, nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// MustParseAmount is like ParseAmount but panics on malformed input.
func MustParseAmount(s string) *uint256.Int {
	v, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Units returns n * 10^decimals.
func Units(n uint64, decimals uint8) *uint256.Int {
	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	return new(uint256.Int).Mul(uint256.NewInt(n), scale)
}

// LimitFloor returns the smallest admissible maxTx/maxWallet for a supply.
func LimitFloor(totalSupply *uint256.Int) *uint256.Int {
	return new(uint256.Int).Div(totalSupply, uint256.NewInt(LimitFloorDivisor))
}

// cloneOrZero copies v, treating nil as zero.
func cloneOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return Zero()
	}
	return v.Clone()
}
