package core

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address identifies an account: a holder, a privileged role, the token itself
// or an AMM contract.
type Address = common.Address

// ZeroAddress is the unset address.
var ZeroAddress = Address{}

// ParseAddress parses a 0x-prefixed hex address.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return ZeroAddress, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// MustParseAddress is like ParseAddress but panics on malformed input.
// Intended for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero reports whether a is the zero address.
func IsZero(a Address) bool {
	return a == ZeroAddress
}
