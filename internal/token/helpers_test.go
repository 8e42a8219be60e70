package token

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/internal/testutil"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/stretchr/testify/require"
)

var (
	self      = core.MustParseAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	deployer  = core.MustParseAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	limited   = core.MustParseAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	pairAddr  = core.MustParseAddress("0x00000000000000000000000000000000000000aa")
	marketing = core.MustParseAddress("0xe422C2757AD02bb90f44cA32976eb2B07086cad0")
	alice     = core.MustParseAddress("0x00000000000000000000000000000000000a11ce")
	bob       = core.MustParseAddress("0x0000000000000000000000000000000000000b0b")
	stranger  = core.MustParseAddress("0x000000000000000000000000000000000000dead")
)

func testSupply() *uint256.Int { return core.Units(1_000_000, 18) }

func supplyDiv(n uint64) *uint256.Int {
	return new(uint256.Int).Div(testSupply(), uint256.NewInt(n))
}

func tokens(n uint64) *uint256.Int { return core.Units(n, 18) }

func defaultParams() core.InitParams {
	return core.InitParams{
		Name:            "A A A",
		Symbol:          "aaa",
		Decimals:        18,
		Supply:          testSupply(),
		MaxTx:           supplyDiv(1000),
		MaxWallet:       supplyDiv(500),
		Pair:            pairAddr,
		KarmaDeployer:   deployer,
		BuyTax:          core.TaxRate{Marketing: 50},
		SellTax:         core.TaxRate{Marketing: 150},
		MarketingWallet: marketing,
		LimitedOwner:    limited,
	}
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// newTestToken initializes a token with deployer as owner and karma deployer.
func newTestToken(t *testing.T, mutate func(*core.InitParams), opts ...Option) *Token {
	t.Helper()
	p := defaultParams()
	if mutate != nil {
		mutate(&p)
	}
	opts = append([]Option{WithLogger(testutil.NewTestLogger(t)), WithClock(func() time.Time { return fixedNow })}, opts...)
	tok := New(self, opts...)
	require.NoError(t, tok.Initialize(context.Background(), deployer, p))
	return tok
}

// fund moves amount from the deployer, which is exempt from every stage.
func fund(t *testing.T, tok *Token, to core.Address, amount *uint256.Int) {
	t.Helper()
	require.NoError(t, tok.Transfer(context.Background(), deployer, to, amount))
}
