// Package scenario replays scripted token lifecycles against an in-memory AMM.
//
// A scenario is a YAML document: a token definition, native balances to fund
// and an ordered list of steps. Each step either succeeds or, when it names
// expect_error, fails with a matching revert reason. Amounts are base units
// written as decimal or 0x-hex strings.
//
//	name: launch
//	deployer: "0xf39F..."
//	token:
//	  name: Karma
//	  symbol: KRM
//	  supply: "1000000000000000000000000"
//	  ...
//	fund:
//	  "0xf39F...": "10000000000000000000000"
//	steps:
//	  - {action: approve, as: "0xf39F...", spender: router, amount: max}
//	  - {action: add_liquidity, as: "0xf39F...", amount: "1000000...", eth: "100000..."}
//	  - {action: buy, as: "0x7099...", eth: "1000000000000000", expect_error: "Trading not enabled"}
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/internal/amm"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"gopkg.in/yaml.v3"
)

// DefaultTokenAddress is used when the scenario does not place the token.
const DefaultTokenAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

// Action names a step.
type Action string

// Supported actions.
const (
	ActionApprove           Action = "approve"
	ActionTransfer          Action = "transfer"
	ActionTransferFrom      Action = "transfer_from"
	ActionAddLiquidity      Action = "add_liquidity"
	ActionBuy               Action = "buy"
	ActionSell              Action = "sell"
	ActionEnableTrading     Action = "enable_trading"
	ActionDisableTrading    Action = "disable_trading"
	ActionSetMaxTx          Action = "set_max_tx"
	ActionSetMaxWallet      Action = "set_max_wallet"
	ActionTransferOwnership Action = "transfer_ownership"
	ActionRenounceOwnership Action = "renounce_ownership"
	ActionBlock             Action = "block"
	ActionUnblock           Action = "unblock"
	ActionExpectBalance     Action = "expect_balance"
)

var knownActions = map[Action]struct{}{
	ActionApprove: {}, ActionTransfer: {}, ActionTransferFrom: {}, ActionAddLiquidity: {},
	ActionBuy: {}, ActionSell: {}, ActionEnableTrading: {}, ActionDisableTrading: {},
	ActionSetMaxTx: {}, ActionSetMaxWallet: {}, ActionTransferOwnership: {},
	ActionRenounceOwnership: {}, ActionBlock: {}, ActionUnblock: {}, ActionExpectBalance: {},
}

// Tax is one side of the tax schedule, in per-mille.
type Tax struct {
	Marketing  uint64 `yaml:"marketing"`
	Reflection uint64 `yaml:"reflection"`
}

// TokenSpec defines the token under test.
type TokenSpec struct {
	Address              string `yaml:"address"`
	Name                 string `yaml:"name"`
	Symbol               string `yaml:"symbol"`
	Decimals             uint8  `yaml:"decimals"`
	Supply               string `yaml:"supply"`
	MaxTx                string `yaml:"max_tx"`
	MaxWallet            string `yaml:"max_wallet"`
	KarmaDeployer        string `yaml:"karma_deployer"`
	BuyTax               Tax    `yaml:"buy_tax"`
	SellTax              Tax    `yaml:"sell_tax"`
	MarketingWallet      string `yaml:"marketing_wallet"`
	RewardToken          string `yaml:"reward_token"`
	AntiBot              string `yaml:"antibot"`
	LimitedOwner         string `yaml:"limited_owner"`
	KarmaCampaignFactory string `yaml:"karma_campaign_factory"`
}

// AntiBotSpec configures the validator attached when token.antibot is set.
type AntiBotSpec struct {
	Cooldown uint64   `yaml:"cooldown"`
	Blocked  []string `yaml:"blocked"`
	Exempt   []string `yaml:"exempt"`
}

// Step is one scripted call.
type Step struct {
	Action      Action `yaml:"action"`
	As          string `yaml:"as"`
	From        string `yaml:"from"`
	To          string `yaml:"to"`
	Spender     string `yaml:"spender"`
	Address     string `yaml:"address"`
	Amount      string `yaml:"amount"`
	ETH         string `yaml:"eth"`
	ExpectError string `yaml:"expect_error"`
	Note        string `yaml:"note"`
}

// Scenario is a parsed scenario file.
type Scenario struct {
	Name     string            `yaml:"name"`
	Deployer string            `yaml:"deployer"`
	Token    TokenSpec         `yaml:"token"`
	AntiBot  AntiBotSpec       `yaml:"antibot"`
	Fund     map[string]string `yaml:"fund"`
	Steps    []Step            `yaml:"steps"`

	// Path is the file the scenario was loaded from, if any.
	Path string `yaml:"-"`
}

// Load reads and parses a scenario file. The scenario name defaults to the
// file's base name.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.Path = path
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Parse decodes a scenario document and checks its structure.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if _, err := core.ParseAddress(sc.Deployer); err != nil {
		return fmt.Errorf("deployer: %w", err)
	}
	if sc.Token.Supply == "" {
		return fmt.Errorf("token.supply is required")
	}
	for i, st := range sc.Steps {
		if _, ok := knownActions[st.Action]; !ok {
			return fmt.Errorf("step %d: unknown action %q", i+1, st.Action)
		}
	}
	return nil
}

// params builds the Initialize parameters.
func (sc *Scenario) params() (core.Address, core.InitParams, error) {
	var p parser
	ts := sc.Token

	tokenAddr := p.address("token.address", orDefault(ts.Address, DefaultTokenAddress))
	params := core.InitParams{
		Name:                 ts.Name,
		Symbol:               ts.Symbol,
		Decimals:             ts.Decimals,
		Supply:               p.amount("token.supply", ts.Supply),
		MaxTx:                p.optionalAmount("token.max_tx", ts.MaxTx),
		MaxWallet:            p.optionalAmount("token.max_wallet", ts.MaxWallet),
		Router:               amm.RouterAddress,
		KarmaDeployer:        p.optionalAddress("token.karma_deployer", orDefault(ts.KarmaDeployer, sc.Deployer)),
		BuyTax:               core.TaxRate{Marketing: ts.BuyTax.Marketing, Reflection: ts.BuyTax.Reflection},
		SellTax:              core.TaxRate{Marketing: ts.SellTax.Marketing, Reflection: ts.SellTax.Reflection},
		MarketingWallet:      p.optionalAddress("token.marketing_wallet", ts.MarketingWallet),
		RewardToken:          p.optionalAddress("token.reward_token", ts.RewardToken),
		AntiBot:              p.optionalAddress("token.antibot", ts.AntiBot),
		LimitedOwner:         p.optionalAddress("token.limited_owner", ts.LimitedOwner),
		KarmaCampaignFactory: p.optionalAddress("token.karma_campaign_factory", ts.KarmaCampaignFactory),
	}
	if params.Decimals == 0 {
		params.Decimals = 18
	}
	if p.err != nil {
		return core.Address{}, core.InitParams{}, p.err
	}
	return tokenAddr, params, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// parser keeps the first conversion error so a block of fields can be read
// without checking each one.
type parser struct {
	err error
}

func (p *parser) fail(field string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s: %w", field, err)
	}
}

func (p *parser) address(field, s string) core.Address {
	a, err := core.ParseAddress(resolveAlias(s))
	if err != nil {
		p.fail(field, err)
	}
	return a
}

func (p *parser) optionalAddress(field, s string) core.Address {
	if s == "" {
		return core.ZeroAddress
	}
	return p.address(field, s)
}

func (p *parser) amount(field, s string) *uint256.Int {
	if strings.EqualFold(strings.TrimSpace(s), "max") {
		return core.MaxAmount()
	}
	v, err := core.ParseAmount(s)
	if err != nil {
		p.fail(field, err)
		return core.Zero()
	}
	return v
}

func (p *parser) optionalAmount(field, s string) *uint256.Int {
	if s == "" {
		return nil
	}
	return p.amount(field, s)
}

// resolveAlias maps the names of the AMM contracts to their addresses.
func resolveAlias(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "router":
		return amm.RouterAddress.Hex()
	case "weth":
		return amm.WETHAddress.Hex()
	}
	return s
}
