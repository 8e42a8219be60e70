// Package config provides configuration management for the karmatoken CLI.
//
// Values are layered with koanf: built-in defaults, then karmatoken.yaml, then
// KARMATOKEN_* environment variables, then explicitly set flags.
package config

import (
	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/internal/antibot"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// Default configuration values.
const (
	DefaultStateFile    = ".karmatoken/state.db"
	DefaultOutput       = "auto"
	DefaultLogLevel     = "warn"
	DefaultDecimals     = 18
	DefaultTokenAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

// configFileNames are searched in order when no --config is given.
var configFileNames = []string{"karmatoken.yaml", "karmatoken.yml"}

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string        `koanf:"state_path"`
	As           core.Address  `koanf:"as"`
	OutputFormat string        `koanf:"output"`
	LogLevel     string        `koanf:"log_level"`
	Verbose      bool          `koanf:"verbose"`
	Token        TokenConfig   `koanf:"token"`
	AntiBot      AntiBotConfig `koanf:"antibot"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// TaxConfig is one side of the tax schedule, in per-mille.
type TaxConfig struct {
	Marketing  uint64 `koanf:"marketing"`
	Reflection uint64 `koanf:"reflection"`
}

// Rate converts to the core representation.
func (c TaxConfig) Rate() core.TaxRate {
	return core.TaxRate{Marketing: c.Marketing, Reflection: c.Reflection}
}

// TokenConfig holds the initialization parameters used by `karmatoken init`.
type TokenConfig struct {
	Address              core.Address `koanf:"address"`
	Name                 string       `koanf:"name"`
	Symbol               string       `koanf:"symbol"`
	Decimals             uint8        `koanf:"decimals"`
	Supply               *uint256.Int `koanf:"supply"`
	MaxTx                *uint256.Int `koanf:"max_tx"`
	MaxWallet            *uint256.Int `koanf:"max_wallet"`
	Router               core.Address `koanf:"router"`
	Pair                 core.Address `koanf:"pair"`
	KarmaDeployer        core.Address `koanf:"karma_deployer"`
	BuyTax               TaxConfig    `koanf:"buy_tax"`
	SellTax              TaxConfig    `koanf:"sell_tax"`
	MarketingWallet      core.Address `koanf:"marketing_wallet"`
	RewardToken          core.Address `koanf:"reward_token"`
	AntiBot              core.Address `koanf:"antibot"`
	LimitedOwner         core.Address `koanf:"limited_owner"`
	KarmaCampaignFactory core.Address `koanf:"karma_campaign_factory"`
}

// InitParams converts the section into Initialize parameters.
func (c TokenConfig) InitParams() core.InitParams {
	return core.InitParams{
		Name:                 c.Name,
		Symbol:               c.Symbol,
		Decimals:             c.Decimals,
		Supply:               c.Supply,
		MaxTx:                c.MaxTx,
		MaxWallet:            c.MaxWallet,
		Router:               c.Router,
		Pair:                 c.Pair,
		KarmaDeployer:        c.KarmaDeployer,
		BuyTax:               c.BuyTax.Rate(),
		SellTax:              c.SellTax.Rate(),
		MarketingWallet:      c.MarketingWallet,
		RewardToken:          c.RewardToken,
		AntiBot:              c.AntiBot,
		LimitedOwner:         c.LimitedOwner,
		KarmaCampaignFactory: c.KarmaCampaignFactory,
	}
}

// AntiBotConfig configures the local anti-bot validator. It is only consulted
// when token.antibot names an address.
type AntiBotConfig struct {
	Cooldown uint64         `koanf:"cooldown"`
	Blocked  []core.Address `koanf:"blocked"`
	Exempt   []core.Address `koanf:"exempt"`
}

// Options converts the section into validator options.
func (c AntiBotConfig) Options() []antibot.Option {
	var opts []antibot.Option
	if c.Cooldown > 0 {
		opts = append(opts, antibot.WithCooldown(c.Cooldown))
	}
	if len(c.Blocked) > 0 {
		opts = append(opts, antibot.WithBlocked(c.Blocked...))
	}
	if len(c.Exempt) > 0 {
		opts = append(opts, antibot.WithExempt(c.Exempt...))
	}
	return opts
}
