package output

// JSON output types. Amounts are decimal strings in base units; addresses are
// checksummed hex.

// TaxInfo is one side of the tax schedule in per-mille.
type TaxInfo struct {
	Marketing  uint64 `json:"marketing"`
	Reflection uint64 `json:"reflection"`
}

// TokenInfo is the output of init and info.
type TokenInfo struct {
	Address              string   `json:"address"`
	Name                 string   `json:"name"`
	Symbol               string   `json:"symbol"`
	Decimals             uint8    `json:"decimals"`
	TotalSupply          string   `json:"total_supply"`
	Owner                string   `json:"owner"`
	KarmaDeployer        string   `json:"karma_deployer"`
	LimitedOwner         string   `json:"limited_owner"`
	Router               string   `json:"router"`
	Pair                 string   `json:"pair"`
	MarketingWallet      string   `json:"marketing_wallet"`
	RewardToken          string   `json:"reward_token"`
	AntiBot              string   `json:"antibot"`
	KarmaCampaignFactory string   `json:"karma_campaign_factory"`
	TradingEnabled       bool     `json:"trading_enabled"`
	MaxTxAmount          string   `json:"max_tx_amount"`
	MaxWalletAmount      string   `json:"max_wallet_amount"`
	BuyTax               TaxInfo  `json:"buy_tax"`
	SellTax              TaxInfo  `json:"sell_tax"`
	TaxesEnabled         bool     `json:"taxes_enabled"`
	As                   string   `json:"as,omitempty"`
	Roles                []string `json:"roles,omitempty"`
}

// BalanceInfo is one row of the balance output.
type BalanceInfo struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Units   string `json:"units"`
}

// TxResult is the output of a successful mutating command.
type TxResult struct {
	Action string `json:"action"`
	Caller string `json:"caller"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Amount string `json:"amount,omitempty"`
	// Events lists the journal kinds the action produced, in order.
	Events []string `json:"events"`
}

// QuoteInfo is the output of quote.
type QuoteInfo struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Direction  string `json:"direction"`
	Amount     string `json:"amount"`
	Net        string `json:"net"`
	Marketing  string `json:"marketing"`
	Reflection string `json:"reflection"`
}

// EventInfo is one journal entry.
type EventInfo struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Caller    string `json:"caller"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

// VersionInfo is the output of version.
type VersionInfo struct {
	Version           string `json:"version"`
	Commit            string `json:"commit"`
	BuildDate         string `json:"build_date"`
	GoVersion         string `json:"go_version"`
	Platform          string `json:"platform"`
	TaxDenominator    uint64 `json:"tax_denominator"`
	LimitFloorDivisor uint64 `json:"limit_floor_divisor"`
}
