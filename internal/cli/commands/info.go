package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/leapstack-labs/karmatoken/internal/token"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show token configuration, limits and trading state",
		Long: `Show the token's fixed configuration, tax schedule, current limits and
trading state. With --as, also list the roles that identity holds.

Output adapts to environment:
  - Terminal: Styled tables
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # Show the token
  karmatoken info

  # Show the roles held by an address
  karmatoken info --as 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return renderInfo(cc, cc.Token, "")
		},
	}
	return cmd
}

func tokenInfo(tok *token.Token, as core.Address) output.TokenInfo {
	cfg := tok.Config()
	taxes := tok.Taxes()
	info := output.TokenInfo{
		Address:              cfg.Address.Hex(),
		Name:                 cfg.Name,
		Symbol:               cfg.Symbol,
		Decimals:             cfg.Decimals,
		TotalSupply:          cfg.TotalSupply.Dec(),
		Owner:                tok.Owner().Hex(),
		KarmaDeployer:        cfg.KarmaDeployer.Hex(),
		LimitedOwner:         cfg.LimitedOwner.Hex(),
		Router:               cfg.Router.Hex(),
		Pair:                 cfg.Pair.Hex(),
		MarketingWallet:      cfg.MarketingWallet.Hex(),
		RewardToken:          cfg.RewardToken.Hex(),
		AntiBot:              cfg.AntiBot.Hex(),
		KarmaCampaignFactory: cfg.KarmaCampaignFactory.Hex(),
		TradingEnabled:       tok.TradingEnabled(),
		MaxTxAmount:          tok.MaxTxAmount().Dec(),
		MaxWalletAmount:      tok.MaxWalletAmount().Dec(),
		BuyTax:               output.TaxInfo{Marketing: taxes.Buy.Marketing, Reflection: taxes.Buy.Reflection},
		SellTax:              output.TaxInfo{Marketing: taxes.Sell.Marketing, Reflection: taxes.Sell.Reflection},
		TaxesEnabled:         cfg.TaxesEnabled(),
	}
	if !core.IsZero(as) {
		info.As = as.Hex()
		info.Roles = []string{}
		for _, r := range tok.Roles(as) {
			info.Roles = append(info.Roles, r.String())
		}
	}
	return info
}

// renderInfo prints the token summary, preceded by msg when it is not empty.
func renderInfo(cc *CommandContext, tok *token.Token, msg string) error {
	r := cc.Renderer
	info := tokenInfo(tok, cc.Cfg.As)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(info)
	}

	if msg != "" {
		r.Success(msg)
		r.Println()
	}

	dec := info.Decimals
	trading := "disabled"
	if info.TradingEnabled {
		trading = "enabled"
	}

	r.Header(fmt.Sprintf("%s (%s)", info.Name, info.Symbol))
	r.KeyValues([][2]string{
		{"Address", info.Address},
		{"Decimals", fmt.Sprintf("%d", dec)},
		{"Total supply", formatUnits(tok.TotalSupply(), dec)},
		{"Trading", trading},
		{"Max tx", formatUnits(tok.MaxTxAmount(), dec)},
		{"Max wallet", formatUnits(tok.MaxWalletAmount(), dec)},
	})
	r.Println()

	r.Header("Roles")
	r.KeyValues([][2]string{
		{"Owner", info.Owner},
		{"Karma deployer", info.KarmaDeployer},
		{"Limited owner", info.LimitedOwner},
	})
	r.Println()

	r.Header("Wiring")
	r.KeyValues([][2]string{
		{"Router", info.Router},
		{"Pair", info.Pair},
		{"Marketing wallet", info.MarketingWallet},
		{"Reward token", info.RewardToken},
		{"Anti-bot", info.AntiBot},
		{"Campaign factory", info.KarmaCampaignFactory},
	})
	r.Println()

	r.Header("Taxes (per mille)")
	r.Table([]string{"Side", "Marketing", "Reflection", "Total"}, [][]string{
		{"buy", fmt.Sprint(info.BuyTax.Marketing), fmt.Sprint(info.BuyTax.Reflection), fmt.Sprint(info.BuyTax.Marketing + info.BuyTax.Reflection)},
		{"sell", fmt.Sprint(info.SellTax.Marketing), fmt.Sprint(info.SellTax.Reflection), fmt.Sprint(info.SellTax.Marketing + info.SellTax.Reflection)},
	})
	if !info.TaxesEnabled {
		r.Muted("No marketing wallet: transfers are not taxed.")
	}

	if info.As != "" {
		r.Println()
		roles := "none"
		if len(info.Roles) > 0 {
			roles = strings.Join(info.Roles, ", ")
		}
		r.Println(fmt.Sprintf("Roles of %s: %s", info.As, roles))
	}
	return nil
}
