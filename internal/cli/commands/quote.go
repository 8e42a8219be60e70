package commands

import (
	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/spf13/cobra"
)

// NewQuoteCommand creates the quote command.
func NewQuoteCommand() *cobra.Command {
	var opts amountOptions
	cmd := &cobra.Command{
		Use:   "quote <from> <to> <amount>",
		Short: "Preview a transfer without executing it",
		Long: `Run every check of the transfer pipeline for a hypothetical transfer and
show the tax split it would produce. Nothing is written.

A transfer that would revert reports the revert reason as an error.
Use "pair" for the token's AMM pair address.`,
		Example: `  # What does a buy of 1000 tokens cost in tax?
  karmatoken quote pair 0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC 1000 --units`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			from, err := quoteAddress(cc, args[0])
			if err != nil {
				return err
			}
			to, err := quoteAddress(cc, args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmountArg(args[2], opts.Units, cc.Token.Decimals())
			if err != nil {
				return err
			}

			split, err := cc.Token.Quote(cmd.Context(), from, to, amount)
			if err != nil {
				return err
			}

			q := output.QuoteInfo{
				From:       from.Hex(),
				To:         to.Hex(),
				Direction:  split.Direction.String(),
				Amount:     split.Gross.Dec(),
				Net:        split.Net.Dec(),
				Marketing:  split.Marketing.Dec(),
				Reflection: split.Reflection.Dec(),
			}
			r := cc.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(q)
			}
			dec := cc.Token.Decimals()
			r.Header("Quote (" + q.Direction + ")")
			r.KeyValues([][2]string{
				{"From", q.From},
				{"To", q.To},
				{"Amount", formatUnits(split.Gross, dec)},
				{"Marketing tax", formatUnits(split.Marketing, dec)},
				{"Reflection tax", formatUnits(split.Reflection, dec)},
				{"Received", formatUnits(split.Net, dec)},
			})
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func quoteAddress(cc *CommandContext, s string) (core.Address, error) {
	if s == "pair" {
		return cc.Token.Pair(), nil
	}
	return core.ParseAddress(s)
}
