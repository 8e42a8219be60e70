package commands

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/leapstack-labs/karmatoken/internal/token"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/spf13/cobra"
)

// NewLimitsCommand creates the limits command group.
func NewLimitsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Update the transaction and wallet limits",
		Long: `Update the anti-whale limits.

The karma deployer may set any value at or above 0.01% of the supply. The owner
and the limited owner may only raise a limit. Pass "max" to lift a limit.`,
	}
	cmd.AddCommand(newLimitCommand("max-tx", "Set the maximum transaction amount", (*token.Token).UpdateMaxTxAmount))
	cmd.AddCommand(newLimitCommand("max-wallet", "Set the maximum wallet amount", (*token.Token).UpdateMaxWalletAmount))
	return cmd
}

type limitUpdate func(t *token.Token, ctx context.Context, caller core.Address, v *uint256.Int) error

func newLimitCommand(use, short string, update limitUpdate) *cobra.Command {
	var opts amountOptions
	cmd := &cobra.Command{
		Use:     use + " <amount>",
		Short:   short,
		Example: "  karmatoken limits " + use + " 20000 --units --as 0xf39F...2266",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := &output.TxResult{Action: "set " + use}
			return runTx(cmd, res, func(ctx context.Context, cc *CommandContext, caller core.Address) error {
				amount, err := parseAmountArg(args[0], opts.Units, cc.Token.Decimals())
				if err != nil {
					return err
				}
				res.Amount = formatAmount(amount)
				return update(cc.Token, ctx, caller, amount)
			})
		},
	}
	opts.register(cmd)
	return cmd
}
