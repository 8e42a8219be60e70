package commands

import (
	"context"

	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/spf13/cobra"
)

// NewTradingCommand creates the trading command group.
func NewTradingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trading",
		Short: "Open or close the trading gate",
		Long: `Open or close trading through the AMM pair. Only the karma deployer may
change the gate. While closed, transfers touching the pair need an exempt
endpoint: the owner, the karma deployer or the token itself.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Open trading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := &output.TxResult{Action: "enable trading"}
			return runTx(cmd, res, func(ctx context.Context, cc *CommandContext, caller core.Address) error {
				return cc.Token.EnableTrading(ctx, caller)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Close trading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := &output.TxResult{Action: "disable trading"}
			return runTx(cmd, res, func(ctx context.Context, cc *CommandContext, caller core.Address) error {
				return cc.Token.DisableTrading(ctx, caller)
			})
		},
	})

	return cmd
}
