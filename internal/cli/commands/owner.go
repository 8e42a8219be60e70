package commands

import (
	"context"

	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/spf13/cobra"
)

// NewOwnerCommand creates the owner command group.
func NewOwnerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "owner",
		Short: "Transfer or renounce token ownership",
		Long: `Manage the transferable owner role. The karma deployer and limited owner
roles are fixed at initialization and are not affected.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "transfer <new-owner>",
		Short:   "Hand ownership to another address",
		Example: `  karmatoken owner transfer 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 --as 0xf39F...2266`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := &output.TxResult{Action: "transfer ownership"}
			return runTx(cmd, res, func(ctx context.Context, cc *CommandContext, caller core.Address) error {
				next, err := core.ParseAddress(args[0])
				if err != nil {
					return err
				}
				res.To = next.Hex()
				return cc.Token.TransferOwnership(ctx, caller, next)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "renounce",
		Short: "Give up ownership permanently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := &output.TxResult{Action: "renounce ownership"}
			return runTx(cmd, res, func(ctx context.Context, cc *CommandContext, caller core.Address) error {
				return cc.Token.RenounceOwnership(ctx, caller)
			})
		},
	})

	return cmd
}
