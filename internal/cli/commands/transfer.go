package commands

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/spf13/cobra"
)

// amountOptions is embedded by commands taking an amount argument.
type amountOptions struct {
	Units bool
}

func (o *amountOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&o.Units, "units", "u", false, "Amount is in whole tokens (e.g. 1.5) instead of base units")
}

// runTx executes fn as the acting identity, commits the result and reports it.
func runTx(cmd *cobra.Command, res *output.TxResult, fn func(ctx context.Context, cc *CommandContext, caller core.Address) error) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	caller, err := cc.Caller()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := fn(ctx, cc, caller); err != nil {
		return err
	}
	events, err := cc.Commit(ctx)
	if err != nil {
		return err
	}

	res.Caller = caller.Hex()
	res.Events = make([]string, len(events))
	for i, e := range events {
		res.Events[i] = string(e.Kind)
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res)
	}
	r.Success(txSummary(*res))
	for _, e := range events {
		if e.Kind == core.EventTaxCollected {
			r.Muted(fmt.Sprintf("tax: %s (%s)", e.Amount.Dec(), e.Detail))
		}
	}
	return nil
}

func txSummary(res output.TxResult) string {
	s := res.Action
	if res.Amount != "" {
		s += " " + res.Amount
	}
	if res.From != "" {
		s += " from " + res.From
	}
	if res.To != "" {
		s += " to " + res.To
	}
	return s
}

// parseTxArgs reads an address and an amount argument.
func parseTxArgs(cc *CommandContext, o *amountOptions, addrArg, amountArg string) (core.Address, *uint256.Int, error) {
	addr, err := core.ParseAddress(addrArg)
	if err != nil {
		return core.ZeroAddress, nil, err
	}
	amount, err := parseAmountArg(amountArg, o.Units, cc.Token.Decimals())
	if err != nil {
		return core.ZeroAddress, nil, err
	}
	return addr, amount, nil
}

// NewTransferCommand creates the transfer command.
func NewTransferCommand() *cobra.Command {
	var opts amountOptions
	cmd := &cobra.Command{
		Use:   "transfer <to> <amount>",
		Short: "Transfer tokens from the acting identity",
		Long: `Transfer tokens from --as to another address.

The transfer runs through the full pipeline: trading gate, transaction and
wallet limits, anti-bot, and the buy/sell tax when the pair is involved.
Amounts are base units unless --units is given.`,
		Example: `  karmatoken transfer 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 1000000000000000000 --as 0xf39F...2266
  karmatoken transfer 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 1.5 --units`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := &output.TxResult{Action: "transfer"}
			return runTx(cmd, res, func(ctx context.Context, cc *CommandContext, caller core.Address) error {
				to, amount, err := parseTxArgs(cc, &opts, args[0], args[1])
				if err != nil {
					return err
				}
				res.To, res.Amount = to.Hex(), amount.Dec()
				return cc.Token.Transfer(ctx, caller, to, amount)
			})
		},
	}
	opts.register(cmd)
	return cmd
}

// NewApproveCommand creates the approve command.
func NewApproveCommand() *cobra.Command {
	var opts amountOptions
	cmd := &cobra.Command{
		Use:   "approve <spender> <amount>",
		Short: "Set the spender's allowance over the acting identity's tokens",
		Long: `Set how much <spender> may move out of --as with transfer-from.
Pass "max" for an allowance that is never decremented.`,
		Example: `  karmatoken approve 0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D max --as 0xf39F...2266`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := &output.TxResult{Action: "approve"}
			return runTx(cmd, res, func(ctx context.Context, cc *CommandContext, caller core.Address) error {
				spender, amount, err := parseTxArgs(cc, &opts, args[0], args[1])
				if err != nil {
					return err
				}
				res.To, res.Amount = spender.Hex(), formatAmount(amount)
				return cc.Token.Approve(ctx, caller, spender, amount)
			})
		},
	}
	opts.register(cmd)
	return cmd
}

// NewTransferFromCommand creates the transfer-from command.
func NewTransferFromCommand() *cobra.Command {
	var opts amountOptions
	cmd := &cobra.Command{
		Use:   "transfer-from <from> <to> <amount>",
		Short: "Move tokens using an allowance granted to the acting identity",
		Long: `Move tokens out of <from> into <to>, spending the allowance <from>
granted to --as. The allowance is restored when the transfer reverts.`,
		Example: `  karmatoken transfer-from 0xf39F...2266 0x3C44...93BC 1000 --as 0x7099...79C8`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := &output.TxResult{Action: "transfer-from"}
			return runTx(cmd, res, func(ctx context.Context, cc *CommandContext, caller core.Address) error {
				from, err := core.ParseAddress(args[0])
				if err != nil {
					return err
				}
				to, amount, err := parseTxArgs(cc, &opts, args[1], args[2])
				if err != nil {
					return err
				}
				res.From, res.To, res.Amount = from.Hex(), to.Hex(), amount.Dec()
				return cc.Token.TransferFrom(ctx, caller, from, to, amount)
			})
		},
	}
	opts.register(cmd)
	return cmd
}

func formatAmount(v *uint256.Int) string {
	if core.IsMaxAmount(v) {
		return "max"
	}
	return v.Dec()
}
