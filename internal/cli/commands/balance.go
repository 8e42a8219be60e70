package commands

import (
	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/spf13/cobra"
)

// NewBalanceCommand creates the balance command.
func NewBalanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance [address...]",
		Short: "Show token balances",
		Long: `Show the balance of each address, or of --as when none is given.
The token's own address holds the reflection pool.`,
		Example: `  karmatoken balance 0x70997970C51812dc3A010C7d01b50e0d17dc79C8
  karmatoken balance --as 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266 -o json`,
		RunE: runBalance,
	}
	return cmd
}

func runBalance(cmd *cobra.Command, args []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	addrs := make([]core.Address, 0, len(args))
	for _, a := range args {
		addr, err := core.ParseAddress(a)
		if err != nil {
			return err
		}
		addrs = append(addrs, addr)
	}
	if len(addrs) == 0 {
		caller, err := cc.Caller()
		if err != nil {
			return err
		}
		addrs = append(addrs, caller)
	}

	dec := cc.Token.Decimals()
	balances := make([]output.BalanceInfo, len(addrs))
	rows := make([][]string, len(addrs))
	for i, addr := range addrs {
		bal := cc.Token.BalanceOf(addr)
		balances[i] = output.BalanceInfo{
			Address: addr.Hex(),
			Balance: bal.Dec(),
			Units:   formatUnits(bal, dec),
		}
		rows[i] = []string{addr.Hex(), balances[i].Units + " " + cc.Token.Symbol(), balances[i].Balance}
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(balances)
	}
	r.Table([]string{"Address", "Balance", "Base units"}, rows)
	return nil
}
