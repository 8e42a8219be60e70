package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Kind    string
	Address string
	Limit   int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the token's event journal",
		Long: `List the events recorded by previous commands, oldest first.

Filter by event kind, by an address appearing as caller, sender or recipient,
or keep only the most recent entries with --limit.`,
		Example: `  karmatoken history
  karmatoken history --kind tax_collected
  karmatoken history --address 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Only show events of this kind")
	cmd.Flags().StringVar(&opts.Address, "address", "", "Only show events involving this address")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Show only the most recent N events")

	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return eventKinds, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

var eventKinds = []string{
	string(core.EventInitialized),
	string(core.EventTransfer),
	string(core.EventApproval),
	string(core.EventTaxCollected),
	string(core.EventOwnershipTransferred),
	string(core.EventTradingEnabled),
	string(core.EventTradingDisabled),
	string(core.EventMaxTxUpdated),
	string(core.EventMaxWalletUpdated),
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	if opts.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	cc, cleanup, err := NewCommandContextWithStore(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	filter := core.EventFilter{Kind: core.EventKind(opts.Kind), Limit: opts.Limit}
	if opts.Address != "" {
		addr, err := core.ParseAddress(opts.Address)
		if err != nil {
			return err
		}
		filter.Address = addr
	}

	events, err := cc.Store.ListEvents(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	infos := make([]output.EventInfo, len(events))
	for i, e := range events {
		infos[i] = eventInfo(e)
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}
	if len(infos) == 0 {
		r.Muted("No events.")
		return nil
	}

	rows := make([][]string, len(events))
	for i, e := range events {
		amount := ""
		if e.Amount != nil {
			amount = e.Amount.Dec()
		}
		rows[i] = []string{
			e.CreatedAt.Local().Format(time.DateTime),
			string(e.Kind),
			shortAddress(e.Caller),
			shortAddress(e.From),
			shortAddress(e.To),
			amount,
			e.Detail,
		}
	}
	r.Header(fmt.Sprintf("Events (%d)", len(events)))
	r.Table([]string{"Time", "Kind", "Caller", "From", "To", "Amount", "Detail"}, rows)
	return nil
}

func eventInfo(e core.Event) output.EventInfo {
	info := output.EventInfo{
		ID:        e.ID,
		Kind:      string(e.Kind),
		Caller:    e.Caller.Hex(),
		Detail:    e.Detail,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if !core.IsZero(e.From) {
		info.From = e.From.Hex()
	}
	if !core.IsZero(e.To) {
		info.To = e.To.Hex()
	}
	if e.Amount != nil {
		info.Amount = e.Amount.Dec()
	}
	return info
}

// shortAddress abbreviates an address for tables.
func shortAddress(a core.Address) string {
	if core.IsZero(a) {
		return ""
	}
	h := a.Hex()
	return h[:6] + "…" + h[len(h)-4:]
}
