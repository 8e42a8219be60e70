package commands

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"

	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/leapstack-labs/karmatoken/internal/scenario"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// SimulateOptions holds options for the simulate command.
type SimulateOptions struct {
	Parallel int
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand() *cobra.Command {
	opts := &SimulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>...",
		Short: "Run launch scenarios against an in-memory AMM",
		Long: `Deploy a fresh token on an in-memory chain with a constant-product router
and replay the steps of each scenario file: liquidity seeding, buys, sells,
transfers and admin actions. Steps may assert balances or expected reverts.

Scenario files run concurrently and never touch the state database.
The command fails when any step of any scenario fails.`,
		Example: `  karmatoken simulate launch.yaml
  karmatoken simulate scenarios/*.yaml -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Parallel, "parallel", "p", runtime.GOMAXPROCS(0), "Maximum number of scenarios run at once")

	return cmd
}

func runSimulate(cmd *cobra.Command, paths []string, opts *SimulateOptions) error {
	cc := NewCommandContextWithoutStore(cmd)
	r := cc.Renderer

	scenarios := make([]*scenario.Scenario, len(paths))
	for i, p := range paths {
		sc, err := scenario.Load(p)
		if err != nil {
			return err
		}
		scenarios[i] = sc
	}

	results := make([]*scenario.Result, len(scenarios))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(opts.Parallel, 1))
	for i, sc := range scenarios {
		g.Go(func() error {
			res, err := scenario.Run(ctx, sc, cc.Logger)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if !res.Passed() {
			failed++
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			renderScenario(r, res)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	if r.EffectiveMode() != output.ModeJSON {
		r.Success(fmt.Sprintf("%d scenarios passed", len(results)))
	}
	return nil
}

func renderScenario(r *output.Renderer, res *scenario.Result) {
	r.Header(res.Name)
	r.Muted(fmt.Sprintf("token %s, pair %s", res.Token, res.Pair))

	rows := make([][]string, len(res.Steps))
	for i, st := range res.Steps {
		mark := "✓"
		if !st.Passed {
			mark = "✗"
		}
		detail := st.Detail
		if st.Note != "" {
			detail = st.Note + ": " + detail
		}
		rows[i] = []string{strconv.Itoa(st.Index), mark, string(st.Action), shortHex(st.As), detail}
	}
	r.Table([]string{"#", "", "Action", "As", "Result"}, rows)

	addrs := make([]string, 0, len(res.Balances))
	for a := range res.Balances {
		addrs = append(addrs, a)
	}
	sort.Strings(addrs)
	balances := make([][]string, len(addrs))
	for i, a := range addrs {
		balances[i] = []string{a, res.Balances[a]}
	}
	r.Table([]string{"Address", "Balance"}, balances)

	if !res.Passed() {
		r.Error(fmt.Sprintf("%s: %d of %d steps failed", res.Name, res.Failed, len(res.Steps)))
	}
	r.Println()
}

func shortHex(s string) string {
	if len(s) <= 12 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}
