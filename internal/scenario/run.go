package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/internal/amm"
	"github.com/leapstack-labs/karmatoken/internal/antibot"
	"github.com/leapstack-labs/karmatoken/internal/token"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// StepResult records the outcome of one step.
type StepResult struct {
	Index  int    `json:"index"`
	Action Action `json:"action"`
	As     string `json:"as,omitempty"`
	Passed bool   `json:"passed"`
	// Detail describes what happened: amounts moved, the observed balance or
	// the revert reason.
	Detail string `json:"detail"`
	Note   string `json:"note,omitempty"`
}

// Result is the outcome of a whole scenario.
type Result struct {
	Name     string            `json:"name"`
	Path     string            `json:"path,omitempty"`
	Token    string            `json:"token"`
	Pair     string            `json:"pair"`
	Steps    []StepResult      `json:"steps"`
	Failed   int               `json:"failed"`
	Balances map[string]string `json:"balances"`
	// Reflected is the total reflection tax handed to the distributor.
	Reflected string `json:"reflected"`
}

// Passed reports whether every step passed.
func (r *Result) Passed() bool { return r.Failed == 0 }

// runner holds one scenario's world.
type runner struct {
	sc        *Scenario
	chain     *amm.Chain
	tok       *token.Token
	bot       *antibot.Validator
	reflected *reflectionTally
	logger    *slog.Logger
}

// reflectionTally is the scenario's Distributor. It sums what reaches it.
type reflectionTally struct {
	total *uint256.Int
}

func (d *reflectionTally) Distribute(_ context.Context, split core.TaxSplit) error {
	d.total.Add(d.total, split.Reflection)
	return nil
}

// Run deploys the scenario's token on a fresh chain and executes its steps.
// Step failures are reported in the Result; an error means the scenario could
// not be set up.
func Run(ctx context.Context, sc *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("scenario", sc.Name)

	tokenAddr, params, err := sc.params()
	if err != nil {
		return nil, err
	}
	deployer, err := core.ParseAddress(sc.Deployer)
	if err != nil {
		return nil, fmt.Errorf("deployer: %w", err)
	}

	r := &runner{
		sc:        sc,
		chain:     amm.NewChain(logger),
		reflected: &reflectionTally{total: core.Zero()},
		logger:    logger,
	}

	opts := []token.Option{
		token.WithLogger(logger),
		token.WithPairResolver(r.chain.Router()),
		token.WithDistributor(r.reflected),
	}
	if !core.IsZero(params.AntiBot) {
		botOpts, err := sc.AntiBot.options(logger)
		if err != nil {
			return nil, err
		}
		r.bot = antibot.New(botOpts...)
		opts = append(opts, token.WithAntiBot(r.bot))
	}
	r.tok = token.New(tokenAddr, opts...)
	r.chain.RegisterToken(tokenAddr, r.tok)

	if err := r.tok.Initialize(ctx, deployer, params); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}

	holders := map[core.Address]struct{}{deployer: {}}
	for addr, amount := range sc.Fund {
		var p parser
		a := p.address("fund", addr)
		v := p.amount("fund."+addr, amount)
		if p.err != nil {
			return nil, p.err
		}
		r.chain.Fund(a, v)
		holders[a] = struct{}{}
	}

	res := &Result{
		Name:  sc.Name,
		Path:  sc.Path,
		Token: tokenAddr.Hex(),
		Pair:  r.tok.Pair().Hex(),
	}
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sr := r.step(ctx, i+1, st)
		if !sr.Passed {
			res.Failed++
			logger.Debug("step failed", "index", sr.Index, "action", sr.Action, "detail", sr.Detail)
		}
		res.Steps = append(res.Steps, sr)
		for _, a := range []string{st.As, st.From, st.To, st.Address} {
			if addr, err := core.ParseAddress(resolveAlias(a)); err == nil {
				holders[addr] = struct{}{}
			}
		}
	}

	res.Balances = make(map[string]string, len(holders))
	for addr := range holders {
		res.Balances[addr.Hex()] = r.tok.BalanceOf(addr).Dec()
	}
	res.Reflected = r.reflected.total.Dec()
	return res, nil
}

func (s AntiBotSpec) options(logger *slog.Logger) ([]antibot.Option, error) {
	var p parser
	opts := []antibot.Option{antibot.WithLogger(logger), antibot.WithCooldown(s.Cooldown)}
	for _, a := range s.Blocked {
		opts = append(opts, antibot.WithBlocked(p.address("antibot.blocked", a)))
	}
	for _, a := range s.Exempt {
		opts = append(opts, antibot.WithExempt(p.address("antibot.exempt", a)))
	}
	return opts, p.err
}

// step executes st and grades it against expect_error.
func (r *runner) step(ctx context.Context, index int, st Step) StepResult {
	sr := StepResult{Index: index, Action: st.Action, As: st.As, Note: st.Note}

	detail, err := r.exec(ctx, st)
	switch {
	case st.ExpectError != "" && err == nil:
		sr.Detail = fmt.Sprintf("expected error %q, got success", st.ExpectError)
	case st.ExpectError != "" && !strings.Contains(err.Error(), st.ExpectError):
		sr.Detail = fmt.Sprintf("expected error %q, got %q", st.ExpectError, err.Error())
	case st.ExpectError != "":
		sr.Passed = true
		sr.Detail = "reverted: " + err.Error()
	case err != nil:
		sr.Detail = err.Error()
	default:
		sr.Passed = true
		sr.Detail = detail
	}
	return sr
}

var errBalanceMismatch = errors.New("balance mismatch")

func (r *runner) exec(ctx context.Context, st Step) (string, error) {
	var p parser
	as := p.optionalAddress("as", st.As)
	if p.err != nil {
		return "", p.err
	}
	weth := r.chain.Router().WETH()
	tokenAddr := r.tok.Address()

	switch st.Action {
	case ActionApprove:
		spender := p.address("spender", st.Spender)
		amount := p.amount("amount", st.Amount)
		if p.err != nil {
			return "", p.err
		}
		return "allowance " + formatAmount(amount), r.tok.Approve(ctx, as, spender, amount)

	case ActionTransfer:
		to := p.address("to", st.To)
		amount := p.amount("amount", st.Amount)
		if p.err != nil {
			return "", p.err
		}
		return "sent " + amount.Dec(), r.tok.Transfer(ctx, as, to, amount)

	case ActionTransferFrom:
		from := p.address("from", st.From)
		to := p.address("to", st.To)
		amount := p.amount("amount", st.Amount)
		if p.err != nil {
			return "", p.err
		}
		return "sent " + amount.Dec(), r.tok.TransferFrom(ctx, as, from, to, amount)

	case ActionAddLiquidity:
		amount := p.amount("amount", st.Amount)
		value := p.amount("eth", st.ETH)
		if p.err != nil {
			return "", p.err
		}
		res, err := r.chain.Router().AddLiquidityETH(ctx, as, tokenAddr, amount, core.Zero(), core.Zero(), value, as)
		if err != nil {
			return "", err
		}
		return "minted " + res.Liquidity.Dec() + " LP", nil

	case ActionBuy:
		value := p.amount("eth", st.ETH)
		if p.err != nil {
			return "", p.err
		}
		before := r.tok.BalanceOf(as)
		if _, err := r.chain.Router().SwapExactETHForTokens(ctx, as, value, core.Zero(), []core.Address{weth, tokenAddr}, as); err != nil {
			return "", err
		}
		return "received " + new(uint256.Int).Sub(r.tok.BalanceOf(as), before).Dec(), nil

	case ActionSell:
		amount := r.tok.BalanceOf(as)
		if !strings.EqualFold(st.Amount, "all") {
			amount = p.amount("amount", st.Amount)
		}
		if p.err != nil {
			return "", p.err
		}
		out, err := r.chain.Router().SwapExactTokensForETHSupportingFeeOnTransferTokens(
			ctx, as, amount, core.Zero(), []core.Address{tokenAddr, weth}, as)
		if err != nil {
			return "", err
		}
		return "sold " + amount.Dec() + " for " + out.Dec() + " wei", nil

	case ActionEnableTrading:
		return "trading enabled", r.tok.EnableTrading(ctx, as)

	case ActionDisableTrading:
		return "trading disabled", r.tok.DisableTrading(ctx, as)

	case ActionSetMaxTx:
		amount := p.amount("amount", st.Amount)
		if p.err != nil {
			return "", p.err
		}
		return "max tx " + amount.Dec(), r.tok.UpdateMaxTxAmount(ctx, as, amount)

	case ActionSetMaxWallet:
		amount := p.amount("amount", st.Amount)
		if p.err != nil {
			return "", p.err
		}
		return "max wallet " + amount.Dec(), r.tok.UpdateMaxWalletAmount(ctx, as, amount)

	case ActionTransferOwnership:
		to := p.address("to", st.To)
		if p.err != nil {
			return "", p.err
		}
		return "owner " + to.Hex(), r.tok.TransferOwnership(ctx, as, to)

	case ActionRenounceOwnership:
		return "ownership renounced", r.tok.RenounceOwnership(ctx, as)

	case ActionBlock, ActionUnblock:
		addr := p.address("address", st.Address)
		if p.err != nil {
			return "", p.err
		}
		if r.bot == nil {
			return "", errors.New("no anti-bot validator configured")
		}
		if st.Action == ActionBlock {
			r.bot.Block(addr)
			return "blocked " + addr.Hex(), nil
		}
		r.bot.Unblock(addr)
		return "unblocked " + addr.Hex(), nil

	case ActionExpectBalance:
		addr := p.address("address", st.Address)
		want := p.amount("amount", st.Amount)
		if p.err != nil {
			return "", p.err
		}
		got := r.tok.BalanceOf(addr)
		if !got.Eq(want) {
			return "", fmt.Errorf("%w: %s holds %s, want %s", errBalanceMismatch, addr.Hex(), got.Dec(), want.Dec())
		}
		return addr.Hex() + " holds " + got.Dec(), nil
	}
	return "", fmt.Errorf("unknown action %q", st.Action)
}

func formatAmount(v *uint256.Int) string {
	if core.IsMaxAmount(v) {
		return "max"
	}
	return v.Dec()
}
