package token

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/internal/ledger"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// Token is a single token instance. Calls are serialized; each one commits
// entirely or leaves no trace.
type Token struct {
	mu sync.Mutex

	address     core.Address
	logger      *slog.Logger
	ledger      core.Ledger
	resolver    core.PairResolver
	antiBot     core.AntiBot
	distributor core.Distributor
	now         func() time.Time
	newID       func() string

	initialized bool
	cfg         core.TokenConfig
	taxes       core.TaxRates
	perms       permissions
	gate        gate
	limits      limits
	events      []core.Event

	// snapshots pairs token-level revisions with ledger revisions.
	snapshots []tokenRevision
	nextRevID int
}

// Option configures a Token.
type Option func(*Token)

// WithLogger sets the structured logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Token) { t.logger = logger }
}

// WithLedger replaces the default in-memory ledger.
func WithLedger(l core.Ledger) Option {
	return func(t *Token) { t.ledger = l }
}

// WithPairResolver resolves the AMM pair through the router at initialization.
func WithPairResolver(r core.PairResolver) Option {
	return func(t *Token) { t.resolver = r }
}

// WithAntiBot attaches the validator consulted when the configuration names an
// anti-bot address.
func WithAntiBot(a core.AntiBot) Option {
	return func(t *Token) { t.antiBot = a }
}

// WithDistributor attaches the reflection distributor.
func WithDistributor(d core.Distributor) Option {
	return func(t *Token) { t.distributor = d }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(t *Token) { t.now = now }
}

// WithIDGenerator overrides the event id source.
func WithIDGenerator(fn func() string) Option {
	return func(t *Token) { t.newID = fn }
}

// New creates an uninitialized token living at address.
func New(address core.Address, opts ...Option) *Token {
	t := &Token{
		address: address,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	if t.ledger == nil {
		t.ledger = ledger.NewMemory()
	}
	t.logger = t.logger.With("token", address.Hex())
	return t
}

// --- Queries ---

// Address returns the token's own account.
func (t *Token) Address() core.Address { return t.address }

// Initialized reports whether Initialize has succeeded.
func (t *Token) Initialized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initialized
}

// Name returns the token name.
func (t *Token) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.Name
}

// Symbol returns the token symbol.
func (t *Token) Symbol() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.Symbol
}

// Decimals returns the display precision.
func (t *Token) Decimals() uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.Decimals
}

// TotalSupply returns the fixed supply, zero before initialization.
func (t *Token) TotalSupply() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cfg.TotalSupply == nil {
		return core.Zero()
	}
	return t.cfg.TotalSupply.Clone()
}

// BalanceOf returns addr's balance.
func (t *Token) BalanceOf(addr core.Address) *uint256.Int {
	return t.ledger.BalanceOf(addr)
}

// Allowance returns what spender may move on owner's behalf.
func (t *Token) Allowance(owner, spender core.Address) *uint256.Int {
	return t.ledger.Allowance(owner, spender)
}

// MaxTxAmount returns the per-transfer cap.
func (t *Token) MaxTxAmount() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limits.current.Clone().MaxTxAmount
}

// MaxWalletAmount returns the per-holder cap.
func (t *Token) MaxWalletAmount() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limits.current.Clone().MaxWalletAmount
}

// TradingEnabled reports whether the trading gate is open.
func (t *Token) TradingEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gate.enabled()
}

// Owner returns the current (transferable) owner.
func (t *Token) Owner() core.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.perms.owner
}

// KarmaDeployer returns the fixed karma deployer identity.
func (t *Token) KarmaDeployer() core.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.perms.karmaDeployer
}

// LimitedOwner returns the fixed limited owner identity.
func (t *Token) LimitedOwner() core.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.perms.limitedOwner
}

// Pair returns the AMM pair used for buy/sell classification.
func (t *Token) Pair() core.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.Pair
}

// Taxes returns the tax schedule.
func (t *Token) Taxes() core.TaxRates {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.taxes
}

// Config returns a copy of the immutable configuration.
func (t *Token) Config() core.TokenConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.Clone()
}

// Events returns a copy of the journal.
func (t *Token) Events() []core.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]core.Event, len(t.events))
	copy(out, t.events)
	return out
}

// DrainEvents returns the journal and clears it. Used by persistence, which
// appends drained events to durable storage.
func (t *Token) DrainEvents() []core.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.events
	t.events = nil
	return out
}

// --- ERC-20 mutations ---

// Approve sets spender's allowance over caller's balance.
func (t *Token) Approve(ctx context.Context, caller, spender core.Address, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return core.ErrNotInitialized
	}
	if core.IsZero(caller) {
		return core.ErrApproveFromZero
	}
	if core.IsZero(spender) {
		return core.ErrApproveToZero
	}
	if amount == nil {
		amount = core.Zero()
	}
	t.ledger.SetAllowance(caller, spender, amount)
	t.emit(core.Event{Kind: core.EventApproval, Caller: caller, From: caller, To: spender, Amount: amount.Clone()})
	return nil
}

// Transfer moves amount from caller to to through the transfer pipeline.
func (t *Token) Transfer(ctx context.Context, caller, to core.Address, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return core.ErrNotInitialized
	}
	_, err := t.transfer(ctx, caller, caller, to, amount)
	return err
}

// TransferFrom moves amount from from to to on caller's allowance. An infinite
// (max uint256) allowance is not decremented.
func (t *Token) TransferFrom(ctx context.Context, caller, from, to core.Address, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return core.ErrNotInitialized
	}

	if amount == nil {
		amount = core.Zero()
	}
	allowance := t.ledger.Allowance(from, caller)
	if allowance.Lt(amount) {
		return core.ErrInsufficientAllowance
	}

	snap := t.ledger.Snapshot()
	if !core.IsMaxAmount(allowance) {
		t.ledger.SetAllowance(from, caller, new(uint256.Int).Sub(allowance, amount))
	}
	if _, err := t.transfer(ctx, caller, from, to, amount); err != nil {
		t.ledger.RevertToSnapshot(snap)
		return err
	}
	t.ledger.DiscardSnapshot(snap)
	return nil
}

// Quote runs the validation stages for a hypothetical transfer without writing
// anything and returns the tax split it would produce.
func (t *Token) Quote(ctx context.Context, from, to core.Address, amount *uint256.Int) (core.TaxSplit, error) {
	if err := ctx.Err(); err != nil {
		return core.TaxSplit{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return core.TaxSplit{}, core.ErrNotInitialized
	}
	tc, err := t.validate(ctx, from, to, amount)
	if err != nil {
		return core.TaxSplit{}, err
	}
	return tc.split, nil
}

// emit appends an event to the journal. Caller holds mu.
func (t *Token) emit(e core.Event) {
	e.ID = t.newID()
	e.CreatedAt = t.now().UTC()
	t.events = append(t.events, e)
}
