package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

var errNotOpened = errors.New("database not opened")

// SQLiteStore implements core.Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{now: time.Now}
}

// NewSQLiteStoreFromDB wraps an already opened database. The schema is not
// migrated.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(ctx context.Context, path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Path returns the path passed to Open.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- Token state ---

// SaveState replaces the stored token state in one transaction.
func (s *SQLiteStore) SaveState(ctx context.Context, st core.TokenState) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return saveState(ctx, tx, st, s.now())
	})
}

// Commit replaces the token state and appends its events in one transaction,
// so the journal never disagrees with the state it describes.
func (s *SQLiteStore) Commit(ctx context.Context, st core.TokenState, events []core.Event) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := saveState(ctx, tx, st, s.now()); err != nil {
			return err
		}
		return appendEvents(ctx, tx, events)
	})
}

// withTx runs fn in a transaction and rolls back when fn or the commit fails.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	if s.db == nil {
		return errNotOpened
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func saveState(ctx context.Context, tx *sql.Tx, st core.TokenState, updatedAt time.Time) error {
	cfg := st.Config
	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO token (
			id, address, name, symbol, decimals, total_supply, router, pair,
			karma_deployer, limited_owner, marketing_wallet, reward_token, anti_bot,
			karma_campaign_factory, buy_marketing, buy_reflection, sell_marketing,
			sell_reflection, max_tx_amount, max_wallet_amount, trading_enabled, owner, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cfg.Address.Hex(), cfg.Name, cfg.Symbol, int64(cfg.Decimals), amountText(cfg.TotalSupply),
		cfg.Router.Hex(), cfg.Pair.Hex(), cfg.KarmaDeployer.Hex(), cfg.LimitedOwner.Hex(),
		cfg.MarketingWallet.Hex(), cfg.RewardToken.Hex(), cfg.AntiBot.Hex(), cfg.KarmaCampaignFactory.Hex(),
		int64(st.Taxes.Buy.Marketing), int64(st.Taxes.Buy.Reflection),
		int64(st.Taxes.Sell.Marketing), int64(st.Taxes.Sell.Reflection),
		amountText(st.Limits.MaxTxAmount), amountText(st.Limits.MaxWalletAmount),
		st.TradingEnabled, st.Owner.Hex(), formatTime(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM balances`); err != nil {
		return fmt.Errorf("failed to clear balances: %w", err)
	}
	for _, h := range st.Balances {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO balances (address, amount) VALUES (?, ?)`,
			h.Address.Hex(), amountText(h.Amount),
		); err != nil {
			return fmt.Errorf("failed to save balance of %s: %w", h.Address.Hex(), err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM allowances`); err != nil {
		return fmt.Errorf("failed to clear allowances: %w", err)
	}
	for _, a := range st.Allowances {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO allowances (owner, spender, amount) VALUES (?, ?, ?)`,
			a.Owner.Hex(), a.Spender.Hex(), amountText(a.Amount),
		); err != nil {
			return fmt.Errorf("failed to save allowance: %w", err)
		}
	}
	return nil
}

// LoadState reads the stored token state. It returns ErrNoState before the
// first SaveState.
func (s *SQLiteStore) LoadState(ctx context.Context) (core.TokenState, error) {
	if s.db == nil {
		return core.TokenState{}, errNotOpened
	}

	var (
		st                                                  core.TokenState
		decimals                                            int64
		buyM, buyR, sellM, sellR                            int64
		address, supply, router, pair, karma, limited       string
		marketing, reward, antiBot, campaign, maxTx, maxWal string
		owner                                               string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT address, name, symbol, decimals, total_supply, router, pair,
			karma_deployer, limited_owner, marketing_wallet, reward_token, anti_bot,
			karma_campaign_factory, buy_marketing, buy_reflection, sell_marketing,
			sell_reflection, max_tx_amount, max_wallet_amount, trading_enabled, owner
		FROM token WHERE id = 1`,
	).Scan(&address, &st.Config.Name, &st.Config.Symbol, &decimals, &supply, &router, &pair,
		&karma, &limited, &marketing, &reward, &antiBot,
		&campaign, &buyM, &buyR, &sellM,
		&sellR, &maxTx, &maxWal, &st.TradingEnabled, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TokenState{}, ErrNoState
	}
	if err != nil {
		return core.TokenState{}, fmt.Errorf("failed to load token: %w", err)
	}

	p := parser{}
	st.Config.Address = p.address(address)
	st.Config.Decimals = uint8(decimals) //nolint:gosec // G115: stored from a uint8
	st.Config.TotalSupply = p.amount(supply)
	st.Config.Router = p.address(router)
	st.Config.Pair = p.address(pair)
	st.Config.KarmaDeployer = p.address(karma)
	st.Config.LimitedOwner = p.address(limited)
	st.Config.MarketingWallet = p.address(marketing)
	st.Config.RewardToken = p.address(reward)
	st.Config.AntiBot = p.address(antiBot)
	st.Config.KarmaCampaignFactory = p.address(campaign)
	st.Taxes = core.TaxRates{
		Buy:  core.TaxRate{Marketing: uint64(buyM), Reflection: uint64(buyR)},   //nolint:gosec // G115: non-negative
		Sell: core.TaxRate{Marketing: uint64(sellM), Reflection: uint64(sellR)}, //nolint:gosec // G115: non-negative
	}
	st.Limits = core.Limits{MaxTxAmount: p.amount(maxTx), MaxWalletAmount: p.amount(maxWal)}
	st.Owner = p.address(owner)
	if p.err != nil {
		return core.TokenState{}, fmt.Errorf("corrupt token row: %w", p.err)
	}

	if st.Balances, err = s.loadBalances(ctx); err != nil {
		return core.TokenState{}, err
	}
	if st.Allowances, err = s.loadAllowances(ctx); err != nil {
		return core.TokenState{}, err
	}
	return st, nil
}

func (s *SQLiteStore) loadBalances(ctx context.Context) ([]core.Holding, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT address, amount FROM balances ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []core.Holding
	p := parser{}
	for rows.Next() {
		var addr, amount string
		if err := rows.Scan(&addr, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		out = append(out, core.Holding{Address: p.address(addr), Amount: p.amount(amount)})
	}
	if p.err != nil {
		return nil, fmt.Errorf("corrupt balance row: %w", p.err)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadAllowances(ctx context.Context) ([]core.Approval, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT owner, spender, amount FROM allowances ORDER BY owner, spender`)
	if err != nil {
		return nil, fmt.Errorf("failed to load allowances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []core.Approval
	p := parser{}
	for rows.Next() {
		var owner, spender, amount string
		if err := rows.Scan(&owner, &spender, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan allowance: %w", err)
		}
		out = append(out, core.Approval{Owner: p.address(owner), Spender: p.address(spender), Amount: p.amount(amount)})
	}
	if p.err != nil {
		return nil, fmt.Errorf("corrupt allowance row: %w", p.err)
	}
	return out, rows.Err()
}

// --- Events ---

// AppendEvents stores events in order. Events already stored (same ID) are
// skipped.
func (s *SQLiteStore) AppendEvents(ctx context.Context, events []core.Event) error {
	if s.db == nil {
		return errNotOpened
	}
	if len(events) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return appendEvents(ctx, tx, events)
	})
}

func appendEvents(ctx context.Context, tx *sql.Tx, events []core.Event) error {
	for _, e := range events {
		var amount sql.NullString
		if e.Amount != nil {
			amount = sql.NullString{String: e.Amount.Dec(), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO events (id, kind, caller, from_addr, to_addr, amount, detail, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, string(e.Kind), e.Caller.Hex(), e.From.Hex(), e.To.Hex(), amount, e.Detail, formatTime(e.CreatedAt),
		); err != nil {
			return fmt.Errorf("failed to append event %s: %w", e.ID, err)
		}
	}
	return nil
}

// ListEvents returns events oldest first.
func (s *SQLiteStore) ListEvents(ctx context.Context, filter core.EventFilter) ([]core.Event, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	var (
		where []string
		args  []any
	)
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if !core.IsZero(filter.Address) {
		hex := filter.Address.Hex()
		where = append(where, "(caller = ? OR from_addr = ? OR to_addr = ?)")
		args = append(args, hex, hex, hex)
	}

	query := `SELECT seq, id, kind, caller, from_addr, to_addr, amount, detail, created_at FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []core.Event
	p := parser{}
	for rows.Next() {
		var (
			seq                        int64
			e                          core.Event
			kind, caller, from, to, at string
			amount                     sql.NullString
		)
		if err := rows.Scan(&seq, &e.ID, &kind, &caller, &from, &to, &amount, &e.Detail, &at); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Kind = core.EventKind(kind)
		e.Caller = p.address(caller)
		e.From = p.address(from)
		e.To = p.address(to)
		if amount.Valid {
			e.Amount = p.amount(amount.String)
		}
		e.CreatedAt = p.time(at)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	if p.err != nil {
		return nil, fmt.Errorf("corrupt event row: %w", p.err)
	}

	// Newest were selected first so that Limit keeps the most recent.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// --- Encoding ---

func amountText(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parser decodes stored columns, keeping the first error.
type parser struct {
	err error
}

func (p *parser) address(s string) core.Address {
	a, err := core.ParseAddress(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return a
}

func (p *parser) amount(s string) *uint256.Int {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("invalid amount %q: %w", s, err)
		}
		return core.Zero()
	}
	return v
}

func (p *parser) time(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return t
}
