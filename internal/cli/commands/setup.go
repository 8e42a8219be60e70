package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/karmatoken/internal/antibot"
	"github.com/leapstack-labs/karmatoken/internal/cli/config"
	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/leapstack-labs/karmatoken/internal/state"
	"github.com/leapstack-labs/karmatoken/internal/token"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/spf13/cobra"
)

// errNoIdentity is returned by mutating commands run without --as.
var errNoIdentity = errors.New("no acting identity: pass --as <address> or set 'as' in karmatoken.yaml")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Store    *state.SQLiteStore
	Token    *token.Token
}

// NewCommandContext opens the state database and restores the token.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc, cleanup, err := NewCommandContextWithStore(cmd)
	if err != nil {
		return nil, nil, err
	}

	st, err := cc.Store.LoadState(cmd.Context())
	if errors.Is(err, state.ErrNoState) {
		cleanup()
		return nil, nil, fmt.Errorf("no token in %s: run 'karmatoken init' first", cc.Cfg.StatePath)
	}
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load token state: %w", err)
	}

	tok, err := token.Restore(st, cc.tokenOptions()...)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("stored token state is invalid: %w", err)
	}
	cc.Token = tok
	return cc, cleanup, nil
}

// NewCommandContextWithStore opens and migrates the state database without
// loading a token.
func NewCommandContextWithStore(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutStore(cmd)

	store, err := openStore(cmd.Context(), cc.Cfg.StatePath)
	if err != nil {
		return nil, nil, err
	}
	cc.Store = store
	cc.Logger.Debug("state opened", "path", cc.Cfg.StatePath)

	cleanup := func() {
		_ = store.Close()
	}
	return cc, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without database access.
// Useful for commands that don't need persisted state.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Caller returns the acting identity.
func (c *CommandContext) Caller() (core.Address, error) {
	if core.IsZero(c.Cfg.As) {
		return core.ZeroAddress, errNoIdentity
	}
	return c.Cfg.As, nil
}

// Commit persists the token and appends the events produced since it was
// restored. It returns the appended events.
func (c *CommandContext) Commit(ctx context.Context) ([]core.Event, error) {
	st, err := c.Token.State()
	if err != nil {
		return nil, err
	}
	events := c.Token.Events()
	if err := c.Store.Commit(ctx, st, events); err != nil {
		return nil, fmt.Errorf("failed to commit token state: %w", err)
	}
	c.Token.DrainEvents()
	c.Logger.Debug("state committed", "events", len(events))
	return events, nil
}

// tokenOptions wires the logger and, when configured, the anti-bot validator.
func (c *CommandContext) tokenOptions() []token.Option {
	opts := []token.Option{token.WithLogger(c.Logger)}
	botOpts := append(c.Cfg.AntiBot.Options(), antibot.WithLogger(c.Logger))
	return append(opts, token.WithAntiBot(antibot.New(botOpts...)))
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to defaults.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		StatePath:    getEnvOrDefault("KARMATOKEN_STATE_PATH", config.DefaultStateFile),
		OutputFormat: getEnvOrDefault("KARMATOKEN_OUTPUT", config.DefaultOutput),
		LogLevel:     config.DefaultLogLevel,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func openStore(ctx context.Context, path string) (*state.SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(ctx, path); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}
	return store, nil
}
