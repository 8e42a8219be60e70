package commands

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/karmatoken/internal/amm"
	"github.com/leapstack-labs/karmatoken/internal/state"
	"github.com/leapstack-labs/karmatoken/internal/token"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new token",
		Long: `Initialize a token from the 'token' section of karmatoken.yaml and store it
in the state database.

The acting identity (--as, defaulting to token.karma_deployer) receives the whole
supply and becomes the owner. When token.pair is empty the pair address is derived
from the router's factory, exactly as the router would create it.

Initialization happens once per state database.`,
		Example: `  # Initialize using ./karmatoken.yaml
  karmatoken init

  # Initialize into a specific state file as a specific deployer
  karmatoken init --state launch.db --as 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cc, cleanup, err := NewCommandContextWithStore(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cc.Cfg
	if err := cfg.ValidateToken(); err != nil {
		return fmt.Errorf("invalid token configuration: %w", err)
	}

	if _, err := cc.Store.LoadState(ctx); err == nil {
		return fmt.Errorf("%s already holds a token; remove it to start over", cfg.StatePath)
	} else if !errors.Is(err, state.ErrNoState) {
		return fmt.Errorf("failed to read state: %w", err)
	}

	caller := cfg.As
	if core.IsZero(caller) {
		caller = cfg.Token.KarmaDeployer
	}

	opts := cc.tokenOptions()
	if core.IsZero(cfg.Token.Pair) {
		opts = append(opts, token.WithPairResolver(amm.NewChain(cc.Logger).Router()))
	}
	cc.Token = token.New(cfg.Token.Address, opts...)

	if err := cc.Token.Initialize(ctx, caller, cfg.Token.InitParams()); err != nil {
		return err
	}
	if _, err := cc.Commit(ctx); err != nil {
		return err
	}

	return renderInfo(cc, cc.Token, fmt.Sprintf("Initialized %s (%s) at %s",
		cc.Token.Name(), cc.Token.Symbol(), cc.Token.Address().Hex()))
}
