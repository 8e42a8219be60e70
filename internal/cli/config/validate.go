package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/karmatoken/internal/cli/output"
)

// ParseLogLevel accepts debug, info, warn and error (case-insensitive).
func ParseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// Validate checks if the configuration is valid.
// Token parameters are validated by init, the only command that uses them.
func (c *Config) Validate() error {
	var errs []error
	if c.StatePath == "" {
		errs = append(errs, errors.New("state_path is required"))
	}
	if !output.ValidMode(c.OutputFormat) {
		errs = append(errs, fmt.Errorf("unknown output format %q (want one of %s)",
			c.OutputFormat, strings.Join(output.Modes, ", ")))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateToken checks the token section before init.
func (c *Config) ValidateToken() error {
	if c.Token.Address == (c.Token.Router) {
		return errors.New("token.address and token.router must differ")
	}
	return c.Token.InitParams().Validate()
}
