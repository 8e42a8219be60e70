// Package state persists the token's state and event journal in SQLite.
//
// The schema is managed by goose migrations embedded in the binary. Amounts
// are stored as decimal strings so that full 256-bit values survive.
package state

import (
	"errors"

	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// ErrNoState is returned by LoadState before the first SaveState.
var ErrNoState = errors.New("no token state stored")

var _ core.Store = (*SQLiteStore)(nil)
