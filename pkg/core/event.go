package core

import (
	"time"

	"github.com/holiman/uint256"
)

// EventKind names a journal entry.
type EventKind string

// Journal event kinds.
const (
	EventInitialized          EventKind = "initialized"
	EventTransfer             EventKind = "transfer"
	EventApproval             EventKind = "approval"
	EventTaxCollected         EventKind = "tax_collected"
	EventOwnershipTransferred EventKind = "ownership_transferred"
	EventTradingEnabled       EventKind = "trading_enabled"
	EventTradingDisabled      EventKind = "trading_disabled"
	EventMaxTxUpdated         EventKind = "max_tx_updated"
	EventMaxWalletUpdated     EventKind = "max_wallet_updated"
)

// Event is an entry of the token's journal, emitted once per committed change.
// From/To/Amount are populated when meaningful for the kind.
type Event struct {
	ID        string
	Kind      EventKind
	Caller    Address
	From      Address
	To        Address
	Amount    *uint256.Int
	Detail    string
	CreatedAt time.Time
}
