// Package core defines the shared language of the karmatoken system.
//
// This package contains:
//   - Identities and amounts (Address, uint256 helpers)
//   - Token configuration (TokenConfig, TaxRates, Limits, InitParams)
//   - Collaborator interfaces (Ledger, AntiBot, PairResolver, Distributor)
//   - The error taxonomy and the verbatim failure reasons
//   - Journal events and the persisted TokenState
//
// The Golden Rule: pkg/core imports only the address/amount libraries and stdlib.
// All other packages depend on core, not the reverse.
package core
