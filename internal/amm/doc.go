// Package amm is a reference constant-product AMM (factory, pair, router and
// wrapped native asset) used as the external collaborator of the token in
// scenarios and tests.
//
// The math follows Uniswap V2: a 0.3% input fee, sqrt(x*y) initial liquidity
// with 1000 units locked, and a fee-on-transfer tolerant sell path that
// measures what the pair actually received.
//
// Every router call runs inside Chain.Tx: all registered state is snapshotted
// first and reverted if any step fails, mirroring an EVM transaction.
package amm
