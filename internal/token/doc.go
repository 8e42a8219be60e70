// Package token implements the transfer control pipeline of a fixed-supply,
// taxed fungible token.
//
// A Token is initialized once and then serves ERC-20 style calls. Every call
// names its caller explicitly; there is no ambient sender. Transfers run through
// an ordered set of stages:
//
//	gate -> anti-bot -> max tx -> tax -> max wallet -> ledger
//
// The first failing stage aborts the transfer and nothing is written. Tax
// routing happens inside a ledger snapshot so that a failing downstream
// distributor also leaves no trace.
//
// Three identities hold privileges. The owner is transferable. The karma
// deployer and the limited owner are fixed at initialization and survive
// ownership transfers. See permissions.go for the capability matrix.
package token
