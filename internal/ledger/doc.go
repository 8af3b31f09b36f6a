// Package ledger houses the Sui connectivity primitives shared by the SDK:
// object identifiers, owner and reference types, execution effects, the
// transport-neutral Client interface and the named network definitions that
// resolve a network such as testnet to its fullnode endpoint.
package ledger
