// Package smartrade turns raw brokerage transaction feeds into an account
// book of round trips.
//
// Broker exports report trades as flat rows: partial fills of one order
// appear as several rows, one closing row can cover several earlier opens,
// and multi-leg option positions arrive as unrelated lines. The package
// normalizes those rows into transactions, merges split fills, matches
// closing transactions against open positions (slicing them when they span
// several opens, preferring the most recent open), and assembles the result
// into transaction groups that each tell one complete story: what was
// opened, how it was closed, what it cost and what it returned.
//
// Synthetic transactions minted by merging and slicing keep lineage links
// to the stored rows they came from, so the original history is never
// modified, only annotated, and assembly can be re-run at any time.
package smartrade
