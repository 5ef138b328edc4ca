// Package treasury provides fund custody for the dispute registry.
//
// A Treasury moves amounts between addresses. The registry uses it to
// escrow bonds at submission, pay challengers on a slash, and refund
// submitters on withdrawal; all bonded funds sit under a single escrow
// address owned by the registry.
//
// Transfer is all-or-nothing: it either moves the full amount or fails
// with ErrInsufficientFunds and changes nothing. The registry relies on
// that to keep each of its operations atomic.
//
// Two implementations:
//
//   - Ledger: in-memory balances, for tests and embedded use.
//   - FileLedger: balances persisted to a JSON state file with an atomic
//     write-temp-rename on every mutation, so a deployment's funds
//     survive restarts.
package treasury
