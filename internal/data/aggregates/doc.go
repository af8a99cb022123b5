// Package aggregates owns the transaction boundaries for invariant-critical writes.
//
// Implementations compose the table-level repos from internal/data/repos; every
// write runs inside one TxRunner transaction so a failure leaves no partial effect.
package aggregates
